// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package location

import (
	"sync"
	"sync/atomic"

	"github.com/tomtom215/waypoint/internal/metrics"
)

// Offerer accepts fixes without blocking.
type Offerer interface {
	// Offer delivers f and reports whether an unread fix was replaced.
	Offer(f Fix) bool
}

// Mailbox is a one-slot, latest-wins queue between providers and the single
// goroutine that evaluates a session.
type Mailbox struct {
	mu      sync.Mutex
	ch      chan Fix
	dropped atomic.Uint64
}

// NewMailbox creates an empty mailbox.
func NewMailbox() *Mailbox {
	return &Mailbox{ch: make(chan Fix, 1)}
}

// Offer stores f, discarding any fix the consumer has not read yet.
func (m *Mailbox) Offer(f Fix) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	replaced := false
	select {
	case <-m.ch:
		replaced = true
		m.dropped.Add(1)
		metrics.SamplesDropped.Inc()
	default:
	}
	// The slot is empty and only Offer sends, under mu.
	m.ch <- f
	return replaced
}

// C returns the receive side. Each fix is received at most once.
func (m *Mailbox) C() <-chan Fix { return m.ch }

// Dropped returns how many fixes were replaced before being read.
func (m *Mailbox) Dropped() uint64 { return m.dropped.Load() }
