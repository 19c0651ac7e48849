// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package services

import (
	"context"
	"time"

	"github.com/tomtom215/waypoint/internal/logging"
)

// TimeoutChecker is satisfied by *session.Manager.
type TimeoutChecker interface {
	CheckTimeouts(now time.Time) int
}

// TimeoutWatchdog fails sessions closed when no fix arrives within their
// grace period by calling CheckTimeouts on every tick.
type TimeoutWatchdog struct {
	checker  TimeoutChecker
	interval time.Duration
	now      func() time.Time
}

// NewTimeoutWatchdog creates a watchdog. A non-positive interval defaults
// to one second.
func NewTimeoutWatchdog(checker TimeoutChecker, interval time.Duration) *TimeoutWatchdog {
	if interval <= 0 {
		interval = time.Second
	}
	return &TimeoutWatchdog{checker: checker, interval: interval, now: time.Now}
}

// Serve implements suture.Service.
func (w *TimeoutWatchdog) Serve(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if n := w.checker.CheckTimeouts(w.now()); n > 0 {
				logging.Debug().Int("sessions", n).Msg("Location grace period expired")
			}
		}
	}
}

// String implements fmt.Stringer for suture's logs.
func (w *TimeoutWatchdog) String() string { return "timeout-watchdog" }
