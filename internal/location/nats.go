// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package location

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/tomtom215/waypoint/internal/logging"
)

// DefaultSubjectPrefix is prepended to the session ID to form the subject
// a device publishes its fixes on.
const DefaultSubjectPrefix = "waypoint.location"

// Attacher connects a provider to a session.
type Attacher interface {
	// Attach starts delivering fixes for sessionID to dst. The returned
	// function stops delivery and is safe to call more than once.
	Attach(sessionID string, dst Offerer) (detach func(), err error)
}

// NATSProvider delivers fixes published on waypoint.location.<session>.
type NATSProvider struct {
	nc     *nats.Conn
	prefix string
	now    func() time.Time
}

// NewNATSProvider creates a provider on an established connection. An empty
// prefix selects DefaultSubjectPrefix.
func NewNATSProvider(nc *nats.Conn, prefix string) (*NATSProvider, error) {
	if nc == nil {
		return nil, errors.New("nats connection is nil")
	}
	prefix = strings.TrimSuffix(prefix, ".")
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &NATSProvider{nc: nc, prefix: prefix, now: time.Now}, nil
}

// Subject returns the subject fixes for sessionID are published on.
func (p *NATSProvider) Subject(sessionID string) string {
	return p.prefix + "." + sessionID
}

// Attach subscribes to the session's subject. Undecodable payloads are
// logged and skipped.
func (p *NATSProvider) Attach(sessionID string, dst Offerer) (func(), error) {
	if sessionID == "" || strings.ContainsAny(sessionID, ".*> \t") {
		return nil, fmt.Errorf("invalid session id %q for nats subject", sessionID)
	}
	subject := p.Subject(sessionID)

	sub, err := p.nc.Subscribe(subject, func(msg *nats.Msg) {
		fix, err := DecodeFix(msg.Data, p.now())
		if err != nil {
			logging.Warn().Err(err).
				Str("session_id", sessionID).
				Str("subject", subject).
				Msg("Discarding malformed location message")
			return
		}
		dst.Offer(fix)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", subject, err)
	}

	logging.Debug().Str("session_id", sessionID).Str("subject", subject).Msg("Location subscription attached")

	return func() {
		if err := sub.Unsubscribe(); err != nil && !errors.Is(err, nats.ErrBadSubscription) && !errors.Is(err, nats.ErrConnectionClosed) {
			logging.Warn().Err(err).Str("subject", subject).Msg("Failed to unsubscribe location subject")
		}
	}, nil
}
