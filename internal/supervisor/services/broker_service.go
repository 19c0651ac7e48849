// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/waypoint/internal/logging"
)

// EmbeddedBroker is satisfied by *broker.EmbeddedServer.
type EmbeddedBroker interface {
	IsRunning() bool
	ClientURL() string
	Shutdown(ctx context.Context) error
}

// BrokerService owns the lifetime of an embedded NATS server that was
// started before the tree so clients could connect during wiring. The
// server cannot be restarted in place, so a server that is found stopped
// ends the service for good.
type BrokerService struct {
	broker          EmbeddedBroker
	shutdownTimeout time.Duration
	checkInterval   time.Duration
}

// NewBrokerService wraps b. A non-positive shutdownTimeout defaults to 10
// seconds.
func NewBrokerService(b EmbeddedBroker, shutdownTimeout time.Duration) *BrokerService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &BrokerService{broker: b, shutdownTimeout: shutdownTimeout, checkInterval: 5 * time.Second}
}

// Serve implements suture.Service.
func (s *BrokerService) Serve(ctx context.Context) error {
	if !s.broker.IsRunning() {
		return fmt.Errorf("embedded broker is not running: %w", suture.ErrDoNotRestart)
	}
	logging.Info().Str("url", s.broker.ClientURL()).Msg("Embedded NATS server supervised")

	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
			defer cancel()
			if err := s.broker.Shutdown(shutdownCtx); err != nil {
				logging.Warn().Err(err).Msg("Embedded NATS server shutdown incomplete")
			}
			return ctx.Err()
		case <-ticker.C:
			if !s.broker.IsRunning() {
				logging.Error().Msg("Embedded NATS server stopped unexpectedly")
				return fmt.Errorf("embedded broker stopped: %w", suture.ErrDoNotRestart)
			}
		}
	}
}

// String implements fmt.Stringer for suture's logs.
func (s *BrokerService) String() string { return "nats-broker" }
