// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package broker

import (
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/tomtom215/waypoint/internal/logging"
)

// ClientConfig holds client connection settings.
type ClientConfig struct {
	URL           string
	Name          string
	MaxReconnects int
	ReconnectWait time.Duration
}

// Options returns the connection options shared by every Waypoint client:
// retry on first connect, bounded reconnects and logged connection events.
func Options(cfg ClientConfig) []nats.Option {
	if cfg.ReconnectWait <= 0 {
		cfg.ReconnectWait = 2 * time.Second
	}
	return []nats.Option{
		nats.Name(cfg.Name),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logging.Warn().Err(err).Str("client", cfg.Name).Msg("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logging.Info().Str("client", cfg.Name).Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(_ *nats.Conn, sub *nats.Subscription, err error) {
			ev := logging.Error().Err(err).Str("client", cfg.Name)
			if sub != nil {
				ev = ev.Str("subject", sub.Subject)
			}
			ev.Msg("NATS error")
		}),
	}
}

// Connect dials cfg.URL.
func Connect(cfg ClientConfig) (*nats.Conn, error) {
	nc, err := nats.Connect(cfg.URL, Options(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS at %s: %w", cfg.URL, err)
	}
	return nc, nil
}
