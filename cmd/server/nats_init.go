// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"
	"github.com/sony/gobreaker/v2"

	"github.com/tomtom215/waypoint/internal/broker"
	"github.com/tomtom215/waypoint/internal/config"
	"github.com/tomtom215/waypoint/internal/events"
	"github.com/tomtom215/waypoint/internal/location"
	"github.com/tomtom215/waypoint/internal/logging"
)

// NATSComponents holds the NATS-related components for lifecycle management.
// A nil *NATSComponents means NATS is disabled; every method is nil-safe.
type NATSComponents struct {
	server    *broker.EmbeddedServer
	conn      *natsgo.Conn
	provider  *location.NATSProvider
	publisher *events.NATSPublisher
}

// initNATS starts the embedded server when configured, connects the
// location provider and, with PublishEvents set, the event publisher.
// Returns nil, nil when NATS is disabled.
func initNATS(cfg *config.Config, logger watermill.LoggerAdapter) (*NATSComponents, error) {
	if !cfg.NATS.Enabled {
		logging.Info().Msg("NATS disabled (NATS_ENABLED=false), fixes arrive over HTTP only")
		return nil, nil
	}

	c := &NATSComponents{}
	url := cfg.NATS.URL
	if cfg.NATS.Embedded {
		srv, err := broker.NewEmbeddedServer(cfg.BrokerServerSettings())
		if err != nil {
			return nil, fmt.Errorf("start embedded NATS server: %w", err)
		}
		c.server = srv
		url = srv.ClientURL()
		logging.Info().Str("url", url).Msg("Embedded NATS server started")
	}

	nc, err := broker.Connect(cfg.BrokerClientSettings(url))
	if err != nil {
		c.Close()
		return nil, err
	}
	c.conn = nc

	provider, err := location.NewNATSProvider(nc, cfg.NATS.SubjectPrefix)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("create location provider: %w", err)
	}
	c.provider = provider

	if cfg.NATS.PublishEvents {
		pub, err := events.NewNATSPublisher(cfg.PublisherSettings(url), logger)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("create event publisher: %w", err)
		}
		c.publisher = pub
	}

	logging.Info().
		Str("url", url).
		Str("subject", provider.Subject("<session>")).
		Bool("publish_events", cfg.NATS.PublishEvents).
		Msg("NATS components initialized")
	return c, nil
}

// Server returns the embedded server, or nil when an external one is used.
func (c *NATSComponents) Server() *broker.EmbeddedServer {
	if c == nil {
		return nil
	}
	return c.server
}

// Attachers returns the location providers sessions subscribe through.
func (c *NATSComponents) Attachers() []location.Attacher {
	if c == nil || c.provider == nil {
		return nil
	}
	return []location.Attacher{c.provider}
}

// External returns the publisher the event bus mirrors to, or nil.
func (c *NATSComponents) External() message.Publisher {
	if c == nil || c.publisher == nil {
		return nil
	}
	return c.publisher
}

// HealthCheck reports a disconnected client or an open publisher breaker.
func (c *NATSComponents) HealthCheck(context.Context) error {
	if c == nil || c.conn == nil {
		return errors.New("nats not initialized")
	}
	if status := c.conn.Status(); status != natsgo.CONNECTED {
		return fmt.Errorf("nats connection %s", status)
	}
	if c.publisher != nil && c.publisher.State() == gobreaker.StateOpen {
		return errors.New("event publisher circuit breaker is open")
	}
	return nil
}

// Close releases the publisher, the client connection and the embedded
// server. Shutting the server down twice is harmless, so Close may run after
// the supervised broker service has already stopped it.
func (c *NATSComponents) Close() {
	if c == nil {
		return
	}
	if c.publisher != nil {
		if err := c.publisher.Close(); err != nil {
			logging.Warn().Err(err).Msg("Error closing event publisher")
		}
	}
	if c.conn != nil {
		c.conn.Close()
	}
	if c.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.server.Shutdown(ctx); err != nil {
			logging.Warn().Err(err).Msg("Embedded NATS server shutdown incomplete")
		}
	}
}
