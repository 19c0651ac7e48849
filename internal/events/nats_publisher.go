// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package events

import (
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/waypoint/internal/broker"
	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/metrics"
)

const natsBreakerName = "event-publisher"

// NATSPublisherConfig configures the external event publisher.
type NATSPublisherConfig struct {
	URL           string
	MaxReconnects int
	ReconnectWait time.Duration

	// Circuit breaker settings.
	BreakerTimeout   time.Duration
	FailureThreshold uint32
}

// DefaultNATSPublisherConfig returns production defaults.
func DefaultNATSPublisherConfig() NATSPublisherConfig {
	return NATSPublisherConfig{
		MaxReconnects:    -1,
		ReconnectWait:    2 * time.Second,
		BreakerTimeout:   30 * time.Second,
		FailureThreshold: 5,
	}
}

// NATSPublisher publishes events to core NATS subjects named after the
// topic. It implements message.Publisher.
type NATSPublisher struct {
	publisher message.Publisher
	cb        *gobreaker.CircuitBreaker[struct{}]
}

// NewNATSPublisher connects to cfg.URL.
func NewNATSPublisher(cfg NATSPublisherConfig, logger watermill.LoggerAdapter) (*NATSPublisher, error) {
	if cfg.URL == "" {
		return nil, errors.New("nats url is required")
	}
	if logger == nil {
		logger = watermill.NewSlogLogger(logging.NewSlogLogger())
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}

	wmConfig := wmNats.PublisherConfig{
		URL: cfg.URL,
		NatsOptions: broker.Options(broker.ClientConfig{
			Name:          "waypoint-events",
			MaxReconnects: cfg.MaxReconnects,
			ReconnectWait: cfg.ReconnectWait,
		}),
		Marshaler: &wmNats.NATSMarshaler{},
		// Events are notifications; core NATS is enough.
		JetStream: wmNats.JetStreamConfig{Disabled: true},
	}

	pub, err := wmNats.NewPublisher(wmConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill publisher: %w", err)
	}

	metrics.CircuitBreakerState.WithLabelValues(natsBreakerName).Set(0)
	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        natsBreakerName,
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(breakerGauge(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})

	return &NATSPublisher{publisher: pub, cb: cb}, nil
}

// Publish sends msgs to the subject named topic.
func (p *NATSPublisher) Publish(topic string, msgs ...*message.Message) error {
	_, err := p.cb.Execute(func() (struct{}, error) {
		return struct{}{}, p.publisher.Publish(topic, msgs...)
	})
	switch {
	case err == nil:
		metrics.CircuitBreakerRequests.WithLabelValues(natsBreakerName, "success").Inc()
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(natsBreakerName, "rejected").Inc()
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(natsBreakerName, "failure").Inc()
	}
	if err != nil {
		return fmt.Errorf("publish %s to nats: %w", topic, err)
	}
	return nil
}

// State returns the breaker state.
func (p *NATSPublisher) State() gobreaker.State { return p.cb.State() }

// Close closes the connection.
func (p *NATSPublisher) Close() error { return p.publisher.Close() }

func breakerGauge(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
