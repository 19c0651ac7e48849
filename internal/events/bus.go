// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"

	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/metrics"
	"github.com/tomtom215/waypoint/internal/session"
)

// ErrBusClosed is returned after Close.
var ErrBusClosed = errors.New("event bus is closed")

// BusConfig configures the in-process bus.
type BusConfig struct {
	// OutputBuffer is the per-subscriber channel size.
	OutputBuffer int64
	// External, when set, receives a copy of every message.
	External message.Publisher
}

// Bus is the in-process event bus. It implements session.EventSink.
type Bus struct {
	pubsub   *gochannel.GoChannel
	external message.Publisher
	logger   watermill.LoggerAdapter
	now      func() time.Time

	mu     sync.RWMutex
	closed bool
}

// NewBus creates a bus. A nil logger logs through the global zerolog
// logger.
func NewBus(cfg BusConfig, logger watermill.LoggerAdapter) *Bus {
	if logger == nil {
		logger = watermill.NewSlogLogger(logging.NewSlogLogger())
	}
	if cfg.OutputBuffer <= 0 {
		cfg.OutputBuffer = 256
	}
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: cfg.OutputBuffer,
		}, logger),
		external: cfg.External,
		logger:   logger,
		now:      time.Now,
	}
}

// Publish turns a coordinator update into a status message and one
// activation message per trigger event. Failures are logged and counted;
// a session loop never blocks on the bus.
func (b *Bus) Publish(ctx context.Context, u session.Update) {
	st := u.Status
	for _, e := range u.Events {
		msg := ActivationMessage{SessionID: st.SessionID, ProjectID: st.ProjectID, Event: e}
		if err := b.PublishJSON(TopicActivations, msg, st.SessionID, st.ProjectID, string(e.Kind)); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("hotspot_id", e.HotspotID).Msg("Failed to publish hotspot event")
		}
	}

	msg := StatusMessage{Status: st, Warning: u.Warning, Changed: u.Changed, PublishedAt: b.now()}
	if err := b.PublishJSON(TopicStatus, msg, st.SessionID, st.ProjectID, string(st.State)); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Failed to publish session status")
	}
}

// PublishJSON encodes payload and publishes it on topic.
func (b *Bus) PublishJSON(topic string, payload interface{}, sessionID, projectID, kind string) error {
	data, err := json.Marshal(payload)
	if err != nil {
		metrics.RecordPublish(topic, err)
		return fmt.Errorf("encode %s payload: %w", topic, err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.Metadata.Set(MetadataSessionID, sessionID)
	msg.Metadata.Set(MetadataProjectID, projectID)
	msg.Metadata.Set(MetadataKind, kind)

	return b.publish(topic, msg)
}

func (b *Bus) publish(topic string, msg *message.Message) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrBusClosed
	}

	err := b.pubsub.Publish(topic, msg)
	metrics.RecordPublish(topic, err)
	if err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}

	if b.external != nil {
		// Copy so both publishers own their message.
		if err := b.external.Publish(topic, msg.Copy()); err != nil {
			b.logger.Debug("External publish failed", watermill.LogFields{"topic": topic, "error": err.Error()})
		}
	}
	return nil
}

// Subscribe returns a channel of messages on topic. Each message must be
// acked.
func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, ErrBusClosed
	}
	return b.pubsub.Subscribe(ctx, topic)
}

// Close closes the bus and the external publisher.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true

	var errs []error
	if err := b.pubsub.Close(); err != nil {
		errs = append(errs, err)
	}
	if b.external != nil {
		if err := b.external.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
