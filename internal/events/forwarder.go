// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package events

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"

	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/proximity"
	ws "github.com/tomtom215/waypoint/internal/websocket"
)

// Broadcaster delivers a message to the clients watching a session.
// websocket.Hub implements it.
type Broadcaster interface {
	BroadcastToSession(sessionID, messageType string, data interface{})
}

// Forwarder pushes bus messages to WebSocket clients.
type Forwarder struct {
	bus *Bus
	out Broadcaster
}

// NewForwarder creates a forwarder from bus to out.
func NewForwarder(bus *Bus, out Broadcaster) *Forwarder {
	return &Forwarder{bus: bus, out: out}
}

// Serve subscribes to both topics and forwards until ctx is cancelled.
func (f *Forwarder) Serve(ctx context.Context) error {
	activations, err := f.bus.Subscribe(ctx, TopicActivations)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", TopicActivations, err)
	}
	statuses, err := f.bus.Subscribe(ctx, TopicStatus)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", TopicStatus, err)
	}

	logging.Info().Str("component", "event-forwarder").Msg("Event forwarder started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-activations:
			if !ok {
				return ErrBusClosed
			}
			f.forwardActivation(msg)
		case msg, ok := <-statuses:
			if !ok {
				return ErrBusClosed
			}
			f.forwardStatus(msg)
		}
	}
}

func (f *Forwarder) String() string { return "event-forwarder" }

func (f *Forwarder) forwardActivation(msg *message.Message) {
	defer msg.Ack()

	var am ActivationMessage
	if err := json.Unmarshal(msg.Payload, &am); err != nil {
		logging.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("Dropping undecodable activation message")
		return
	}
	kind := ws.MessageTypeHotspotActivation
	if am.Event.Kind == proximity.EventExit {
		kind = ws.MessageTypeHotspotExit
	}
	f.out.BroadcastToSession(am.SessionID, kind, am)
}

func (f *Forwarder) forwardStatus(msg *message.Message) {
	defer msg.Ack()

	var sm StatusMessage
	if err := json.Unmarshal(msg.Payload, &sm); err != nil {
		logging.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("Dropping undecodable status message")
		return
	}
	f.out.BroadcastToSession(sm.Status.SessionID, ws.MessageTypeSessionStatus, sm)
}
