// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package events publishes session updates on a Watermill bus.

Bus implements session.EventSink. Every update becomes one status message on
TopicStatus and one message per trigger event on TopicActivations:

	waypoint.hotspot.activations   ActivationMessage (enter and exit)
	waypoint.session.status        StatusMessage

Messages always go to an in-process gochannel pub/sub. When an external
publisher is configured (NewNATSPublisher) they are also published to NATS
through watermill-nats behind a circuit breaker, so an unreachable broker
never stalls a session loop.

Forwarder subscribes to both topics and pushes them to WebSocket clients.
*/
package events
