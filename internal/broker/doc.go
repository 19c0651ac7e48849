// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

// Package broker runs an optional embedded NATS server for single node
// deployments and opens the client connections used by the location
// provider and the event publisher.
//
// With nats.embedded enabled the server listens on nats.host:nats.port and
// nats.url may be left empty; Connect then dials the embedded server.
package broker
