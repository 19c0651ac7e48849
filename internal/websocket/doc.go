// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package websocket pushes session status and hotspot events to the
presentation layer.

A Hub owns the connected clients and fans messages out to them. Each Client
runs a read pump and a write pump over a gorilla/websocket connection.

	┌──────────┐      session_status / hotspot_activation / hotspot_exit
	│   Hub    │ ───────────────────────────────────────────────┐
	└────┬─────┘                                                │
	     │ filtered by session                                  ▼
	┌────┴─────┬──────────┬──────────┐
	│ Client1  │ Client2  │ Client3  │  (session A, session A, all)
	└──────────┴──────────┴──────────┘

A client watches one session, chosen with the ?session= query parameter or
a subscribe message:

	{"type": "subscribe", "data": {"session_id": "6f1c..."}}

A client without a session receives every session's messages. A client
that cannot keep up is disconnected rather than slowing the hub down.

Inbound message types are ping and subscribe. Outbound types are pong,
session_status, hotspot_activation and hotspot_exit.
*/
package websocket
