// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package location delivers device position fixes to tracking sessions.

A Fix is either a successful sample or a provider failure. Providers push
fixes into an Offerer, normally a session's Mailbox:

  - HTTP ingestion: the API decodes POST bodies with DecodeFix and offers
    them directly.
  - NATSProvider: subscribes to waypoint.location.<session> and decodes each
    message payload.
  - Replay: feeds a recorded JSON-lines track, optionally paced by the
    recorded timestamps.

# Mailbox

Mailbox holds at most one pending fix. A newer fix replaces an unread one,
so a slow consumer always evaluates the latest position and never works
through a backlog of stale samples. Replaced fixes are counted in
metrics.SamplesDropped.

# Wire Format

	{"latitude": 41.15, "longitude": -81.345, "accuracy": 8, "timestamp": "2026-01-02T15:04:05Z"}
	{"error": {"code": "permission_denied", "message": "User denied Geolocation"}}
*/
package location
