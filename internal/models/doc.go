// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package models defines the HTTP request and response structures for Waypoint.

Every endpoint wraps its payload in APIResponse:

	{
	  "status": "success",
	  "data": { ... },
	  "metadata": {"timestamp": "2026-03-14T09:00:00Z", "query_time_ms": 2}
	}

Errors carry a machine readable APIError code. Request structures carry
go-playground/validator tags and are checked by the api package before use.

Engine types (hotspot.Hotspot, proximity.Marker, session.Status) are
embedded directly rather than copied into parallel DTOs so the JSON field
names stay identical to the stored project documents.
*/
package models
