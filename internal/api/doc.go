// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package api provides the HTTP API for Waypoint.

The API has two halves. Project endpoints answer stateless questions about a
project's hotspot snapshot: the base view, the rendered markers for a campus
status, too-close pairs, the page link graph, one-off campus checks and
radius queries. Session endpoints drive the per-viewer engine: a client
creates a session, posts location fixes (or provider errors) to it and reads
the resulting campus status, proximity set and filtered view, either by
polling or over a WebSocket stream.

# Responses

Every JSON response uses the models.APIResponse envelope. Errors carry a
machine readable code (see errors.go):

	404 SESSION_NOT_FOUND   unknown or closed session
	404 PROJECT_NOT_FOUND   the hotspot source has no such project
	422 INVALID_PROJECT     the project document failed validation
	502 SOURCE_UNAVAILABLE  the hotspot source failed or its breaker is open
	503 CAPACITY_EXCEEDED   the session limit is reached

# Middleware

The router applies, in order: request ID (middleware.RequestID), real IP,
panic recovery, CORS (go-chi/cors), Prometheus request metrics labelled by
route pattern, security headers and per-IP rate limiting (go-chi/httprate)
with separate budgets for health checks, fix ingestion and WebSocket
upgrades.

# Fix ingestion

POST /api/v1/sessions/{id}/fixes queues a fix in the session's one-slot
mailbox and answers 202. A fix that replaces one not yet evaluated is
reported as superseded. Evaluation happens on the session goroutine, so a
GET immediately after a POST may still show the previous state.
*/
package api
