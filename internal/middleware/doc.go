// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

// Package middleware holds the HTTP middleware shared by the API router:
// request IDs wired into the logging context and Prometheus request metrics
// labelled by chi route pattern.
package middleware
