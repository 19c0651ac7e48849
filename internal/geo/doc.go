// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

// Package geo holds the coordinate primitives shared by the proximity
// engine: WGS-84 coordinates and device samples, normalization of malformed
// fixes, haversine distances in meters, and the local planar frame used for
// campus boundary geometry.
package geo
