// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package hotspot models the points of interest a tour is built from and the
plumbing that brings them into the engine.

A project document holds an ordered list of hotspot records. Records may be
objects or JSON-encoded strings of objects; DecodeProject accepts both.
NewSnapshot validates the records (non-empty, unique hotspot_id) and freezes
them for the lifetime of a session.

Documents come from a Source (FileSource or HTTPSource, the latter behind a
gobreaker circuit breaker) through Cache, a badger-backed read-through cache
whose entries expire after a TTL or on Invalidate.

The main_pages and media_pages links form a graph that may contain cycles.
Graph stores it as an adjacency list keyed by hotspot_id and every traversal
tracks visited nodes.
*/
package hotspot
