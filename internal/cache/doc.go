// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package cache provides the in-memory structures the engine reuses across
sessions.

# LRU

LRU is a generic, thread-safe least recently used cache with lazy TTL
expiry. The session manager keeps one proximity plan per hotspot snapshot
in it, so sessions viewing the same project share the derived hull, index
and cluster data:

	plans := cache.NewLRU[*proximity.Plan](64, time.Hour)
	plan := plans.GetOrAdd(key, func() *proximity.Plan {
	    return proximity.NewPlan(snap, cfg)
	})

# SpatialHashGrid

SpatialHashGrid buckets points into square cells of a fixed size in meters
(projected equirectangularly around a reference latitude). QueryNearby scans
only the cells a radius can touch and returns neighbours sorted by haversine
distance, with ties broken by id:

	grid := cache.NewSpatialHashGrid[int](25, campus.Latitude)
	grid.Insert("hall", hallCoord, 0)
	for _, n := range grid.QueryNearby(pos, 20) {
	    fmt.Println(n.ID, n.Meters)
	}

Cell sizes close to the typical query radius keep scans to a handful of
cells. Both structures are safe for concurrent use.
*/
package cache
