// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package proximity is the geometric core of Waypoint.

  - Region and IsOnCampus decide whether a position is on campus. The region
    is the convex hull of the hotspots (or a circle around their centroid)
    grown by a tolerance, 50 m by default.
  - Distance, TooCloseHotspotList, Clusters and Index answer distance
    questions between hotspots and between a position and hotspots.
  - BaseHotspots and FilterView pick the markers to show.
  - TriggerEvaluator keeps the set of hotspots a session is inside and emits
    one enter event per entry and one exit event per exit.

Everything here is pure computation over a read-only hotspot list. Malformed
coordinates are clamped into range, counted and logged (rate limited); they
never produce errors. A Plan bundles the per-snapshot derivations so they
are computed once and shared between sessions.
*/
package proximity
