// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package proximity

import "github.com/tomtom215/waypoint/internal/hotspot"

// BaseHotspots returns the hotspots with isSubHotspot == false in their
// original order.
func BaseHotspots(hotspots []hotspot.Hotspot) []hotspot.Hotspot {
	out := make([]hotspot.Hotspot, 0, len(hotspots))
	for i := range hotspots {
		if !hotspots[i].IsSubHotspot {
			out = append(out, hotspots[i])
		}
	}
	return out
}

// FilterView picks the marker set for a campus status: everything when on
// campus, base hotspots otherwise.
func FilterView(status CampusStatus, hotspots []hotspot.Hotspot) []hotspot.Hotspot {
	if status == OnCampus {
		out := make([]hotspot.Hotspot, len(hotspots))
		copy(out, hotspots)
		return out
	}
	return BaseHotspots(hotspots)
}

// SubHotspotsOf returns the sub-hotspots linked from parentID, in link
// order without duplicates.
func SubHotspotsOf(g *hotspot.Graph, s *hotspot.Snapshot, parentID string) []hotspot.Hotspot {
	var out []hotspot.Hotspot
	seen := map[string]bool{parentID: true}
	for _, l := range g.Links(parentID) {
		if seen[l.To] {
			continue
		}
		seen[l.To] = true
		if h, ok := s.Get(l.To); ok && h.IsSubHotspot {
			out = append(out, *h)
		}
	}
	return out
}
