// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package proximity

import (
	"github.com/tomtom215/waypoint/internal/geo"
	"github.com/tomtom215/waypoint/internal/hotspot"
)

var campusCenter = geo.NewCoordinate(41.150121, -81.345059)

func spot(id string, c geo.Coordinate) hotspot.Hotspot {
	return hotspot.Hotspot{
		ID:        id,
		Name:      "Hotspot " + id,
		Latitude:  hotspot.Degrees(c.Latitude),
		Longitude: hotspot.Degrees(c.Longitude),
	}
}

func subSpot(id string, c geo.Coordinate) hotspot.Hotspot {
	h := spot(id, c)
	h.IsSubHotspot = true
	return h
}

// offset returns the point meters away from campusCenter on bearing.
func offset(bearing, meters float64) geo.Coordinate {
	return geo.Destination(campusCenter, bearing, meters)
}

func ids(ps []Proximity) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}
