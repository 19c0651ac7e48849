// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package proximity

import (
	"fmt"

	"github.com/tomtom215/waypoint/internal/geo"
	"github.com/tomtom215/waypoint/internal/hotspot"
)

// Config gathers every engine threshold.
type Config struct {
	Campus                 CampusConfig
	Trigger                TriggerConfig
	ClusterThresholdMeters float64
	// GridCellMeters sizes the spatial index cells.
	GridCellMeters float64
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		Campus:                 DefaultCampusConfig(),
		Trigger:                DefaultTriggerConfig(),
		ClusterThresholdMeters: DefaultClusterThresholdMeters,
		GridCellMeters:         25,
	}
}

// Validate rejects non-positive radii and unknown enum values.
func (c Config) Validate() error {
	if _, err := ParseBoundaryMode(string(c.Campus.Mode)); err != nil {
		return err
	}
	if _, err := ParseReentryPolicy(string(c.Trigger.Reentry)); err != nil {
		return err
	}
	switch {
	case !(c.Campus.ToleranceMeters >= 0):
		return fmt.Errorf("campus tolerance must be >= 0, got %v", c.Campus.ToleranceMeters)
	case !(c.Trigger.RadiusMeters > 0):
		return fmt.Errorf("trigger radius must be > 0, got %v", c.Trigger.RadiusMeters)
	case !(c.Trigger.HysteresisMeters >= 0):
		return fmt.Errorf("trigger hysteresis must be >= 0, got %v", c.Trigger.HysteresisMeters)
	case !(c.ClusterThresholdMeters > 0):
		return fmt.Errorf("cluster threshold must be > 0, got %v", c.ClusterThresholdMeters)
	case !(c.GridCellMeters > 0):
		return fmt.Errorf("grid cell size must be > 0, got %v", c.GridCellMeters)
	}
	return nil
}

// Plan holds everything derived from one hotspot snapshot. It is immutable
// and shared by every session viewing the same snapshot.
type Plan struct {
	Snapshot *hotspot.Snapshot
	Region   *Region
	Index    *Index
	Graph    *hotspot.Graph
	Base     []hotspot.Hotspot
	Pairs    []Pair
	Clusters [][]string

	grouped map[string]bool
}

// NewPlan derives the campus region, spatial index, link graph, base view
// and marker clusters for s.
func NewPlan(s *hotspot.Snapshot, cfg Config) *Plan {
	all := s.All()
	pairs := TooCloseHotspotList(all, cfg.ClusterThresholdMeters)
	return &Plan{
		Snapshot: s,
		Region:   RegionFor(all, cfg.Campus),
		Index:    NewIndex(all, cfg.GridCellMeters),
		Graph:    hotspot.NewGraph(s),
		Base:     BaseHotspots(all),
		Pairs:    pairs,
		Clusters: Clusters(all, pairs),
		grouped:  Grouped(pairs),
	}
}

// Hotspots returns the full set in document order.
func (p *Plan) Hotspots() []hotspot.Hotspot { return p.Snapshot.All() }

// Empty reports whether the snapshot has no hotspots.
func (p *Plan) Empty() bool { return p.Snapshot.Len() == 0 }

// View returns the marker set for status without copying.
func (p *Plan) View(status CampusStatus) []hotspot.Hotspot {
	if status == OnCampus {
		return p.Snapshot.All()
	}
	return p.Base
}

// IsGrouped reports whether id is closer than the cluster threshold to
// another hotspot.
func (p *Plan) IsGrouped(id string) bool { return p.grouped[id] }

// Marker is the presentation data for one hotspot marker.
type Marker struct {
	HotspotID    string  `json:"hotspot_id"`
	Name         string  `json:"name"`
	Label        string  `json:"label"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	PinColor     string  `json:"pin_color"`
	Grouped      bool    `json:"grouped"`
	IsSubHotspot bool    `json:"isSubHotspot"`
}

// Markers annotates view for rendering. Labels follow the hotspot's position
// in the full snapshot so they stay stable between views.
func (p *Plan) Markers(view []hotspot.Hotspot) []Marker {
	out := make([]Marker, 0, len(view))
	for i := range view {
		h := &view[i]
		grouped := p.grouped[h.ID]
		c, _ := geo.Normalize(h.Coordinate())
		out = append(out, Marker{
			HotspotID:    h.ID,
			Name:         h.Name,
			Label:        hotspot.MarkerLabel(p.Snapshot.IndexOf(h.ID)),
			Latitude:     c.Latitude,
			Longitude:    c.Longitude,
			PinColor:     hotspot.PinColor(h, grouped),
			Grouped:      grouped,
			IsSubHotspot: h.IsSubHotspot,
		})
	}
	return out
}
