// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package proximity

import (
	"fmt"
	"math"

	"github.com/tomtom215/waypoint/internal/geo"
	"github.com/tomtom215/waypoint/internal/hotspot"
)

// CampusStatus is the on/off campus determination for a session.
type CampusStatus string

const (
	OnCampus  CampusStatus = "ON_CAMPUS"
	OffCampus CampusStatus = "OFF_CAMPUS"
)

// StatusOf converts a boolean determination.
func StatusOf(on bool) CampusStatus {
	if on {
		return OnCampus
	}
	return OffCampus
}

// BoundaryMode selects how the campus region is derived from hotspots.
type BoundaryMode string

const (
	// BoundaryHull uses the convex hull of the hotspots.
	BoundaryHull BoundaryMode = "hull"
	// BoundaryRadius uses a circle around the centroid reaching the
	// farthest hotspot.
	BoundaryRadius BoundaryMode = "radius"
)

// ParseBoundaryMode validates a configured mode.
func ParseBoundaryMode(s string) (BoundaryMode, error) {
	switch BoundaryMode(s) {
	case BoundaryHull, BoundaryRadius:
		return BoundaryMode(s), nil
	default:
		return "", fmt.Errorf("unknown boundary mode %q (want hull or radius)", s)
	}
}

// DefaultToleranceMeters absorbs GPS jitter at the campus edge.
const DefaultToleranceMeters = 50.0

// CampusConfig tunes the boundary check.
type CampusConfig struct {
	Mode            BoundaryMode
	ToleranceMeters float64
}

// DefaultCampusConfig returns hull mode with a 50 m tolerance.
func DefaultCampusConfig() CampusConfig {
	return CampusConfig{Mode: BoundaryHull, ToleranceMeters: DefaultToleranceMeters}
}

// Region is the campus area inferred from a hotspot set. Build it once per
// snapshot and call Contains for every fix.
type Region struct {
	cfg      CampusConfig
	empty    bool
	centroid geo.Coordinate
	proj     geo.Projection
	hull     []geo.Point
	// radius is the haversine distance from the centroid to the farthest
	// hotspot.
	radius float64
}

// NewRegion derives the region for coords. An empty slice gives a region
// that contains nothing.
func NewRegion(coords []geo.Coordinate, cfg CampusConfig) *Region {
	if cfg.Mode == "" {
		cfg.Mode = BoundaryHull
	}
	if cfg.ToleranceMeters < 0 || math.IsNaN(cfg.ToleranceMeters) {
		cfg.ToleranceMeters = 0
	}
	r := &Region{cfg: cfg, empty: len(coords) == 0}
	if r.empty {
		return r
	}

	r.centroid = geo.Centroid(coords)
	r.proj = geo.NewProjection(r.centroid)
	pts := make([]geo.Point, len(coords))
	for i, c := range coords {
		pts[i] = r.proj.Project(c)
		r.radius = math.Max(r.radius, geo.Distance(r.centroid, c))
	}
	if cfg.Mode == BoundaryHull {
		r.hull = geo.ConvexHull(pts)
	}
	return r
}

// RegionFor builds the region for a hotspot list, clamping malformed
// coordinates.
func RegionFor(hotspots []hotspot.Hotspot, cfg CampusConfig) *Region {
	return NewRegion(hotspotCoords(hotspots), cfg)
}

// Empty reports whether the region was built from no hotspots.
func (r *Region) Empty() bool { return r.empty }

// Centroid returns the mean hotspot position.
func (r *Region) Centroid() geo.Coordinate { return r.centroid }

// RadiusMeters returns the distance from the centroid to the farthest hotspot.
func (r *Region) RadiusMeters() float64 { return r.radius }

// Mode returns the boundary mode in use.
func (r *Region) Mode() BoundaryMode { return r.cfg.Mode }

// ToleranceMeters returns the configured tolerance.
func (r *Region) ToleranceMeters() float64 { return r.cfg.ToleranceMeters }

// DistanceMeters returns how far c lies outside the region without
// tolerance; 0 means inside. An empty region returns +Inf.
func (r *Region) DistanceMeters(c geo.Coordinate) float64 {
	if r.empty {
		return math.Inf(1)
	}
	fromCenter := geo.Distance(r.centroid, c)
	if r.cfg.Mode == BoundaryRadius {
		return math.Max(0, fromCenter-r.radius)
	}
	// The hull lies inside the circumscribing circle, so anything this far
	// out is rejected without projecting. The slack covers projection error.
	if lower := fromCenter - (r.radius*1.01 + 1); lower > r.cfg.ToleranceMeters {
		return lower
	}
	return geo.DistanceToHull(r.proj.Project(c), r.hull)
}

// Contains reports whether c is within the region plus tolerance.
func (r *Region) Contains(c geo.Coordinate) bool {
	return r.DistanceMeters(c) <= r.cfg.ToleranceMeters
}

// IsOnCampus reports whether position is on campus for hotspots using the
// default boundary settings. An empty list is never on campus.
func IsOnCampus(position geo.Coordinate, hotspots []hotspot.Hotspot) bool {
	return IsOnCampusWith(position, hotspots, DefaultCampusConfig())
}

// IsOnCampusWith is IsOnCampus with explicit settings.
func IsOnCampusWith(position geo.Coordinate, hotspots []hotspot.Hotspot, cfg CampusConfig) bool {
	if len(hotspots) == 0 {
		return false
	}
	c, _ := geo.Normalize(position)
	return RegionFor(hotspots, cfg).Contains(c)
}
