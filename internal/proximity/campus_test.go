// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package proximity

import (
	"math"
	"math/rand"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/waypoint/internal/geo"
	"github.com/tomtom215/waypoint/internal/hotspot"
	"github.com/tomtom215/waypoint/internal/metrics"
)

func TestIsOnCampus_Scenarios(t *testing.T) {
	t.Parallel()

	a := []hotspot.Hotspot{spot("A", geo.NewCoordinate(41.1500, -81.3450))}

	tests := []struct {
		name     string
		position geo.Coordinate
		hotspots []hotspot.Hotspot
		want     bool
	}{
		{"co-located", geo.NewCoordinate(41.1500, -81.3450), a, true},
		{"95 km north", geo.NewCoordinate(42.0, -81.3450), a, false},
		{"within tolerance of single hotspot", geo.Destination(geo.NewCoordinate(41.15, -81.345), 30, 45), a, true},
		{"just beyond tolerance", geo.Destination(geo.NewCoordinate(41.15, -81.345), 30, 55), a, false},
		{"empty list", geo.NewCoordinate(41.1500, -81.3450), nil, false},
		{"empty list far away", geo.NewCoordinate(-33, 151), []hotspot.Hotspot{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsOnCampus(tt.position, tt.hotspots); got != tt.want {
				t.Errorf("IsOnCampus() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRegion_HullTolerance(t *testing.T) {
	t.Parallel()

	hs := []hotspot.Hotspot{
		spot("n", offset(0, 200)),
		spot("e", offset(90, 200)),
		spot("s", offset(180, 200)),
		spot("w", offset(270, 200)),
	}
	r := RegionFor(hs, DefaultCampusConfig())

	tests := []struct {
		name string
		pos  geo.Coordinate
		want bool
	}{
		{"centre", campusCenter, true},
		{"inside near edge", offset(90, 190), true},
		{"40 m beyond east vertex", offset(90, 240), true},
		{"60 m beyond east vertex", offset(90, 260), false},
		// The diamond's edge midpoint is ~141 m from the centre on a diagonal.
		{"diagonal inside tolerance", offset(45, 141+45), true},
		{"diagonal outside tolerance", offset(45, 141+60), false},
		{"far away", geo.NewCoordinate(40, -80), false},
	}
	for _, tt := range tests {
		if got := r.Contains(tt.pos); got != tt.want {
			t.Errorf("%s: Contains() = %v (distance %.1f m), want %v", tt.name, got, r.DistanceMeters(tt.pos), tt.want)
		}
	}
}

func TestRegion_RadiusMode(t *testing.T) {
	t.Parallel()

	hs := []hotspot.Hotspot{
		spot("n", offset(0, 100)),
		spot("s", offset(180, 100)),
	}
	cfg := CampusConfig{Mode: BoundaryRadius, ToleranceMeters: 10}
	r := RegionFor(hs, cfg)

	if math.Abs(r.RadiusMeters()-100) > 0.5 {
		t.Errorf("RadiusMeters() = %f, want ~100", r.RadiusMeters())
	}
	// East of centre is outside the hull (a segment) but inside the circle.
	if !r.Contains(offset(90, 105)) {
		t.Error("radius mode should contain a point 105 m east")
	}
	if r.Contains(offset(90, 115)) {
		t.Error("radius mode should not contain a point 115 m east")
	}

	hull := RegionFor(hs, CampusConfig{Mode: BoundaryHull, ToleranceMeters: 10})
	if hull.Contains(offset(90, 105)) {
		t.Error("hull mode should not contain a point 105 m east of a north-south segment")
	}
}

func TestRegion_Empty(t *testing.T) {
	t.Parallel()

	r := NewRegion(nil, DefaultCampusConfig())
	if !r.Empty() {
		t.Error("Empty() = false")
	}
	if !math.IsInf(r.DistanceMeters(campusCenter), 1) {
		t.Error("empty region distance should be +Inf")
	}
	if r.Contains(campusCenter) {
		t.Error("empty region contains a point")
	}
}

func TestIsOnCampus_Monotonic(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 30; trial++ {
		n := 1 + rng.Intn(12)
		hs := make([]hotspot.Hotspot, n)
		for i := range hs {
			hs[i] = spot(string(rune('a'+i)), offset(rng.Float64()*360, rng.Float64()*400))
		}
		for _, mode := range []BoundaryMode{BoundaryHull, BoundaryRadius} {
			r := RegionFor(hs, CampusConfig{Mode: mode, ToleranceMeters: 50})
			centroid := r.Centroid()
			bearing := rng.Float64() * 360

			seenOff := false
			for d := 0.0; d <= 3000; d += 5 {
				on := r.Contains(geo.Destination(centroid, bearing, d))
				if seenOff && on {
					t.Fatalf("trial %d %s: flipped back on campus at %.0f m on bearing %.1f", trial, mode, d, bearing)
				}
				if !on {
					seenOff = true
				}
			}
			if !seenOff {
				t.Fatalf("trial %d %s: never left campus within 3 km", trial, mode)
			}
			if !r.Contains(centroid) {
				t.Fatalf("trial %d %s: centroid is off campus", trial, mode)
			}
		}
	}
}

func TestIsOnCampus_ClampsMalformedHotspot(t *testing.T) {
	before := testutil.ToFloat64(metrics.DataQualityIssues.WithLabelValues(SourceHotspot, string(geo.IssueLatitudeClamped)))

	hs := []hotspot.Hotspot{spot("bad", geo.NewCoordinate(95, 10))}
	if !IsOnCampus(geo.NewCoordinate(90, 10), hs) {
		t.Error("position at the clamped hotspot should be on campus")
	}

	after := testutil.ToFloat64(metrics.DataQualityIssues.WithLabelValues(SourceHotspot, string(geo.IssueLatitudeClamped)))
	if after-before < 1 {
		t.Error("clamped hotspot was not counted")
	}
}

func TestParseBoundaryMode(t *testing.T) {
	t.Parallel()

	if m, err := ParseBoundaryMode("radius"); err != nil || m != BoundaryRadius {
		t.Errorf("ParseBoundaryMode(radius) = %v, %v", m, err)
	}
	if _, err := ParseBoundaryMode("polygon"); err == nil {
		t.Error("ParseBoundaryMode(polygon) should fail")
	}
	if StatusOf(true) != OnCampus || StatusOf(false) != OffCampus {
		t.Error("StatusOf mapping wrong")
	}
}
