// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package geo

import (
	"math"
	"sort"
)

// Point is a position in a local planar frame, in meters east (X) and
// north (Y) of the frame origin.
type Point struct {
	X, Y float64
}

// Projection is a local equirectangular projection centred on an origin.
// Within a few kilometres of the origin its error is well under a metre,
// which is what campus scale geometry needs.
type Projection struct {
	origin Coordinate
	cosLat float64
}

// NewProjection creates a projection centred on origin.
func NewProjection(origin Coordinate) Projection {
	return Projection{origin: origin, cosLat: math.Cos(toRadians(origin.Latitude))}
}

// Origin returns the projection centre.
func (p Projection) Origin() Coordinate { return p.origin }

// Project maps c into the local frame.
func (p Projection) Project(c Coordinate) Point {
	dLon := wrapLongitude(c.Longitude - p.origin.Longitude)
	return Point{
		X: toRadians(dLon) * p.cosLat * EarthRadiusMeters,
		Y: toRadians(c.Latitude-p.origin.Latitude) * EarthRadiusMeters,
	}
}

// Centroid returns the arithmetic mean of the coordinates. It does not
// handle sets that straddle the antimeridian. The zero Coordinate is
// returned for an empty slice.
func Centroid(coords []Coordinate) Coordinate {
	if len(coords) == 0 {
		return Coordinate{}
	}
	var lat, lon float64
	for _, c := range coords {
		lat += c.Latitude
		lon += c.Longitude
	}
	n := float64(len(coords))
	return Coordinate{Latitude: lat / n, Longitude: lon / n}
}

func cross(o, a, b Point) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

// ConvexHull returns the hull of pts in counter-clockwise order using the
// monotone chain algorithm. Collinear points are dropped, so the result may
// have one or two vertices for degenerate input.
func ConvexHull(pts []Point) []Point {
	if len(pts) == 0 {
		return nil
	}

	sorted := make([]Point, len(pts))
	copy(sorted, pts)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].X != sorted[j].X {
			return sorted[i].X < sorted[j].X
		}
		return sorted[i].Y < sorted[j].Y
	})

	uniq := sorted[:1]
	for _, p := range sorted[1:] {
		if p != uniq[len(uniq)-1] {
			uniq = append(uniq, p)
		}
	}
	if len(uniq) < 3 {
		return uniq
	}

	hull := make([]Point, 0, 2*len(uniq))
	for _, p := range uniq {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(uniq) - 2; i >= 0; i-- {
		p := uniq[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1]
}

// DistanceToHull returns how far p lies outside the convex polygon hull
// (counter-clockwise, as produced by ConvexHull). Points inside or on the
// boundary return 0. A one-vertex hull is a point and a two-vertex hull is
// a segment. An empty hull returns +Inf.
func DistanceToHull(p Point, hull []Point) float64 {
	switch len(hull) {
	case 0:
		return math.Inf(1)
	case 1:
		return math.Hypot(p.X-hull[0].X, p.Y-hull[0].Y)
	case 2:
		return distanceToSegment(p, hull[0], hull[1])
	}

	inside := true
	best := math.Inf(1)
	for i := range hull {
		a := hull[i]
		b := hull[(i+1)%len(hull)]
		if cross(a, b, p) < 0 {
			inside = false
		}
		best = math.Min(best, distanceToSegment(p, a, b))
	}
	if inside {
		return 0
	}
	return best
}

func distanceToSegment(p, a, b Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	t = math.Max(0, math.Min(1, t))
	return math.Hypot(p.X-(a.X+t*dx), p.Y-(a.Y+t*dy))
}
