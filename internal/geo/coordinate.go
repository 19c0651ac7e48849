// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package geo

import (
	"math"
	"strconv"
	"time"
)

// Coordinate bounds in WGS-84 degrees.
const (
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0
)

// CoordinateEpsilon is the tolerance used when comparing coordinates for
// equality (roughly 1 cm at the equator).
const CoordinateEpsilon = 1e-7

// Coordinate is an immutable WGS-84 position in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NewCoordinate is shorthand for a Coordinate literal.
func NewCoordinate(lat, lon float64) Coordinate {
	return Coordinate{Latitude: lat, Longitude: lon}
}

// Equal reports whether two coordinates are within CoordinateEpsilon.
func (c Coordinate) Equal(o Coordinate) bool {
	return math.Abs(c.Latitude-o.Latitude) < CoordinateEpsilon &&
		math.Abs(c.Longitude-o.Longitude) < CoordinateEpsilon
}

// Valid reports whether both components are finite and inside their ranges.
func (c Coordinate) Valid() bool {
	return !math.IsNaN(c.Latitude) && !math.IsNaN(c.Longitude) &&
		c.Latitude >= MinLatitude && c.Latitude <= MaxLatitude &&
		c.Longitude >= MinLongitude && c.Longitude <= MaxLongitude
}

func (c Coordinate) String() string {
	return strconv.FormatFloat(c.Latitude, 'f', 6, 64) + "," + strconv.FormatFloat(c.Longitude, 'f', 6, 64)
}

// Sample is a single device fix. Samples are consumed once and never stored.
type Sample struct {
	Coords    Coordinate `json:"coords"`
	Timestamp time.Time  `json:"timestamp"`
	// Accuracy is the reported horizontal accuracy in meters, 0 when unknown.
	Accuracy float64 `json:"accuracy,omitempty"`
}

// QualityIssue names a data quality condition found while normalizing a
// coordinate.
type QualityIssue string

const (
	IssueLatitudeClamped  QualityIssue = "latitude_clamped"
	IssueLongitudeClamped QualityIssue = "longitude_clamped"
	IssueNotANumber       QualityIssue = "not_a_number"
)

// Normalize clamps a raw coordinate into the valid WGS-84 range. Out of range
// values are pulled to the nearest bound and NaN components become 0. The
// returned issues are empty for a coordinate that needed no correction.
func Normalize(c Coordinate) (Coordinate, []QualityIssue) {
	var issues []QualityIssue

	lat, latNaN := clamp(c.Latitude, MinLatitude, MaxLatitude)
	lon, lonNaN := clamp(c.Longitude, MinLongitude, MaxLongitude)

	if latNaN || lonNaN {
		issues = append(issues, IssueNotANumber)
	}
	if !latNaN && lat != c.Latitude {
		issues = append(issues, IssueLatitudeClamped)
	}
	if !lonNaN && lon != c.Longitude {
		issues = append(issues, IssueLongitudeClamped)
	}

	return Coordinate{Latitude: lat, Longitude: lon}, issues
}

// NormalizeSample applies Normalize to the sample's coordinates.
func NormalizeSample(s Sample) (Sample, []QualityIssue) {
	coords, issues := Normalize(s.Coords)
	s.Coords = coords
	if math.IsNaN(s.Accuracy) || s.Accuracy < 0 {
		s.Accuracy = 0
	}
	return s, issues
}

func clamp(v, lo, hi float64) (float64, bool) {
	switch {
	case math.IsNaN(v):
		return 0, true
	case v < lo:
		return lo, false
	case v > hi:
		return hi, false
	default:
		return v, false
	}
}
