// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package proximity

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/waypoint/internal/geo"
	"github.com/tomtom215/waypoint/internal/hotspot"
	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/metrics"
)

// Data quality sources.
const (
	SourceSample  = "sample"
	SourceHotspot = "hotspot"
)

// qualityLog throttles data quality warnings. A broken record is evaluated on
// every fix and would otherwise flood the log.
var qualityLog = rate.NewLimiter(rate.Every(10*time.Second), 5)

func reportQuality(source, id string, raw geo.Coordinate, issues []geo.QualityIssue) {
	if len(issues) == 0 {
		return
	}
	for _, issue := range issues {
		metrics.DataQualityIssues.WithLabelValues(source, string(issue)).Inc()
	}
	if !qualityLog.Allow() {
		return
	}
	ev := logging.Warn().
		Str("source", source).
		Float64("latitude", raw.Latitude).
		Float64("longitude", raw.Longitude).
		Interface("issues", issues)
	if id != "" {
		ev = ev.Str("hotspot_id", id)
	}
	ev.Msg("Coordinate out of range, clamped")
}

// hotspotCoords returns the clamped coordinate of every hotspot in input order.
func hotspotCoords(hotspots []hotspot.Hotspot) []geo.Coordinate {
	coords := make([]geo.Coordinate, len(hotspots))
	for i := range hotspots {
		raw := hotspots[i].Coordinate()
		c, issues := geo.Normalize(raw)
		reportQuality(SourceHotspot, hotspots[i].ID, raw, issues)
		coords[i] = c
	}
	return coords
}

// NormalizeSample clamps a device fix and reports any corrections to the
// data quality metrics and the throttled log.
func NormalizeSample(s geo.Sample) (geo.Sample, []geo.QualityIssue) {
	raw := s.Coords
	s, issues := geo.NormalizeSample(s)
	reportQuality(SourceSample, "", raw, issues)
	return s, issues
}
