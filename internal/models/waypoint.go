// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package models

import (
	"time"

	"github.com/tomtom215/waypoint/internal/geo"
	"github.com/tomtom215/waypoint/internal/hotspot"
	"github.com/tomtom215/waypoint/internal/proximity"
)

// HealthStatus is returned by the health endpoint.
type HealthStatus struct {
	Status           string                     `json:"status"` // "healthy" or "degraded"
	Version          string                     `json:"version"`
	Uptime           float64                    `json:"uptime_seconds"`
	Sessions         int                        `json:"sessions"`
	WebSocketClients int                        `json:"websocket_clients"`
	Components       map[string]ComponentHealth `json:"components,omitempty"`
}

// ComponentHealth is the result of one dependency probe.
type ComponentHealth struct {
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

// CampusRegion describes the derived campus boundary of a project.
type CampusRegion struct {
	Mode            string         `json:"mode"`
	Centroid        geo.Coordinate `json:"centroid"`
	RadiusMeters    float64        `json:"radius_meters"`
	ToleranceMeters float64        `json:"tolerance_meters"`
	Empty           bool           `json:"empty"`
}

// ProjectSummary is the overview of one project's hotspot snapshot.
type ProjectSummary struct {
	ProjectID       string                 `json:"project_id"`
	FetchedAt       time.Time              `json:"fetched_at"`
	HotspotCount    int                    `json:"hotspot_count"`
	BaseCount       int                    `json:"base_count"`
	SubHotspotCount int                    `json:"sub_hotspot_count"`
	TooClosePairs   int                    `json:"too_close_pairs"`
	Clusters        int                    `json:"clusters"`
	Campus          CampusRegion           `json:"campus"`
	DanglingLinks   []hotspot.DanglingLink `json:"dangling_links"`
}

// HotspotList is a set of hotspot records in document order.
type HotspotList struct {
	ProjectID string            `json:"project_id"`
	View      string            `json:"view"` // "all", "base" or "sub"
	Count     int               `json:"count"`
	Hotspots  []hotspot.Hotspot `json:"hotspots"`
}

// MarkerList is the rendered marker set for a campus status.
type MarkerList struct {
	ProjectID    string                 `json:"project_id"`
	CampusStatus proximity.CampusStatus `json:"campus_status"`
	Count        int                    `json:"count"`
	Markers      []proximity.Marker     `json:"markers"`
}

// TooCloseReport lists hotspot pairs closer than a threshold.
type TooCloseReport struct {
	ProjectID       string           `json:"project_id"`
	ThresholdMeters float64          `json:"threshold_meters"`
	Pairs           []proximity.Pair `json:"pairs"`
	Clusters        [][]string       `json:"clusters"`
}

// GraphReport is the page link graph of a project.
type GraphReport struct {
	ProjectID string                    `json:"project_id"`
	Links     map[string][]hotspot.Link `json:"links"`
	Dangling  []hotspot.DanglingLink    `json:"dangling"`
	From      string                    `json:"from,omitempty"`
	Reachable []string                  `json:"reachable,omitempty"`
}

// CampusCheck is the result of a one-off campus boundary check.
type CampusCheck struct {
	ProjectID      string                 `json:"project_id"`
	Position       geo.Coordinate         `json:"position"`
	CampusStatus   proximity.CampusStatus `json:"campus_status"`
	Issues         []geo.QualityIssue     `json:"issues,omitempty"`

	// DistanceMeters is how far the position lies outside the boundary,
	// 0 when inside. It is omitted for a project without hotspots.
	DistanceMeters *float64 `json:"distance_meters,omitempty"`
}

// NearbyList is a distance-ordered set of hotspots around a position.
type NearbyList struct {
	Position     geo.Coordinate        `json:"position"`
	RadiusMeters float64               `json:"radius_meters"`
	Count        int                   `json:"count"`
	Hotspots     []proximity.Proximity `json:"hotspots"`
}

// RefreshResult reports a snapshot refresh.
type RefreshResult struct {
	ProjectID       string    `json:"project_id"`
	HotspotCount    int       `json:"hotspot_count"`
	FetchedAt       time.Time `json:"fetched_at"`
	SessionsUpdated int       `json:"sessions_updated"`
}

// CreateSessionRequest starts a viewing session.
type CreateSessionRequest struct {
	ProjectID string `json:"project_id" validate:"required,slug"`
}

// FixAccepted acknowledges a queued location fix.
type FixAccepted struct {
	SessionID string `json:"session_id"`
	Dropped   uint64 `json:"dropped"`

	// Superseded is set when the fix replaced one still waiting for
	// evaluation.
	Superseded bool `json:"superseded"`
}
