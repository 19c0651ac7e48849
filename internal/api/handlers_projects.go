// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/waypoint/internal/geo"
	"github.com/tomtom215/waypoint/internal/hotspot"
	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/models"
	"github.com/tomtom215/waypoint/internal/proximity"
)

// Query parameter bounds.
const (
	defaultNearbyRadius = 100.0
	maxNearbyRadius     = 5000.0
	defaultNearbyLimit  = 50
	maxNearbyLimit      = 500
	maxClusterThreshold = 1000.0
)

// loadPlan resolves the {projectID} URL parameter to its derived plan,
// writing the error response itself on failure.
func (h *Handler) loadPlan(w http.ResponseWriter, r *http.Request) (*proximity.Plan, bool) {
	projectID := chi.URLParam(r, "projectID")
	plan, err := h.manager.Plan(r.Context(), projectID)
	if err != nil {
		respondServiceError(w, err)
		return nil, false
	}
	return plan, true
}

// ProjectSummary returns counts, the campus region and dangling links for a
// project.
func (h *Handler) ProjectSummary(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	plan, ok := h.loadPlan(w, r)
	if !ok {
		return
	}

	all := plan.Hotspots()
	summary := models.ProjectSummary{
		ProjectID:       plan.Snapshot.ProjectID,
		FetchedAt:       plan.Snapshot.FetchedAt,
		HotspotCount:    len(all),
		BaseCount:       len(plan.Base),
		SubHotspotCount: len(all) - len(plan.Base),
		TooClosePairs:   len(plan.Pairs),
		Clusters:        len(plan.Clusters),
		Campus: models.CampusRegion{
			Mode:            string(plan.Region.Mode()),
			Centroid:        plan.Region.Centroid(),
			RadiusMeters:    plan.Region.RadiusMeters(),
			ToleranceMeters: plan.Region.ToleranceMeters(),
			Empty:           plan.Region.Empty(),
		},
		DanglingLinks: nonNil(plan.Graph.Dangling()),
	}
	respondSuccess(w, http.StatusOK, summary, start)
}

// ListHotspots returns the project's hotspot records. ?view=base applies
// the base view filter.
func (h *Handler) ListHotspots(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	view := r.URL.Query().Get("view")
	if view == "" {
		view = "all"
	}
	if view != "all" && view != "base" {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, "view must be one of: all base", nil)
		return
	}

	plan, ok := h.loadPlan(w, r)
	if !ok {
		return
	}

	hotspots := plan.Hotspots()
	if view == "base" {
		hotspots = plan.Base
	}
	respondSuccess(w, http.StatusOK, models.HotspotList{
		ProjectID: plan.Snapshot.ProjectID,
		View:      view,
		Count:     len(hotspots),
		Hotspots:  nonNil(hotspots),
	}, start)
}

// GetHotspot returns one hotspot record.
func (h *Handler) GetHotspot(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	plan, ok := h.loadPlan(w, r)
	if !ok {
		return
	}

	hs, found := plan.Snapshot.Get(chi.URLParam(r, "hotspotID"))
	if !found {
		respondError(w, http.StatusNotFound, ErrCodeHotspotNotFound, "Hotspot not found", nil)
		return
	}
	respondSuccess(w, http.StatusOK, hs, start)
}

// SubHotspots returns the sub-hotspots linked from a hotspot's pages.
func (h *Handler) SubHotspots(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	plan, ok := h.loadPlan(w, r)
	if !ok {
		return
	}

	parentID := chi.URLParam(r, "hotspotID")
	if _, found := plan.Snapshot.Get(parentID); !found {
		respondError(w, http.StatusNotFound, ErrCodeHotspotNotFound, "Hotspot not found", nil)
		return
	}

	subs := proximity.SubHotspotsOf(plan.Graph, plan.Snapshot, parentID)
	respondSuccess(w, http.StatusOK, models.HotspotList{
		ProjectID: plan.Snapshot.ProjectID,
		View:      "sub",
		Count:     len(subs),
		Hotspots:  nonNil(subs),
	}, start)
}

// Markers returns the rendered marker set for ?campus=ON_CAMPUS|OFF_CAMPUS.
// Without the parameter the off campus view is returned.
func (h *Handler) Markers(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	status := proximity.CampusStatus(r.URL.Query().Get("campus"))
	switch status {
	case "":
		status = proximity.OffCampus
	case proximity.OnCampus, proximity.OffCampus:
	default:
		respondError(w, http.StatusBadRequest, ErrCodeValidation, "campus must be one of: ON_CAMPUS OFF_CAMPUS", nil)
		return
	}

	plan, ok := h.loadPlan(w, r)
	if !ok {
		return
	}

	markers := plan.Markers(plan.View(status))
	respondSuccess(w, http.StatusOK, models.MarkerList{
		ProjectID:    plan.Snapshot.ProjectID,
		CampusStatus: status,
		Count:        len(markers),
		Markers:      markers,
	}, start)
}

// TooClose reports hotspot pairs closer than ?threshold meters (default the
// configured cluster threshold) and the clusters they form.
func (h *Handler) TooClose(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	threshold, err := getFloatParam(r, "threshold", 0, 0, maxClusterThreshold)
	if err != nil {
		respondParamError(w, err)
		return
	}

	plan, ok := h.loadPlan(w, r)
	if !ok {
		return
	}

	report := models.TooCloseReport{
		ProjectID:       plan.Snapshot.ProjectID,
		ThresholdMeters: h.clusterThreshold(),
		Pairs:           plan.Pairs,
		Clusters:        plan.Clusters,
	}
	if threshold > 0 {
		all := plan.Hotspots()
		report.ThresholdMeters = threshold
		report.Pairs = proximity.TooCloseHotspotList(all, threshold)
		report.Clusters = proximity.Clusters(all, report.Pairs)
	}
	report.Pairs = nonNil(report.Pairs)
	report.Clusters = nonNil(report.Clusters)
	respondSuccess(w, http.StatusOK, report, start)
}

func (h *Handler) clusterThreshold() float64 {
	if h.config == nil || h.config.Engine.ClusterThresholdMeters <= 0 {
		return proximity.DefaultClusterThresholdMeters
	}
	return h.config.Engine.ClusterThresholdMeters
}

// Graph returns the page link graph. With ?from=<hotspot_id> it also lists
// every hotspot reachable from it.
func (h *Handler) Graph(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	plan, ok := h.loadPlan(w, r)
	if !ok {
		return
	}

	all := plan.Hotspots()
	report := models.GraphReport{
		ProjectID: plan.Snapshot.ProjectID,
		Links:     make(map[string][]hotspot.Link, len(all)),
		Dangling:  nonNil(plan.Graph.Dangling()),
	}
	for i := range all {
		report.Links[all[i].ID] = nonNil(plan.Graph.Links(all[i].ID))
	}

	if from := r.URL.Query().Get("from"); from != "" {
		if _, found := plan.Snapshot.Get(from); !found {
			respondError(w, http.StatusNotFound, ErrCodeHotspotNotFound, "Hotspot not found", nil)
			return
		}
		report.From = from
		report.Reachable = nonNil(plan.Graph.Reachable(from))
	}
	respondSuccess(w, http.StatusOK, report, start)
}

// positionParams reads ?lat= and ?lon=, clamping out of range values the
// same way device fixes are clamped.
func positionParams(w http.ResponseWriter, r *http.Request) (geo.Coordinate, []geo.QualityIssue, bool) {
	lat, err := requireFloatParam(r, "lat")
	if err != nil {
		respondParamError(w, err)
		return geo.Coordinate{}, nil, false
	}
	lon, err := requireFloatParam(r, "lon")
	if err != nil {
		respondParamError(w, err)
		return geo.Coordinate{}, nil, false
	}
	s, issues := proximity.NormalizeSample(geo.Sample{Coords: geo.NewCoordinate(lat, lon), Timestamp: time.Now()})
	return s.Coords, issues, true
}

// CampusCheck answers whether ?lat=&lon= is on the project's campus.
func (h *Handler) CampusCheck(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	pos, issues, ok := positionParams(w, r)
	if !ok {
		return
	}
	plan, ok := h.loadPlan(w, r)
	if !ok {
		return
	}

	check := models.CampusCheck{
		ProjectID:    plan.Snapshot.ProjectID,
		Position:     pos,
		CampusStatus: proximity.OffCampus,
		Issues:       issues,
	}
	if !plan.Region.Empty() {
		d := plan.Region.DistanceMeters(pos)
		check.DistanceMeters = &d
		check.CampusStatus = proximity.StatusOf(plan.Region.Contains(pos))
	}

	logging.Ctx(r.Context()).Debug().
		Str("project_id", check.ProjectID).
		Str("campus_status", string(check.CampusStatus)).
		Msg("Campus check")
	respondSuccess(w, http.StatusOK, check, start)
}

// Nearby returns hotspots within ?radius meters of ?lat=&lon=, nearest
// first.
func (h *Handler) Nearby(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	radius, err := getFloatParam(r, "radius", defaultNearbyRadius, 0, maxNearbyRadius)
	if err != nil {
		respondParamError(w, err)
		return
	}
	limit, err := getIntParam(r, "limit", defaultNearbyLimit, 1, maxNearbyLimit)
	if err != nil {
		respondParamError(w, err)
		return
	}
	pos, _, ok := positionParams(w, r)
	if !ok {
		return
	}
	plan, ok := h.loadPlan(w, r)
	if !ok {
		return
	}

	found := plan.Index.Within(pos, radius)
	if len(found) > limit {
		found = found[:limit]
	}
	respondSuccess(w, http.StatusOK, models.NearbyList{
		Position:     pos,
		RadiusMeters: radius,
		Count:        len(found),
		Hotspots:     nonNil(found),
	}, start)
}

// RefreshProject drops the cached snapshot, reloads it from the source and
// hands the new plan to every session touring the project.
func (h *Handler) RefreshProject(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	projectID := chi.URLParam(r, "projectID")

	n, err := h.manager.Refresh(r.Context(), projectID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	plan, err := h.manager.Plan(r.Context(), projectID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, models.RefreshResult{
		ProjectID:       projectID,
		HotspotCount:    plan.Snapshot.Len(),
		FetchedAt:       plan.Snapshot.FetchedAt,
		SessionsUpdated: n,
	}, start)
}

// nonNil returns an empty slice for nil so JSON renders [] instead of null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
