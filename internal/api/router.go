// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/waypoint/internal/middleware"
)

// Router builds the HTTP routing tree.
type Router struct {
	handler *Handler
	chiMw   *ChiMiddleware
}

// NewRouter creates a router. A nil middleware config is derived from the
// handler's server settings.
func NewRouter(handler *Handler, mwConfig *ChiMiddlewareConfig) *Router {
	if mwConfig == nil {
		if handler.config != nil {
			mwConfig = ChiMiddlewareConfigFrom(handler.config.Server)
		} else {
			mwConfig = DefaultChiMiddlewareConfig()
		}
	}
	return &Router{handler: handler, chiMw: NewChiMiddleware(mwConfig)}
}

// SetupChi returns the complete handler.
//
//	GET    /metrics
//	GET    /api/v1/health
//	GET    /api/v1/health/live
//	GET    /api/v1/projects/{projectID}
//	GET    /api/v1/projects/{projectID}/hotspots[?view=all|base]
//	GET    /api/v1/projects/{projectID}/hotspots/{hotspotID}
//	GET    /api/v1/projects/{projectID}/hotspots/{hotspotID}/sub-hotspots
//	GET    /api/v1/projects/{projectID}/markers[?campus=ON_CAMPUS|OFF_CAMPUS]
//	GET    /api/v1/projects/{projectID}/too-close[?threshold=]
//	GET    /api/v1/projects/{projectID}/graph[?from=]
//	GET    /api/v1/projects/{projectID}/campus?lat=&lon=
//	GET    /api/v1/projects/{projectID}/nearby?lat=&lon=[&radius=&limit=]
//	POST   /api/v1/projects/{projectID}/refresh
//	POST   /api/v1/sessions
//	GET    /api/v1/sessions
//	GET    /api/v1/sessions/{sessionID}
//	DELETE /api/v1/sessions/{sessionID}
//	POST   /api/v1/sessions/{sessionID}/fixes
//	POST   /api/v1/sessions/{sessionID}/errors
//	GET    /api/v1/sessions/{sessionID}/nearby[?radius=&limit=]
//	GET    /api/v1/sessions/{sessionID}/ws
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()
	h := router.handler

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMw.CORS())
	r.Use(middleware.PrometheusMetrics)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(APISecurityHeaders())

		r.Route("/health", func(r chi.Router) {
			r.Use(router.chiMw.RateLimitCustom(RateLimitHealth))
			r.Get("/", h.Health)
			r.Get("/live", h.Live)
		})

		r.Route("/projects/{projectID}", func(r chi.Router) {
			r.Use(router.chiMw.RateLimit())
			r.Get("/", h.ProjectSummary)
			r.Get("/hotspots", h.ListHotspots)
			r.Get("/hotspots/{hotspotID}", h.GetHotspot)
			r.Get("/hotspots/{hotspotID}/sub-hotspots", h.SubHotspots)
			r.Get("/markers", h.Markers)
			r.Get("/too-close", h.TooClose)
			r.Get("/graph", h.Graph)
			r.Get("/campus", h.CampusCheck)
			r.Get("/nearby", h.Nearby)
			r.Post("/refresh", h.RefreshProject)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(router.chiMw.RateLimit())
				r.Post("/", h.CreateSession)
				r.Get("/", h.ListSessions)
				r.Get("/{sessionID}", h.GetSession)
				r.Delete("/{sessionID}", h.DeleteSession)
				r.Get("/{sessionID}/nearby", h.SessionNearby)
			})

			r.Group(func(r chi.Router) {
				r.Use(router.chiMw.RateLimitCustom(RateLimitFixes))
				r.Post("/{sessionID}/fixes", h.PostFix)
				r.Post("/{sessionID}/errors", h.PostError)
			})

			r.With(router.chiMw.RateLimitCustom(RateLimitWebSocket)).
				Get("/{sessionID}/ws", h.SessionWebSocket)
		})
	})

	return r
}
