// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package api

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/tomtom215/waypoint/internal/models"
)

const healthCheckTimeout = 2 * time.Second

// Health reports uptime, session counts and the result of every registered
// dependency probe. Any failing probe degrades the status to "degraded"
// and the response to 503.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	status := models.HealthStatus{
		Status:  "healthy",
		Version: Version,
		Uptime:  time.Since(h.startTime).Seconds(),
	}
	if h.manager != nil {
		status.Sessions = h.manager.Len()
	}
	if h.wsHub != nil {
		status.WebSocketClients = h.wsHub.GetClientCount()
	}

	checks := h.healthChecks()
	if len(checks) > 0 {
		names := make([]string, 0, len(checks))
		for name := range checks {
			names = append(names, name)
		}
		sort.Strings(names)

		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		status.Components = make(map[string]models.ComponentHealth, len(checks))
		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				status.Status = "degraded"
				status.Components[name] = models.ComponentHealth{Error: err.Error()}
				continue
			}
			status.Components[name] = models.ComponentHealth{Healthy: true}
		}
	}

	code := http.StatusOK
	if status.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	respondSuccess(w, code, status, start)
}

// Live answers 200 while the process is serving requests.
func (h *Handler) Live(w http.ResponseWriter, _ *http.Request) {
	respondSuccess(w, http.StatusOK, map[string]string{"status": "alive"}, time.Now())
}
