// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/waypoint/internal/config"
	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/session"
	ws "github.com/tomtom215/waypoint/internal/websocket"
)

// Version is reported by the health endpoint. It is set at build time with
// -ldflags "-X github.com/tomtom215/waypoint/internal/api.Version=...".
var Version = "dev"

// HealthCheck probes one dependency. A nil error means healthy.
type HealthCheck func(ctx context.Context) error

// Handler serves the Waypoint HTTP API.
type Handler struct {
	manager   *session.Manager
	wsHub     *ws.Hub
	config    *config.Config
	startTime time.Time

	checksMu sync.RWMutex
	checks   map[string]HealthCheck
}

// NewHandler creates a handler. hub may be nil, in which case the WebSocket
// endpoint answers 503.
func NewHandler(manager *session.Manager, hub *ws.Hub, cfg *config.Config) *Handler {
	return &Handler{
		manager:   manager,
		wsHub:     hub,
		config:    cfg,
		startTime: time.Now(),
		checks:    make(map[string]HealthCheck),
	}
}

// AddHealthCheck registers a dependency probe reported by the health
// endpoint under name.
func (h *Handler) AddHealthCheck(name string, check HealthCheck) {
	h.checksMu.Lock()
	defer h.checksMu.Unlock()
	h.checks[name] = check
}

func (h *Handler) healthChecks() map[string]HealthCheck {
	h.checksMu.RLock()
	defer h.checksMu.RUnlock()
	out := make(map[string]HealthCheck, len(h.checks))
	for k, v := range h.checks {
		out[k] = v
	}
	return out
}

// getUpgrader returns a WebSocket upgrader that validates origins against
// the configured CORS origins.
func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		HandshakeTimeout: 10 * time.Second,
		CheckOrigin:      h.checkWebSocketOrigin,
	}
}

// checkWebSocketOrigin rejects cross-origin upgrades from origins that are
// not configured. Requests without an Origin header are rejected.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		logging.Warn().Str("remote_addr", r.RemoteAddr).Msg("WebSocket connection rejected: no Origin header")
		return false
	}

	if h.config == nil {
		return false
	}
	for _, allowed := range h.config.Server.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	logging.Warn().
		Str("origin", sanitizeLogValue(origin)).
		Str("remote_addr", r.RemoteAddr).
		Msg("WebSocket connection rejected: origin not allowed")
	return false
}
