// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/waypoint/internal/events"
	"github.com/tomtom215/waypoint/internal/location"
	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/models"
	"github.com/tomtom215/waypoint/internal/session"
	ws "github.com/tomtom215/waypoint/internal/websocket"
)

// CreateSession starts a session touring the requested project. The
// session begins UNINITIALIZED and OFF_CAMPUS until its first fix.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.CreateSessionRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, sanitizeLogValue(err.Error()), nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	s, err := h.manager.Create(r.Context(), req.ProjectID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("session_id", s.ID).
		Str("project_id", s.ProjectID).
		Msg("Session created")
	w.Header().Set("Location", "/api/v1/sessions/"+s.ID)
	respondSuccess(w, http.StatusCreated, s.Status(), start)
}

// ListSessions returns the status of every session, oldest first.
func (h *Handler) ListSessions(w http.ResponseWriter, _ *http.Request) {
	start := time.Now()
	respondSuccess(w, http.StatusOK, nonNil(h.manager.List()), start)
}

// lookupSession resolves {sessionID}, writing the 404 itself.
func (h *Handler) lookupSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, err := h.manager.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		respondServiceError(w, err)
		return nil, false
	}
	return s, true
}

// GetSession returns the session's state, effective campus status,
// proximity set and filtered view.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	s, ok := h.lookupSession(w, r)
	if !ok {
		return
	}
	respondSuccess(w, http.StatusOK, s.Status(), start)
}

// DeleteSession tears a session down.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if err := h.manager.Close(id); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PostFix queues one location fix. The body is a location message: either
// latitude/longitude (with optional accuracy and timestamp) or an error
// object reporting a provider failure. Evaluation is asynchronous; the
// response is 202 and the result is visible through GetSession and the
// WebSocket stream.
func (h *Handler) PostFix(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	s, ok := h.lookupSession(w, r)
	if !ok {
		return
	}

	var msg location.Message
	if err := decodeJSONBody(r, &msg); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, sanitizeLogValue(err.Error()), nil)
		return
	}
	fix, err := msg.ToFix(time.Now())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	superseded := s.Offer(fix)
	respondSuccess(w, http.StatusAccepted, models.FixAccepted{
		SessionID:  s.ID,
		Superseded: superseded,
		Dropped:    s.Dropped(),
	}, start)
}

// PostError reports a provider failure for a session. It is shorthand for
// PostFix with an error body and accepts {"code": ..., "message": ...}.
func (h *Handler) PostError(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	s, ok := h.lookupSession(w, r)
	if !ok {
		return
	}

	var perr location.ProviderError
	if err := decodeJSONBody(r, &perr); err != nil && !errors.Is(err, errEmptyBody) {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, sanitizeLogValue(err.Error()), nil)
		return
	}

	superseded := s.Offer(location.Failure(location.NewProviderError(perr.Code, perr.Message)))
	respondSuccess(w, http.StatusAccepted, models.FixAccepted{
		SessionID:  s.ID,
		Superseded: superseded,
		Dropped:    s.Dropped(),
	}, start)
}

// SessionNearby returns hotspots within ?radius meters of the session's
// last trusted position. The list is empty while the session has none.
func (h *Handler) SessionNearby(w http.ResponseWriter, r *http.Request) {
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

	s, ok := h.lookupSession(w, r)
	if !ok {
		return
	}

	list := models.NearbyList{
		RadiusMeters: radius,
		Hotspots:     nonNil(s.Nearby(radius, limit)),
	}
	if st := s.Status(); st.Position != nil {
		list.Position = *st.Position
	}
	list.Count = len(list.Hotspots)
	respondSuccess(w, http.StatusOK, list, start)
}

// SessionWebSocket upgrades the connection and streams the session's status
// updates and hotspot activations. The current status is sent immediately.
func (h *Handler) SessionWebSocket(w http.ResponseWriter, r *http.Request) {
	if h.wsHub == nil {
		respondError(w, http.StatusServiceUnavailable, ErrCodeShuttingDown, "WebSocket hub unavailable", nil)
		return
	}
	s, ok := h.lookupSession(w, r)
	if !ok {
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		logging.Warn().Err(err).Str("session_id", s.ID).Msg("WebSocket upgrade failed")
		return
	}

	// The first frame goes to this client only, ahead of any broadcast.
	client := ws.NewClient(h.wsHub, conn, s.ID)
	client.Send(ws.MessageTypeSessionStatus, events.StatusMessage{
		Status:      s.Status(),
		PublishedAt: time.Now().UTC(),
	})
	h.wsHub.Register <- client
	client.Start()
}
