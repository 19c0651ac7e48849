// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/waypoint/internal/hotspot"
	"github.com/tomtom215/waypoint/internal/location"
	"github.com/tomtom215/waypoint/internal/session"
)

// Error codes returned in APIError.Code.
const (
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeProjectNotFound   = "PROJECT_NOT_FOUND"
	ErrCodeHotspotNotFound   = "HOTSPOT_NOT_FOUND"
	ErrCodeSessionNotFound   = "SESSION_NOT_FOUND"
	ErrCodeInvalidProject    = "INVALID_PROJECT"
	ErrCodeSourceUnavailable = "SOURCE_UNAVAILABLE"
	ErrCodeCapacityExceeded  = "CAPACITY_EXCEEDED"
	ErrCodeShuttingDown      = "SHUTTING_DOWN"
	ErrCodeRateLimited       = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternal          = "INTERNAL_ERROR"
)

// respondServiceError maps engine and source errors onto HTTP responses.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		respondError(w, http.StatusNotFound, ErrCodeSessionNotFound, "Session not found", nil)
	case errors.Is(err, session.ErrTooManySessions):
		respondError(w, http.StatusServiceUnavailable, ErrCodeCapacityExceeded, "Too many active sessions", err)
	case errors.Is(err, session.ErrManagerClosed):
		respondError(w, http.StatusServiceUnavailable, ErrCodeShuttingDown, "Server is shutting down", nil)
	case errors.Is(err, hotspot.ErrNotFound):
		respondError(w, http.StatusNotFound, ErrCodeProjectNotFound, "Project not found", nil)
	case errors.Is(err, hotspot.ErrInvalidProjectID):
		respondError(w, http.StatusBadRequest, ErrCodeValidation, "Invalid project id", nil)
	case errors.Is(err, hotspot.ErrInvalidHotspot), errors.Is(err, hotspot.ErrDuplicateID),
		errors.Is(err, hotspot.ErrMalformedDocument):
		respondError(w, http.StatusUnprocessableEntity, ErrCodeInvalidProject, "Project document is invalid: "+sanitizeLogValue(err.Error()), err)
	case errors.Is(err, location.ErrMalformedFix):
		respondError(w, http.StatusBadRequest, ErrCodeValidation, sanitizeLogValue(err.Error()), nil)
	default:
		respondError(w, http.StatusBadGateway, ErrCodeSourceUnavailable, "Hotspot source unavailable", err)
	}
}
