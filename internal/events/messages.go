// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package events

import (
	"time"

	"github.com/tomtom215/waypoint/internal/proximity"
	"github.com/tomtom215/waypoint/internal/session"
)

// Topics.
const (
	TopicActivations = "waypoint.hotspot.activations"
	TopicStatus      = "waypoint.session.status"
)

// Metadata keys set on every message.
const (
	MetadataSessionID = "session_id"
	MetadataProjectID = "project_id"
	MetadataKind      = "kind"
)

// ActivationMessage carries one trigger event.
type ActivationMessage struct {
	SessionID string          `json:"session_id"`
	ProjectID string          `json:"project_id"`
	Event     proximity.Event `json:"event"`
}

// StatusMessage carries the session status after an update.
type StatusMessage struct {
	Status      session.Status `json:"status"`
	Warning     string         `json:"warning,omitempty"`
	Changed     bool           `json:"changed"`
	PublishedAt time.Time      `json:"published_at"`
}
