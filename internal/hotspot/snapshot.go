// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package hotspot

import (
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/validation"
)

var (
	// ErrDuplicateID is returned when two records share a hotspot_id.
	ErrDuplicateID = errors.New("duplicate hotspot_id")

	// ErrInvalidHotspot is returned when a record fails validation.
	ErrInvalidHotspot = errors.New("invalid hotspot")

	// ErrNotFound is returned when a project or hotspot does not exist.
	ErrNotFound = errors.New("not found")

	// ErrMalformedDocument is returned when a project document is not
	// valid JSON or a record cannot be decoded.
	ErrMalformedDocument = errors.New("malformed project document")
)

// Snapshot is an immutable hotspot set for one project, borrowed by a
// session for its lifetime. Hotspots keep the order of the source document.
type Snapshot struct {
	ProjectID string
	FetchedAt time.Time

	hotspots []Hotspot
	byID     map[string]int
}

// NewSnapshot validates the records and builds a snapshot. hotspot_id must be
// unique; an empty id is allowed once, as in a freshly created project. An
// unusable pin_color is dropped so the default colour applies.
func NewSnapshot(projectID string, hotspots []Hotspot, fetchedAt time.Time) (*Snapshot, error) {
	s := &Snapshot{
		ProjectID: projectID,
		FetchedAt: fetchedAt,
		hotspots:  make([]Hotspot, len(hotspots)),
		byID:      make(map[string]int, len(hotspots)),
	}
	copy(s.hotspots, hotspots)

	for i := range s.hotspots {
		h := &s.hotspots[i]
		if c, ok := NormalizePinColor(h.PinColor); ok {
			h.PinColor = c
		} else {
			logging.Warn().
				Str("project_id", projectID).
				Str("hotspot_id", h.ID).
				Str("pin_color", h.PinColor).
				Msg("Ignoring invalid pin_color")
			h.PinColor = ""
		}
		if verr := validation.ValidateStruct(h); verr != nil {
			return nil, fmt.Errorf("%w at index %d: %s", ErrInvalidHotspot, i, verr.Error())
		}
		if _, dup := s.byID[h.ID]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, h.ID)
		}
		s.byID[h.ID] = i
	}
	return s, nil
}

// Len returns the number of hotspots.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.hotspots)
}

// All returns the hotspots in document order. Callers must not modify the
// returned slice.
func (s *Snapshot) All() []Hotspot {
	if s == nil {
		return nil
	}
	return s.hotspots
}

// Get returns the hotspot with the given id.
func (s *Snapshot) Get(id string) (*Hotspot, bool) {
	if s == nil {
		return nil, false
	}
	i, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	return &s.hotspots[i], true
}

// IndexOf returns the document position of id, or -1.
func (s *Snapshot) IndexOf(id string) int {
	if s == nil {
		return -1
	}
	if i, ok := s.byID[id]; ok {
		return i
	}
	return -1
}

// ByName returns the first hotspot with the given display name. Viewer URLs
// address hotspots by name.
func (s *Snapshot) ByName(name string) (*Hotspot, bool) {
	if s == nil {
		return nil, false
	}
	for i := range s.hotspots {
		if s.hotspots[i].Name == name {
			return &s.hotspots[i], true
		}
	}
	return nil, false
}

// Age reports how long ago the snapshot was fetched.
func (s *Snapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.FetchedAt)
}
