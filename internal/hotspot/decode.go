// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package hotspot

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
)

// Project is the subset of a stored project document the engine reads.
type Project struct {
	ID       string
	Name     string
	Hotspots []Hotspot
}

// projectDocument mirrors the stored layout. Entries of "hotspots" are
// either objects or JSON-encoded strings of objects.
type projectDocument struct {
	ID       string            `json:"project_id"`
	Name     string            `json:"name"`
	Hotspots []json.RawMessage `json:"hotspots"`
}

// DecodeProject parses a project document.
func DecodeProject(data []byte) (*Project, error) {
	var doc projectDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}

	hotspots, err := decodeRecords(doc.Hotspots)
	if err != nil {
		return nil, err
	}
	return &Project{ID: doc.ID, Name: doc.Name, Hotspots: hotspots}, nil
}

// DecodeHotspots parses a bare JSON array of hotspot records, with the same
// string-or-object rule as DecodeProject.
func DecodeHotspots(data []byte) ([]Hotspot, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}
	return decodeRecords(raw)
}

func decodeRecords(raw []json.RawMessage) ([]Hotspot, error) {
	hotspots := make([]Hotspot, 0, len(raw))
	for i, rec := range raw {
		rec = bytes.TrimSpace(rec)
		if len(rec) > 0 && rec[0] == '"' {
			var encoded string
			if err := json.Unmarshal(rec, &encoded); err != nil {
				return nil, fmt.Errorf("%w: hotspot %d: %w", ErrMalformedDocument, i, err)
			}
			rec = []byte(encoded)
		}

		var h Hotspot
		if err := json.Unmarshal(rec, &h); err != nil {
			return nil, fmt.Errorf("%w: hotspot %d: %w", ErrMalformedDocument, i, err)
		}
		hotspots = append(hotspots, h)
	}
	return hotspots, nil
}
