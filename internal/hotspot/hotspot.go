// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package hotspot

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/waypoint/internal/geo"
)

// Degrees is a coordinate component that decodes from either a JSON number
// or a numeric string. Project documents written by older editors store
// latitude and longitude as strings.
type Degrees float64

// UnmarshalJSON accepts 41.15, "41.15" and null (left as 0). A value that is
// not a number decodes to NaN so one bad record does not fail the document;
// the engine later clamps it and reports a data quality issue.
func (d *Degrees) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			return nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			f = math.NaN()
		}
		*d = Degrees(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		f = math.NaN()
	}
	*d = Degrees(f)
	return nil
}

// MarshalJSON writes non-finite values as null.
func (d Degrees) MarshalJSON() ([]byte, error) {
	f := float64(d)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, f, 'f', -1, 64), nil
}

// Hotspot is one geographically anchored point of interest. Field names
// follow the stored project documents. The engine treats a Hotspot as
// read-only.
type Hotspot struct {
	ID           string  `json:"hotspot_id" validate:"max=256"`
	Name         string  `json:"name"`
	Latitude     Degrees `json:"latitude"`
	Longitude    Degrees `json:"longitude"`
	IsSubHotspot bool    `json:"isSubHotspot"`

	PinColor       string  `json:"pin_color,omitempty" validate:"omitempty,hexadecimal,len=6"`
	Overlay        string  `json:"overlay,omitempty"`
	OverlaySize    float64 `json:"overlay_size,omitempty"`
	OverlayOffsetX float64 `json:"overlay_offset_x,omitempty"`
	OverlayOffsetY float64 `json:"overlay_offset_y,omitempty"`
	VirtualObject  string  `json:"virtual_object,omitempty"`

	PanoramaImage string `json:"panorama_image,omitempty"`
	StartAudio    string `json:"start_audio,omitempty"`

	MainPages  []string `json:"main_pages,omitempty"`
	MediaPages []string `json:"media_pages,omitempty"`

	// Position is owned by the presentation layer and passed through untouched.
	Position json.RawMessage `json:"position,omitempty"`
}

// Coordinate returns the hotspot's location as stored, without clamping.
func (h *Hotspot) Coordinate() geo.Coordinate {
	return geo.NewCoordinate(float64(h.Latitude), float64(h.Longitude))
}
