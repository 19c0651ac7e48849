// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package hotspot

import (
	"strconv"
	"strings"
)

// Default marker colours.
const (
	DefaultPinColor = "add8e6"
	GroupedPinColor = "00af91"
)

// PinColor returns the marker colour for h. An explicit pin_color wins,
// otherwise grouped hotspots get GroupedPinColor.
func PinColor(h *Hotspot, grouped bool) string {
	switch {
	case h.PinColor != "":
		return h.PinColor
	case grouped:
		return GroupedPinColor
	default:
		return DefaultPinColor
	}
}

// NormalizePinColor strips a leading '#' and lowercases c. It reports false
// when c is neither empty nor a six digit hex colour.
func NormalizePinColor(c string) (string, bool) {
	c = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(c), "#"))
	if c == "" {
		return "", true
	}
	if len(c) != 6 {
		return "", false
	}
	if _, err := strconv.ParseUint(c, 16, 32); err != nil {
		return "", false
	}
	return c, true
}

// MarkerLabel is the 1-based label shown on the marker at position index.
func MarkerLabel(index int) string {
	return strconv.Itoa(index + 1)
}
