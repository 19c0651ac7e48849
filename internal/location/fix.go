// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package location

import (
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/waypoint/internal/geo"
)

// ErrorCode classifies a provider failure.
type ErrorCode string

// Provider failure codes. They follow the browser Geolocation API plus the
// QR scanner used for hotspot check-in.
const (
	CodePermissionDenied    ErrorCode = "permission_denied"
	CodePositionUnavailable ErrorCode = "position_unavailable"
	CodeTimeout             ErrorCode = "timeout"
	CodeCameraUnavailable   ErrorCode = "camera_unavailable"
	CodeUnknown             ErrorCode = "unknown"
)

// DefaultErrorMessage is reported for failures without a description.
const DefaultErrorMessage = "Error: The Geolocation service failed."

// ErrMalformedFix is returned for payloads that are neither a position nor
// an error.
var ErrMalformedFix = errors.New("malformed location fix")

// ProviderError is a failure reported by a location provider.
type ProviderError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message,omitempty"`
}

// NewProviderError creates a ProviderError. An empty code becomes
// CodeUnknown.
func NewProviderError(code ErrorCode, message string) *ProviderError {
	if code == "" {
		code = CodeUnknown
	}
	return &ProviderError{Code: code, Message: message}
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("location provider %s: %s", e.Code, e.Describe())
}

// Describe returns the user facing message, falling back to
// DefaultErrorMessage.
func (e *ProviderError) Describe() string {
	if e == nil || e.Message == "" {
		return DefaultErrorMessage
	}
	return e.Message
}

// Fix is one delivery from a provider. Exactly one of Sample or Err is
// meaningful: Err non-nil marks a failure.
type Fix struct {
	Sample geo.Sample
	Err    *ProviderError
}

// Failed reports whether f is a provider failure.
func (f Fix) Failed() bool { return f.Err != nil }

// Success wraps a sample.
func Success(s geo.Sample) Fix { return Fix{Sample: s} }

// Failure wraps a provider error.
func Failure(err *ProviderError) Fix {
	if err == nil {
		err = NewProviderError(CodeUnknown, "")
	}
	return Fix{Err: err}
}

// Message is the JSON form of a Fix shared by HTTP, NATS and replay tracks.
type Message struct {
	Latitude  *float64       `json:"latitude,omitempty"`
	Longitude *float64       `json:"longitude,omitempty"`
	Accuracy  float64        `json:"accuracy,omitempty"`
	Timestamp time.Time      `json:"timestamp,omitempty"`
	Error     *ProviderError `json:"error,omitempty"`
}

// ToFix converts m. A message without a timestamp is stamped with now.
// Out of range coordinates are accepted here and clamped by the engine.
func (m Message) ToFix(now time.Time) (Fix, error) {
	if m.Error != nil {
		return Failure(NewProviderError(m.Error.Code, m.Error.Message)), nil
	}
	if m.Latitude == nil || m.Longitude == nil {
		return Fix{}, fmt.Errorf("%w: latitude and longitude are required", ErrMalformedFix)
	}
	ts := m.Timestamp
	if ts.IsZero() {
		ts = now
	}
	return Success(geo.Sample{
		Coords:    geo.NewCoordinate(*m.Latitude, *m.Longitude),
		Timestamp: ts,
		Accuracy:  m.Accuracy,
	}), nil
}

// MessageFor is the inverse of ToFix.
func MessageFor(f Fix) Message {
	if f.Failed() {
		return Message{Error: f.Err}
	}
	lat, lon := f.Sample.Coords.Latitude, f.Sample.Coords.Longitude
	return Message{
		Latitude:  &lat,
		Longitude: &lon,
		Accuracy:  f.Sample.Accuracy,
		Timestamp: f.Sample.Timestamp,
	}
}

// DecodeFix parses one JSON message.
func DecodeFix(data []byte, now time.Time) (Fix, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Fix{}, fmt.Errorf("%w: %w", ErrMalformedFix, err)
	}
	return m.ToFix(now)
}

// EncodeFix renders f as one JSON message.
func EncodeFix(f Fix) ([]byte, error) {
	return json.Marshal(MessageFor(f))
}
