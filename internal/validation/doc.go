// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

// Package validation wraps go-playground/validator with a shared,
// thread-safe instance and human-readable error messages.
//
// Field errors are reported by JSON name so that API clients see the same
// keys they sent. Two custom tags are registered:
//
//	slug    project identifiers usable as file names and NATS subject tokens
//	finite  float fields that must not be NaN or infinite
//
// Usage:
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    ...
//	}
package validation
