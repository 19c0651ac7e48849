// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

// Package logging provides the zerolog-based structured logger used across
// Waypoint.
//
// A single global logger is configured once at startup from the logging
// section of the configuration (LOG_LEVEL, LOG_FORMAT, LOG_CALLER):
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Str("project_id", id).Int("hotspots", n).Msg("snapshot loaded")
//
// Tracking sessions tag their context so every line written on behalf of a
// session carries its IDs:
//
//	ctx = logging.ContextWithSession(ctx, sessionID, projectID)
//	logging.Ctx(ctx).Warn().Msg("location provider failed")
//
// Libraries that expect log/slog (suture, watermill) receive
// NewSlogLogger, which writes through the same zerolog pipeline.
//
// Always terminate event chains with Msg or Send; an unterminated chain is
// never written.
package logging
