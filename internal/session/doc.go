// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package session runs tracking sessions: one Coordinator per viewer, fed by a
single goroutine from a latest-wins location mailbox.

# Lifecycle

	UNINITIALIZED --fix--> TRACKING(ON_CAMPUS | OFF_CAMPUS)
	TRACKING --provider error / grace timeout--> ERRORED
	ERRORED --fix--> TRACKING

A session fails closed. While UNINITIALIZED or ERRORED the effective campus
status is OFF_CAMPUS and the base view is shown, even if the last successful
fix was on campus. The last-known status is still reported.

Provider errors are de-duplicated by message: a repeat of the last reported
message produces no new warning. A successful fix clears the remembered
message.

# Manager

Manager creates sessions for a project, attaches the configured location
providers, and shares one proximity.Plan between sessions touring the same
snapshot. Refresh invalidates a project's cached snapshot and swaps the new
plan into its sessions. CheckTimeouts is driven by the supervisor's watchdog.

Every Update (status, trigger events, new warning) is handed to the
EventSink, which publishes it on the event bus.
*/
package session
