// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package metrics holds the Prometheus collectors for Waypoint.

Collectors are registered with the default registry through promauto and
exposed at /metrics by the API router:

	curl http://localhost:8080/metrics

# Available Metrics

Engine:
  - waypoint_position_samples_processed_total
  - waypoint_position_samples_dropped_total
  - waypoint_evaluation_duration_seconds
  - waypoint_hotspot_events_total{kind}
  - waypoint_data_quality_issues_total{source,issue}
  - waypoint_location_errors_total{code}
  - waypoint_session_transitions_total{from,to}
  - waypoint_sessions_active, waypoint_sessions_on_campus

Snapshots:
  - waypoint_snapshot_cache_hits_total, waypoint_snapshot_cache_misses_total
  - waypoint_snapshot_fetch_duration_seconds{source}
  - waypoint_snapshot_fetch_errors_total{source}

API, WebSocket, event bus and circuit breaker collectors follow the same
naming scheme.
*/
package metrics
