// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package services adapts Waypoint components that do not already implement
suture.Service.

  - HTTPServerService: ListenAndServe/Shutdown to Serve, with a bounded drain
  - BrokerService: owns an embedded NATS server started before the tree
  - TimeoutWatchdog: periodically fails silent sessions closed

The session manager, WebSocket hub and event forwarder implement Serve and
String themselves and are added to the tree directly.

Return values drive suture:

	nil                      stopped cleanly, not restarted
	ctx.Err()                shutdown requested
	wrapped ErrDoNotRestart  permanent failure
	other error              restarted with backoff
*/
package services
