// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package supervisor runs Waypoint's long-lived services under suture v4.

	waypoint
	├── engine-layer
	│   ├── session-manager
	│   └── timeout-watchdog
	├── messaging-layer
	│   ├── nats-broker      (embedded NATS only)
	│   ├── websocket-hub
	│   └── event-forwarder
	└── api-layer
	    └── http-server

Each layer restarts independently with suture's backoff. Supervisor events
are logged through sutureslog using the slog adapter from the logging
package.

Usage:

	tree, _ := supervisor.NewSupervisorTree(logging.NewSlogLogger(), cfg.TreeSettings())
	tree.AddEngineService(manager)
	tree.AddEngineService(services.NewTimeoutWatchdog(manager, time.Second))
	tree.AddMessagingService(hub)
	tree.AddMessagingService(events.NewForwarder(bus, hub))
	tree.AddAPIService(services.NewHTTPServerService(srv, 10*time.Second))
	err := tree.Serve(ctx)
*/
package supervisor
