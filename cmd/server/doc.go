// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package main is the entry point for the Waypoint server.

Waypoint serves geofenced campus tours. For every viewer session it decides
whether the viewer is on campus, which hotspots they are standing close to
and which hotspots the map should show, failing closed when the location
provider errors or goes quiet.

# Application Architecture

The server runs under a Suture v4 supervisor tree:

	RootSupervisor ("waypoint")
	├── EngineSupervisor ("engine-layer")
	│   ├── Session manager
	│   └── Timeout watchdog (grace period enforcement)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── Embedded NATS server (optional)
	│   └── Event forwarder (bus to WebSocket)
	└── APISupervisor ("api-layer")
	    ├── WebSocket hub
	    └── HTTP server

Component initialization order:

 1. Configuration: Koanf v2 with environment variables and config files
 2. Logging: zerolog with JSON/console output modes
 3. Hotspot source: project files on disk or an HTTP backend behind a
    circuit breaker, cached in Badger
 4. NATS (optional): embedded or external server, location fixes in and
    session events out
 5. Event bus, session manager, WebSocket hub and forwarder
 6. HTTP server: Chi router with middleware stack
 7. Supervisor tree

# Configuration

Configuration is loaded via Koanf v2 (environment variables > config file >
defaults). Commonly set variables:

	HTTP_PORT=3870
	LOG_LEVEL=info                  # trace, debug, info, warn, error
	LOG_FORMAT=json                 # json or console

	HOTSPOT_SOURCE=file             # file or http
	HOTSPOT_DIR=/data/projects      # <project>.json per project
	HOTSPOT_URL=https://cms.example.edu/api
	HOTSPOT_CACHE_PATH=             # empty keeps the cache in memory

	CAMPUS_TOLERANCE_METERS=50
	TRIGGER_RADIUS_METERS=20
	CLUSTER_THRESHOLD_METERS=10
	LOCATION_GRACE_PERIOD=30s

	NATS_ENABLED=false
	NATS_EMBEDDED=true

# Signal Handling

SIGINT and SIGTERM cancel the root context. Every layer then stops: the HTTP
server drains in-flight requests, sessions are closed and the embedded
broker shuts down. Services that outlive SUPERVISOR_SHUTDOWN_TIMEOUT are
logged.
*/
package main
