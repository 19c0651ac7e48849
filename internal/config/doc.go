// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package config loads Waypoint configuration.

Configuration is layered with koanf, lowest priority first:

 1. Defaults from defaultConfig
 2. A YAML file: CONFIG_PATH, else the first of DefaultConfigPaths
 3. Environment variables listed in envMappings

Unmapped environment variables are ignored.

# Example config.yaml

	server:
	  port: 3870
	  cors_origins: ["https://tour.example.edu"]
	engine:
	  boundary_mode: hull
	  campus_tolerance_meters: 50
	  trigger_radius_meters: 20
	  hysteresis_meters: 5
	  reentry_policy: resume
	sessions:
	  grace_period: 30s
	hotspots:
	  source: http
	  url: https://content.example.edu/api
	  cache_ttl: 5m
	nats:
	  enabled: true
	  embedded: true
	  port: 4222

The typed sections convert to the settings structs of the packages they
configure, e.g. Config.EngineSettings and Config.ManagerSettings.
*/
package config
