// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/waypoint/config.yaml",
	"/etc/waypoint/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              3870,
			Timeout:           30 * time.Second,
			CORSOrigins:       []string{"*"},
			RateLimitRequests: 300,
			RateLimitWindow:   time.Minute,
		},
		Engine: EngineConfig{
			BoundaryMode:           "hull",
			CampusToleranceMeters:  50,
			TriggerRadiusMeters:    20,
			HysteresisMeters:       0,
			ReentryPolicy:          "restart",
			ClusterThresholdMeters: 10,
			GridCellMeters:         25,
		},
		Sessions: SessionsConfig{
			GracePeriod:          30 * time.Second,
			TimeoutCheckInterval: time.Second,
			MaxSessions:          1000,
			PlanCacheSize:        64,
			PlanCacheTTL:         time.Hour,
		},
		Hotspots: HotspotsConfig{
			Source:                  SourceFile,
			Dir:                     "/data/projects",
			RequestTimeout:          10 * time.Second,
			CachePath:               "",
			CacheTTL:                5 * time.Minute,
			BreakerTimeout:          30 * time.Second,
			BreakerFailureThreshold: 5,
		},
		NATS: NATSConfig{
			Enabled:       false,
			Embedded:      true,
			Host:          "127.0.0.1",
			Port:          4222,
			URL:           "nats://127.0.0.1:4222",
			SubjectPrefix: "waypoint.location",
			PublishEvents: true,
			MaxReconnects: -1,
			ReconnectWait: 2 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Supervisor: SupervisorConfig{
			FailureThreshold: 5,
			FailureDecay:     30,
			FailureBackoff:   15 * time.Second,
			ShutdownTimeout:  10 * time.Second,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf with layered sources:
//  1. Default values (from defaultConfig())
//  2. Config file (if found)
//  3. Environment variables (highest priority)
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
var envMappings = map[string]string{
	// HTTP server
	"http_host":           "server.host",
	"http_port":           "server.port",
	"http_timeout":        "server.timeout",
	"cors_origins":        "server.cors_origins",
	"rate_limit_requests": "server.rate_limit_requests",
	"rate_limit_window":   "server.rate_limit_window",

	// Engine thresholds
	"campus_boundary_mode":      "engine.boundary_mode",
	"campus_tolerance_meters":   "engine.campus_tolerance_meters",
	"trigger_radius_meters":     "engine.trigger_radius_meters",
	"trigger_hysteresis_meters": "engine.hysteresis_meters",
	"trigger_reentry_policy":    "engine.reentry_policy",
	"cluster_threshold_meters":  "engine.cluster_threshold_meters",
	"grid_cell_meters":          "engine.grid_cell_meters",

	// Sessions
	"location_grace_period":  "sessions.grace_period",
	"timeout_check_interval": "sessions.timeout_check_interval",
	"max_sessions":           "sessions.max_sessions",
	"plan_cache_size":        "sessions.plan_cache_size",
	"plan_cache_ttl":         "sessions.plan_cache_ttl",

	// Hotspot documents
	"hotspot_source":            "hotspots.source",
	"hotspot_dir":               "hotspots.dir",
	"hotspot_url":               "hotspots.url",
	"hotspot_request_timeout":   "hotspots.request_timeout",
	"hotspot_cache_path":        "hotspots.cache_path",
	"hotspot_cache_ttl":         "hotspots.cache_ttl",
	"hotspot_breaker_timeout":   "hotspots.breaker_timeout",
	"hotspot_breaker_threshold": "hotspots.breaker_failure_threshold",

	// NATS
	"nats_enabled":        "nats.enabled",
	"nats_embedded":       "nats.embedded",
	"nats_host":           "nats.host",
	"nats_port":           "nats.port",
	"nats_store_dir":      "nats.store_dir",
	"nats_url":            "nats.url",
	"nats_subject_prefix": "nats.subject_prefix",
	"nats_publish_events": "nats.publish_events",
	"nats_max_reconnects": "nats.max_reconnects",
	"nats_reconnect_wait": "nats.reconnect_wait",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Supervisor
	"supervisor_failure_threshold": "supervisor.failure_threshold",
	"supervisor_failure_decay":     "supervisor.failure_decay",
	"supervisor_failure_backoff":   "supervisor.failure_backoff",
	"supervisor_shutdown_timeout":  "supervisor.shutdown_timeout",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - TRIGGER_RADIUS_METERS -> engine.trigger_radius_meters
//   - NATS_URL -> nats.url
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}

	// Unmapped keys are skipped so random environment variables do not
	// pollute config.
	return ""
}
