// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package config

import (
	"time"

	"github.com/tomtom215/waypoint/internal/broker"
	"github.com/tomtom215/waypoint/internal/events"
	"github.com/tomtom215/waypoint/internal/hotspot"
	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/proximity"
	"github.com/tomtom215/waypoint/internal/session"
	"github.com/tomtom215/waypoint/internal/supervisor"
)

// Hotspot source kinds.
const (
	SourceFile = "file"
	SourceHTTP = "http"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Engine     EngineConfig     `koanf:"engine"`
	Sessions   SessionsConfig   `koanf:"sessions"`
	Hotspots   HotspotsConfig   `koanf:"hotspots"`
	NATS       NATSConfig       `koanf:"nats"`
	Logging    LoggingConfig    `koanf:"logging"`
	Supervisor SupervisorConfig `koanf:"supervisor"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`

	// CORSOrigins also governs which origins may open a WebSocket.
	// "*" allows any origin.
	CORSOrigins []string `koanf:"cors_origins"`

	// RateLimitRequests per RateLimitWindow per client IP. Zero disables
	// rate limiting.
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
}

// EngineConfig holds the proximity engine thresholds.
//
// Environment Variables:
//   - CAMPUS_BOUNDARY_MODE: hull or radius (default: hull)
//   - CAMPUS_TOLERANCE_METERS: distance beyond the boundary still on campus (default: 50)
//   - TRIGGER_RADIUS_METERS: activation radius (default: 20)
//   - TRIGGER_HYSTERESIS_METERS: extra exit distance (default: 0)
//   - TRIGGER_REENTRY_POLICY: restart or resume (default: restart)
//   - CLUSTER_THRESHOLD_METERS: too-close pair distance (default: 10)
//   - GRID_CELL_METERS: spatial index cell size (default: 25)
type EngineConfig struct {
	BoundaryMode           string  `koanf:"boundary_mode"`
	CampusToleranceMeters  float64 `koanf:"campus_tolerance_meters"`
	TriggerRadiusMeters    float64 `koanf:"trigger_radius_meters"`
	HysteresisMeters       float64 `koanf:"hysteresis_meters"`
	ReentryPolicy          string  `koanf:"reentry_policy"`
	ClusterThresholdMeters float64 `koanf:"cluster_threshold_meters"`
	GridCellMeters         float64 `koanf:"grid_cell_meters"`
}

// SessionsConfig holds tour session settings.
type SessionsConfig struct {
	// GracePeriod without a fix before a session fails closed. Zero
	// disables the timeout.
	GracePeriod time.Duration `koanf:"grace_period"`
	// TimeoutCheckInterval is how often the watchdog checks grace periods.
	TimeoutCheckInterval time.Duration `koanf:"timeout_check_interval"`
	MaxSessions          int           `koanf:"max_sessions"`
	PlanCacheSize        int           `koanf:"plan_cache_size"`
	PlanCacheTTL         time.Duration `koanf:"plan_cache_ttl"`
}

// HotspotsConfig selects where hotspot documents come from and how they are
// cached.
type HotspotsConfig struct {
	// Source is "file" (one <project>.json per project in Dir) or "http"
	// (GET <URL>/projects/<project>).
	Source         string        `koanf:"source"`
	Dir            string        `koanf:"dir"`
	URL            string        `koanf:"url"`
	RequestTimeout time.Duration `koanf:"request_timeout"`

	// CachePath is the badger directory. Empty keeps the cache in memory.
	CachePath string        `koanf:"cache_path"`
	CacheTTL  time.Duration `koanf:"cache_ttl"`

	BreakerTimeout          time.Duration `koanf:"breaker_timeout"`
	BreakerFailureThreshold uint32        `koanf:"breaker_failure_threshold"`
}

// NATSConfig holds the message broker settings. Devices publish location
// fixes to <subject_prefix>.<session_id>; activations and status changes are
// published to the waypoint.* topics when PublishEvents is set.
type NATSConfig struct {
	Enabled bool `koanf:"enabled"`

	// Embedded starts an in-process server on Host:Port and ignores URL.
	Embedded bool   `koanf:"embedded"`
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	StoreDir string `koanf:"store_dir"`

	URL           string        `koanf:"url"`
	SubjectPrefix string        `koanf:"subject_prefix"`
	PublishEvents bool          `koanf:"publish_events"`
	MaxReconnects int           `koanf:"max_reconnects"`
	ReconnectWait time.Duration `koanf:"reconnect_wait"`
}

// LoggingConfig holds logging configuration.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false - include caller file:line (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// SupervisorConfig mirrors supervisor.TreeConfig.
type SupervisorConfig struct {
	FailureThreshold float64       `koanf:"failure_threshold"`
	FailureDecay     float64       `koanf:"failure_decay"`
	FailureBackoff   time.Duration `koanf:"failure_backoff"`
	ShutdownTimeout  time.Duration `koanf:"shutdown_timeout"`
}

// EngineSettings converts the engine section to proximity.Config.
func (c *Config) EngineSettings() proximity.Config {
	return proximity.Config{
		Campus: proximity.CampusConfig{
			Mode:            proximity.BoundaryMode(c.Engine.BoundaryMode),
			ToleranceMeters: c.Engine.CampusToleranceMeters,
		},
		Trigger: proximity.TriggerConfig{
			RadiusMeters:     c.Engine.TriggerRadiusMeters,
			HysteresisMeters: c.Engine.HysteresisMeters,
			Reentry:          proximity.ReentryPolicy(c.Engine.ReentryPolicy),
		},
		ClusterThresholdMeters: c.Engine.ClusterThresholdMeters,
		GridCellMeters:         c.Engine.GridCellMeters,
	}
}

// ManagerSettings converts the engine and sessions sections to a
// session.ManagerConfig.
func (c *Config) ManagerSettings() session.ManagerConfig {
	return session.ManagerConfig{
		Session: session.Config{
			Engine:      c.EngineSettings(),
			GracePeriod: c.Sessions.GracePeriod,
		},
		MaxSessions:   c.Sessions.MaxSessions,
		PlanCacheSize: c.Sessions.PlanCacheSize,
		PlanCacheTTL:  c.Sessions.PlanCacheTTL,
	}
}

// CacheSettings returns the snapshot cache configuration.
func (c *Config) CacheSettings() hotspot.CacheConfig {
	return hotspot.CacheConfig{Path: c.Hotspots.CachePath, TTL: c.Hotspots.CacheTTL}
}

// BreakerSettings returns the hotspot source breaker configuration.
func (c *Config) BreakerSettings() hotspot.BreakerConfig {
	b := hotspot.DefaultBreakerConfig()
	b.Timeout = c.Hotspots.BreakerTimeout
	b.FailureThreshold = c.Hotspots.BreakerFailureThreshold
	return b
}

// BrokerServerSettings returns the embedded server configuration.
func (c *Config) BrokerServerSettings() broker.ServerConfig {
	s := broker.DefaultServerConfig()
	s.Host = c.NATS.Host
	s.Port = c.NATS.Port
	s.StoreDir = c.NATS.StoreDir
	return s
}

// BrokerClientSettings returns the client configuration for url. Pass the
// embedded server's ClientURL when NATS.Embedded is set.
func (c *Config) BrokerClientSettings(url string) broker.ClientConfig {
	return broker.ClientConfig{
		URL:           url,
		Name:          "waypoint",
		MaxReconnects: c.NATS.MaxReconnects,
		ReconnectWait: c.NATS.ReconnectWait,
	}
}

// PublisherSettings returns the event publisher configuration for url.
func (c *Config) PublisherSettings(url string) events.NATSPublisherConfig {
	p := events.DefaultNATSPublisherConfig()
	p.URL = url
	p.MaxReconnects = c.NATS.MaxReconnects
	p.ReconnectWait = c.NATS.ReconnectWait
	return p
}

// LoggingSettings returns the logging package configuration.
func (c *Config) LoggingSettings() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.Logging.Level
	cfg.Format = c.Logging.Format
	cfg.Caller = c.Logging.Caller
	return cfg
}

// TreeSettings returns the supervisor tree configuration.
func (c *Config) TreeSettings() supervisor.TreeConfig {
	return supervisor.TreeConfig{
		FailureThreshold: c.Supervisor.FailureThreshold,
		FailureDecay:     c.Supervisor.FailureDecay,
		FailureBackoff:   c.Supervisor.FailureBackoff,
		ShutdownTimeout:  c.Supervisor.ShutdownTimeout,
	}
}
