// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.EngineSettings().Validate(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	if err := c.validateSessions(); err != nil {
		return err
	}
	if err := c.validateHotspots(); err != nil {
		return err
	}
	if err := c.validateNATS(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if c.Server.RateLimitRequests < 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be >= 0")
	}
	if c.Server.RateLimitRequests > 0 && c.Server.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive when rate limiting is enabled")
	}
	return nil
}

func (c *Config) validateSessions() error {
	if c.Sessions.GracePeriod < 0 {
		return fmt.Errorf("LOCATION_GRACE_PERIOD must be >= 0")
	}
	if c.Sessions.GracePeriod > 0 && c.Sessions.TimeoutCheckInterval <= 0 {
		return fmt.Errorf("TIMEOUT_CHECK_INTERVAL must be positive when a grace period is set")
	}
	if c.Sessions.MaxSessions < 0 {
		return fmt.Errorf("MAX_SESSIONS must be >= 0")
	}
	if c.Sessions.PlanCacheSize < 1 {
		return fmt.Errorf("PLAN_CACHE_SIZE must be at least 1")
	}
	return nil
}

func (c *Config) validateHotspots() error {
	switch c.Hotspots.Source {
	case SourceFile:
		if c.Hotspots.Dir == "" {
			return fmt.Errorf("HOTSPOT_DIR is required when HOTSPOT_SOURCE=file")
		}
	case SourceHTTP:
		if c.Hotspots.URL == "" {
			return fmt.Errorf("HOTSPOT_URL is required when HOTSPOT_SOURCE=http")
		}
		u, err := url.Parse(c.Hotspots.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("HOTSPOT_URL must be an absolute http(s) URL, got %q", c.Hotspots.URL)
		}
		if c.Hotspots.BreakerFailureThreshold == 0 {
			return fmt.Errorf("HOTSPOT_BREAKER_THRESHOLD must be at least 1")
		}
	default:
		return fmt.Errorf("HOTSPOT_SOURCE must be %q or %q, got %q", SourceFile, SourceHTTP, c.Hotspots.Source)
	}
	if c.Hotspots.CacheTTL < 0 {
		return fmt.Errorf("HOTSPOT_CACHE_TTL must be >= 0")
	}
	return nil
}

func (c *Config) validateNATS() error {
	if !c.NATS.Enabled {
		return nil
	}
	if c.NATS.Embedded {
		if c.NATS.Port < -1 || c.NATS.Port > 65535 {
			return fmt.Errorf("NATS_PORT must be between -1 and 65535, got %d", c.NATS.Port)
		}
	} else if !strings.HasPrefix(c.NATS.URL, "nats://") && !strings.HasPrefix(c.NATS.URL, "tls://") {
		return fmt.Errorf("NATS_URL must start with nats:// or tls://, got %q", c.NATS.URL)
	}
	prefix := c.NATS.SubjectPrefix
	if prefix == "" {
		return fmt.Errorf("NATS_SUBJECT_PREFIX is required")
	}
	if strings.ContainsAny(prefix, "*> \t") || strings.HasPrefix(prefix, ".") || strings.HasSuffix(prefix, ".") {
		return fmt.Errorf("NATS_SUBJECT_PREFIX %q is not a literal subject", prefix)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error; got %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
