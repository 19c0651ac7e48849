// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/waypoint/internal/proximity"
)

// isolate runs the test in an empty directory with CONFIG_PATH unset.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv(ConfigPathEnvVar, "")
	return dir
}

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	engine := cfg.EngineSettings()
	if engine != proximity.DefaultConfig() {
		t.Errorf("EngineSettings() = %+v, want proximity defaults %+v", engine, proximity.DefaultConfig())
	}
	if cfg.Sessions.GracePeriod != 30*time.Second {
		t.Errorf("Sessions.GracePeriod = %v, want 30s", cfg.Sessions.GracePeriod)
	}
	if cfg.Hotspots.Source != SourceFile {
		t.Errorf("Hotspots.Source = %q, want file", cfg.Hotspots.Source)
	}
	if cfg.NATS.Enabled {
		t.Error("NATS should be disabled by default")
	}
	if cfg.NATS.SubjectPrefix != "waypoint.location" {
		t.Errorf("NATS.SubjectPrefix = %q", cfg.NATS.SubjectPrefix)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"HTTP_PORT", "server.port"},
		{"http_port", "server.port"},
		{"CORS_ORIGINS", "server.cors_origins"},
		{"CAMPUS_TOLERANCE_METERS", "engine.campus_tolerance_meters"},
		{"CAMPUS_BOUNDARY_MODE", "engine.boundary_mode"},
		{"TRIGGER_RADIUS_METERS", "engine.trigger_radius_meters"},
		{"TRIGGER_HYSTERESIS_METERS", "engine.hysteresis_meters"},
		{"TRIGGER_REENTRY_POLICY", "engine.reentry_policy"},
		{"CLUSTER_THRESHOLD_METERS", "engine.cluster_threshold_meters"},
		{"LOCATION_GRACE_PERIOD", "sessions.grace_period"},
		{"HOTSPOT_SOURCE", "hotspots.source"},
		{"HOTSPOT_BREAKER_THRESHOLD", "hotspots.breaker_failure_threshold"},
		{"NATS_URL", "nats.url"},
		{"NATS_SUBJECT_PREFIX", "nats.subject_prefix"},
		{"LOG_LEVEL", "logging.level"},
		{"SUPERVISOR_SHUTDOWN_TIMEOUT", "supervisor.shutdown_timeout"},

		{"RANDOM_VAR", ""},
		{"PATH", ""},
		{"HOME", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := envTransformFunc(tt.input); got != tt.expected {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestEnvMappingsTargetKnownKeys(t *testing.T) {
	known := make(map[string]bool)
	for env, path := range envMappings {
		section, _, ok := strings.Cut(path, ".")
		if !ok {
			t.Errorf("%s maps to %q without a section", env, path)
			continue
		}
		known[section] = true
	}
	for _, want := range []string{"server", "engine", "sessions", "hotspots", "nats", "logging", "supervisor"} {
		if !known[want] {
			t.Errorf("no environment variable maps into section %q", want)
		}
	}
}

func TestFindConfigFile(t *testing.T) {
	dir := isolate(t)

	if got := findConfigFile(); got != "" {
		t.Fatalf("findConfigFile() = %q, want empty", got)
	}

	writeConfig(t, dir, "config.yaml", "server:\n  port: 9000\n")
	if got := findConfigFile(); got != "config.yaml" {
		t.Errorf("findConfigFile() = %q, want config.yaml", got)
	}

	custom := writeConfig(t, dir, "custom.yaml", "server:\n  port: 9001\n")
	t.Setenv(ConfigPathEnvVar, custom)
	if got := findConfigFile(); got != custom {
		t.Errorf("findConfigFile() = %q, want %q", got, custom)
	}

	t.Setenv(ConfigPathEnvVar, filepath.Join(dir, "missing.yaml"))
	if got := findConfigFile(); got != "config.yaml" {
		t.Errorf("missing CONFIG_PATH should fall back, got %q", got)
	}
}

func TestLoadWithKoanfEnvVars(t *testing.T) {
	isolate(t)
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("TRIGGER_RADIUS_METERS", "35.5")
	t.Setenv("TRIGGER_REENTRY_POLICY", "resume")
	t.Setenv("LOCATION_GRACE_PERIOD", "45s")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Engine.TriggerRadiusMeters != 35.5 {
		t.Errorf("TriggerRadiusMeters = %v, want 35.5", cfg.Engine.TriggerRadiusMeters)
	}
	if got := cfg.EngineSettings().Trigger.Reentry; got != proximity.ReentryResume {
		t.Errorf("Reentry = %q, want resume", got)
	}
	if got := cfg.ManagerSettings().Session.GracePeriod; got != 45*time.Second {
		t.Errorf("GracePeriod = %v, want 45s", got)
	}
	if want := []string{"https://a.example", "https://b.example"}; !slices.Equal(cfg.Server.CORSOrigins, want) {
		t.Errorf("CORSOrigins = %v, want %v", cfg.Server.CORSOrigins, want)
	}
	if cfg.LoggingSettings().Level != "debug" {
		t.Errorf("logging level = %q, want debug", cfg.LoggingSettings().Level)
	}

	// Untouched values keep their defaults.
	if cfg.Engine.CampusToleranceMeters != 50 {
		t.Errorf("CampusToleranceMeters = %v, want 50 (default)", cfg.Engine.CampusToleranceMeters)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want 0.0.0.0 (default)", cfg.Server.Host)
	}
}

func TestLoadWithKoanfConfigFile(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, "config.yaml", `
server:
  port: 8088
  cors_origins:
    - https://tour.example.edu
engine:
  boundary_mode: radius
  campus_tolerance_meters: 75
  hysteresis_meters: 5
hotspots:
  source: http
  url: https://content.example.edu/api
  cache_ttl: 1m
nats:
  enabled: true
  embedded: false
  url: nats://broker:4222
`)

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 8088 {
		t.Errorf("Server.Port = %d, want 8088", cfg.Server.Port)
	}
	if !slices.Equal(cfg.Server.CORSOrigins, []string{"https://tour.example.edu"}) {
		t.Errorf("CORSOrigins = %v", cfg.Server.CORSOrigins)
	}
	engine := cfg.EngineSettings()
	if engine.Campus.Mode != proximity.BoundaryRadius || engine.Campus.ToleranceMeters != 75 {
		t.Errorf("campus = %+v", engine.Campus)
	}
	if engine.Trigger.HysteresisMeters != 5 {
		t.Errorf("hysteresis = %v, want 5", engine.Trigger.HysteresisMeters)
	}
	if cfg.CacheSettings().TTL != time.Minute {
		t.Errorf("cache TTL = %v, want 1m", cfg.CacheSettings().TTL)
	}
	if cfg.Hotspots.Source != SourceHTTP {
		t.Errorf("Hotspots.Source = %q", cfg.Hotspots.Source)
	}
	if got := cfg.BrokerClientSettings(cfg.NATS.URL).URL; got != "nats://broker:4222" {
		t.Errorf("client URL = %q", got)
	}
}

func TestLoadWithKoanfEnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	path := writeConfig(t, dir, "waypoint.yaml", "engine:\n  trigger_radius_meters: 30\n")
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("TRIGGER_RADIUS_METERS", "12")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.Engine.TriggerRadiusMeters != 12 {
		t.Errorf("TriggerRadiusMeters = %v, want env value 12", cfg.Engine.TriggerRadiusMeters)
	}
}

func TestLoadWithKoanfValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"bad port", map[string]string{"HTTP_PORT": "70000"}, "HTTP_PORT"},
		{"zero radius", map[string]string{"TRIGGER_RADIUS_METERS": "0"}, "trigger radius"},
		{"negative tolerance", map[string]string{"CAMPUS_TOLERANCE_METERS": "-1"}, "campus tolerance"},
		{"unknown boundary", map[string]string{"CAMPUS_BOUNDARY_MODE": "polygon"}, "boundary mode"},
		{"unknown policy", map[string]string{"TRIGGER_REENTRY_POLICY": "skip"}, "reentry policy"},
		{"negative grace", map[string]string{"LOCATION_GRACE_PERIOD": "-5s"}, "LOCATION_GRACE_PERIOD"},
		{"http without url", map[string]string{"HOTSPOT_SOURCE": "http"}, "HOTSPOT_URL"},
		{"relative url", map[string]string{"HOTSPOT_SOURCE": "http", "HOTSPOT_URL": "content/api"}, "absolute"},
		{"unknown source", map[string]string{"HOTSPOT_SOURCE": "s3"}, "HOTSPOT_SOURCE"},
		{"external nats without scheme", map[string]string{"NATS_ENABLED": "true", "NATS_EMBEDDED": "false", "NATS_URL": "broker:4222"}, "NATS_URL"},
		{"wildcard prefix", map[string]string{"NATS_ENABLED": "true", "NATS_SUBJECT_PREFIX": "waypoint.*"}, "literal subject"},
		{"bad log level", map[string]string{"LOG_LEVEL": "verbose"}, "LOG_LEVEL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadWithKoanf()
			if err == nil {
				t.Fatalf("LoadWithKoanf() succeeded, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadWithKoanfInvalidFile(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, "config.yaml", "server: [unclosed\n")

	if _, err := LoadWithKoanf(); err == nil {
		t.Fatal("expected a parse error for malformed YAML")
	}
}

func TestSettingsConversions(t *testing.T) {
	cfg := defaultConfig()
	cfg.NATS.Port = -1
	cfg.NATS.StoreDir = "/var/lib/waypoint/nats"

	srv := cfg.BrokerServerSettings()
	if srv.Port != -1 || srv.StoreDir != "/var/lib/waypoint/nats" || srv.ReadyTimeout == 0 {
		t.Errorf("BrokerServerSettings() = %+v", srv)
	}

	pub := cfg.PublisherSettings("nats://127.0.0.1:4999")
	if pub.URL != "nats://127.0.0.1:4999" || pub.FailureThreshold == 0 {
		t.Errorf("PublisherSettings() = %+v", pub)
	}

	b := cfg.BreakerSettings()
	if b.FailureThreshold != 5 || b.Timeout != 30*time.Second || b.MaxRequests == 0 {
		t.Errorf("BreakerSettings() = %+v", b)
	}

	m := cfg.ManagerSettings()
	if m.MaxSessions != 1000 || m.PlanCacheSize != 64 || m.PlanCacheTTL != time.Hour {
		t.Errorf("ManagerSettings() = %+v", m)
	}

	tree := cfg.TreeSettings()
	if tree.ShutdownTimeout != 10*time.Second || tree.FailureThreshold != 5 {
		t.Errorf("TreeSettings() = %+v", tree)
	}
}
