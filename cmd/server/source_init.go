// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/sony/gobreaker/v2"

	"github.com/tomtom215/waypoint/internal/api"
	"github.com/tomtom215/waypoint/internal/config"
	"github.com/tomtom215/waypoint/internal/hotspot"
)

// newHotspotSource builds the configured document source.
func newHotspotSource(cfg *config.Config) (hotspot.Source, error) {
	switch cfg.Hotspots.Source {
	case config.SourceFile, "":
		return hotspot.NewFileSource(cfg.Hotspots.Dir), nil
	case config.SourceHTTP:
		client := &http.Client{Timeout: cfg.Hotspots.RequestTimeout}
		src, err := hotspot.NewHTTPSource(cfg.Hotspots.URL, client, cfg.BreakerSettings())
		if err != nil {
			return nil, fmt.Errorf("create http hotspot source: %w", err)
		}
		return src, nil
	default:
		return nil, fmt.Errorf("unknown hotspot source %q", cfg.Hotspots.Source)
	}
}

// sourceHealthCheck fails while the HTTP breaker is open or the project
// directory is unreadable.
func sourceHealthCheck(cfg *config.Config, src hotspot.Source) api.HealthCheck {
	return func(context.Context) error {
		switch s := src.(type) {
		case *hotspot.HTTPSource:
			if s.State() == gobreaker.StateOpen {
				return errors.New("hotspot source circuit breaker is open")
			}
		case *hotspot.FileSource:
			info, err := os.Stat(cfg.Hotspots.Dir)
			if err != nil {
				return fmt.Errorf("project directory: %w", err)
			}
			if !info.IsDir() {
				return fmt.Errorf("project directory %s is not a directory", cfg.Hotspots.Dir)
			}
		}
		return nil
	}
}
