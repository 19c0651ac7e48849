// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/tomtom215/waypoint/internal/api"
	"github.com/tomtom215/waypoint/internal/config"
	"github.com/tomtom215/waypoint/internal/events"
	"github.com/tomtom215/waypoint/internal/hotspot"
	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/session"
	"github.com/tomtom215/waypoint/internal/supervisor"
	"github.com/tomtom215/waypoint/internal/supervisor/services"
	ws "github.com/tomtom215/waypoint/internal/websocket"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(cfg.LoggingSettings())

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("Waypoint failed")
	}
	logging.Info().Msg("Application stopped gracefully")
}

// run wires the components and blocks until the supervisor tree stops.
func run(cfg *config.Config) error {
	logging.Info().
		Str("version", api.Version).
		Str("hotspot_source", cfg.Hotspots.Source).
		Bool("nats_enabled", cfg.NATS.Enabled).
		Msg("Starting Waypoint with supervisor tree")

	src, err := newHotspotSource(cfg)
	if err != nil {
		return err
	}
	cache, err := hotspot.OpenCache(cfg.CacheSettings(), src)
	if err != nil {
		return fmt.Errorf("open hotspot cache: %w", err)
	}
	defer func() {
		if err := cache.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing hotspot cache")
		}
	}()

	wmLogger := watermill.NewSlogLogger(logging.NewSlogLogger())

	natsComponents, err := initNATS(cfg, wmLogger)
	if err != nil {
		return err
	}
	defer natsComponents.Close()

	bus := events.NewBus(events.BusConfig{External: natsComponents.External()}, wmLogger)
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}()

	manager := session.NewManager(cache, bus, cfg.ManagerSettings(), natsComponents.Attachers()...)
	hub := ws.NewHub()
	forwarder := events.NewForwarder(bus, hub)

	handler := api.NewHandler(manager, hub, cfg)
	handler.AddHealthCheck("hotspot_source", sourceHealthCheck(cfg, src))
	if natsComponents != nil {
		handler.AddHealthCheck("nats", natsComponents.HealthCheck)
	}
	router := api.NewRouter(handler, nil)

	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), cfg.TreeSettings())
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	// === ADD SERVICES TO SUPERVISOR TREE ===

	tree.AddEngineService(manager)
	tree.AddEngineService(services.NewTimeoutWatchdog(manager, cfg.Sessions.TimeoutCheckInterval))

	if srv := natsComponents.Server(); srv != nil {
		tree.AddMessagingService(services.NewBrokerService(srv, cfg.Supervisor.ShutdownTimeout))
	}
	tree.AddMessagingService(forwarder)

	tree.AddAPIService(hub)
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Supervisor.ShutdownTimeout))

	logging.Info().
		Str("addr", server.Addr).
		Str("grace_period", cfg.Sessions.GracePeriod.String()).
		Float64("trigger_radius_m", cfg.Engine.TriggerRadiusMeters).
		Float64("campus_tolerance_m", cfg.Engine.CampusToleranceMeters).
		Msg("Services registered")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	var treeErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, waiting for supervisor to finish...")
		treeErr = <-errCh
	case treeErr = <-errCh:
	}
	if treeErr != nil && !errors.Is(treeErr, context.Canceled) {
		logging.Error().Err(treeErr).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}
	return nil
}
