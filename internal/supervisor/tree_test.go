// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package supervisor

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"
)

// stubService fails failures times, then runs until canceled.
type stubService struct {
	name     string
	failures int32
	starts   atomic.Int32
}

func (s *stubService) Serve(ctx context.Context) error {
	if n := s.starts.Add(1); n <= s.failures {
		return errors.New("simulated failure")
	}
	<-ctx.Done()
	return ctx.Err()
}

func (s *stubService) String() string { return s.name }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func waitForStarts(t *testing.T, s *stubService, n int32) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for s.starts.Load() < n {
		if time.Now().After(deadline) {
			t.Fatalf("%s started %d times, want >= %d", s.name, s.starts.Load(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestNewSupervisorTree_Defaults(t *testing.T) {
	t.Parallel()

	tree, err := NewSupervisorTree(quietLogger(), TreeConfig{})
	if err != nil {
		t.Fatalf("NewSupervisorTree() error = %v", err)
	}
	if tree.Root() == nil {
		t.Fatal("root supervisor is nil")
	}
	if tree.config != DefaultTreeConfig() {
		t.Errorf("config = %+v, want defaults %+v", tree.config, DefaultTreeConfig())
	}

	tree, _ = NewSupervisorTree(quietLogger(), TreeConfig{ShutdownTimeout: 2 * time.Second})
	if tree.config.ShutdownTimeout != 2*time.Second || tree.config.FailureThreshold != 5 {
		t.Errorf("explicit fields should be kept and the rest defaulted: %+v", tree.config)
	}
}

func TestSupervisorTree_StartsEveryLayer(t *testing.T) {
	t.Parallel()

	tree, _ := NewSupervisorTree(quietLogger(), TreeConfig{ShutdownTimeout: time.Second})
	engine := &stubService{name: "session-manager"}
	messaging := &stubService{name: "websocket-hub"}
	api := &stubService{name: "http-server"}
	tree.AddEngineService(engine)
	tree.AddMessagingService(messaging)
	tree.AddAPIService(api)

	ctx, cancel := context.WithCancel(context.Background())
	done := tree.ServeBackground(ctx)

	for _, s := range []*stubService{engine, messaging, api} {
		waitForStarts(t, s, 1)
	}
	cancel()

	select {
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("tree did not stop")
	}

	report, err := tree.UnstoppedServiceReport()
	if err != nil {
		t.Fatalf("UnstoppedServiceReport() error = %v", err)
	}
	if len(report) != 0 {
		t.Errorf("services outlived shutdown: %v", report)
	}
}

func TestSupervisorTree_RestartIsolated(t *testing.T) {
	t.Parallel()

	tree, _ := NewSupervisorTree(quietLogger(), TreeConfig{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  time.Second,
	})
	flaky := &stubService{name: "event-forwarder", failures: 2}
	stable := &stubService{name: "timeout-watchdog"}
	tree.AddMessagingService(flaky)
	tree.AddEngineService(stable)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := tree.ServeBackground(ctx)

	waitForStarts(t, flaky, 3)
	waitForStarts(t, stable, 1)
	if n := stable.starts.Load(); n != 1 {
		t.Errorf("engine service restarted %d times because of a messaging failure", n-1)
	}

	cancel()
	<-done
}
