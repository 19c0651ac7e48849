// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

type countingChecker struct {
	calls atomic.Int32
	mu    sync.Mutex
	last  time.Time
}

func (c *countingChecker) CheckTimeouts(now time.Time) int {
	c.calls.Add(1)
	c.mu.Lock()
	c.last = now
	c.mu.Unlock()
	return 1
}

func TestTimeoutWatchdog_Ticks(t *testing.T) {
	t.Parallel()

	checker := &countingChecker{}
	w := NewTimeoutWatchdog(checker, 5*time.Millisecond)
	stamp := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return stamp }

	ctx, cancel := context.WithCancel(context.Background())
	errCh := serveAsync(ctx, w)

	deadline := time.Now().Add(2 * time.Second)
	for checker.calls.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	if err := waitErr(t, errCh); !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v, want context.Canceled", err)
	}
	if checker.calls.Load() < 3 {
		t.Fatalf("CheckTimeouts called %d times, want >= 3", checker.calls.Load())
	}
	checker.mu.Lock()
	defer checker.mu.Unlock()
	if !checker.last.Equal(stamp) {
		t.Errorf("CheckTimeouts got %v, want injected clock %v", checker.last, stamp)
	}
}

func TestTimeoutWatchdog_DefaultInterval(t *testing.T) {
	t.Parallel()

	if w := NewTimeoutWatchdog(&countingChecker{}, 0); w.interval != time.Second {
		t.Errorf("interval = %v, want 1s", w.interval)
	}
	if got := NewTimeoutWatchdog(&countingChecker{}, time.Second).String(); got != "timeout-watchdog" {
		t.Errorf("String() = %q", got)
	}
}

type fakeBroker struct {
	running   atomic.Bool
	shutdowns atomic.Int32
}

func (b *fakeBroker) IsRunning() bool   { return b.running.Load() }
func (b *fakeBroker) ClientURL() string { return "nats://127.0.0.1:4222" }
func (b *fakeBroker) Shutdown(context.Context) error {
	b.shutdowns.Add(1)
	b.running.Store(false)
	return nil
}

func TestBrokerService(t *testing.T) {
	t.Parallel()

	t.Run("shuts the broker down on cancel", func(t *testing.T) {
		t.Parallel()
		b := &fakeBroker{}
		b.running.Store(true)

		ctx, cancel := context.WithCancel(context.Background())
		errCh := serveAsync(ctx, NewBrokerService(b, time.Second))
		time.Sleep(20 * time.Millisecond)
		cancel()

		if err := waitErr(t, errCh); !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
		if b.shutdowns.Load() != 1 {
			t.Errorf("Shutdown called %d times, want 1", b.shutdowns.Load())
		}
	})

	t.Run("stopped broker is not restarted", func(t *testing.T) {
		t.Parallel()
		err := NewBrokerService(&fakeBroker{}, time.Second).Serve(context.Background())
		if !errors.Is(err, suture.ErrDoNotRestart) {
			t.Errorf("Serve() = %v, want ErrDoNotRestart", err)
		}
	})

	t.Run("detects an unexpected stop", func(t *testing.T) {
		t.Parallel()
		b := &fakeBroker{}
		b.running.Store(true)
		svc := NewBrokerService(b, time.Second)
		svc.checkInterval = 5 * time.Millisecond

		errCh := serveAsync(context.Background(), svc)
		time.Sleep(20 * time.Millisecond)
		b.running.Store(false)

		if err := waitErr(t, errCh); !errors.Is(err, suture.ErrDoNotRestart) {
			t.Errorf("Serve() = %v, want ErrDoNotRestart", err)
		}
	})
}
