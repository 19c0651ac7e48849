// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/waypoint/internal/geo"
	"github.com/tomtom215/waypoint/internal/hotspot"
	"github.com/tomtom215/waypoint/internal/location"
	"github.com/tomtom215/waypoint/internal/proximity"
)

type fakeAttacher struct {
	mu       sync.Mutex
	attached map[string]location.Offerer
	detached []string
	fail     bool
}

func newFakeAttacher() *fakeAttacher {
	return &fakeAttacher{attached: make(map[string]location.Offerer)}
}

func (a *fakeAttacher) Attach(id string, dst location.Offerer) (func(), error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.fail {
		return nil, errors.New("broker unavailable")
	}
	a.attached[id] = dst
	return func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		a.detached = append(a.detached, id)
	}, nil
}

func (a *fakeAttacher) offerer(id string) location.Offerer {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.attached[id]
}

func newTestManager(t *testing.T, sink EventSink, attachers ...location.Attacher) (*Manager, *fakeLoader) {
	t.Helper()
	loader := newFakeLoader()
	loader.set("campus", campusSpots())
	m := NewManager(loader, sink, DefaultManagerConfig(), attachers...)
	t.Cleanup(m.Shutdown)
	return m, loader
}

func TestManager_CreateAndTrack(t *testing.T) {
	t.Parallel()

	sink := newRecordingSink()
	attacher := newFakeAttacher()
	m, _ := newTestManager(t, sink, attacher)

	s, err := m.Create(context.Background(), "campus")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if got, err := m.Get(s.ID); err != nil || got != s {
		t.Fatalf("Get() = %v, %v", got, err)
	}

	// Fixes arrive through the attached provider.
	attacher.offerer(s.ID).Offer(location.Success(sampleAt(campusCenter, epoch)))
	updates := sink.wait(t, 1)
	u := updates[0]
	if u.Status.SessionID != s.ID || u.Status.Campus != proximity.OnCampus {
		t.Errorf("update = %+v", u.Status)
	}
	if len(u.Events) != 1 || u.Events[0].HotspotID != "hall" {
		t.Errorf("events = %+v, want hall activation", u.Events)
	}

	if err := m.Offer(s.ID, location.Failure(location.NewProviderError(location.CodeTimeout, ""))); err != nil {
		t.Fatalf("Offer() error = %v", err)
	}
	updates = sink.wait(t, 2)
	if st := updates[1].Status; st.State != StateErrored || st.Campus != proximity.OffCampus {
		t.Errorf("after failure: %s/%s", st.State, st.Campus)
	}

	if err := m.Close(s.ID); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	select {
	case <-s.Done():
	default:
		t.Error("session loop still running after Close")
	}
	if _, err := m.Get(s.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get() after Close error = %v", err)
	}
	if err := m.Close(s.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("second Close() error = %v", err)
	}
	if len(attacher.detached) != 1 || attacher.detached[0] != s.ID {
		t.Errorf("detached = %v, want [%s]", attacher.detached, s.ID)
	}
}

func TestManager_SharesPlan(t *testing.T) {
	t.Parallel()

	m, loader := newTestManager(t, nil)
	a, err := m.Create(context.Background(), "campus")
	if err != nil {
		t.Fatal(err)
	}
	b, err := m.Create(context.Background(), "campus")
	if err != nil {
		t.Fatal(err)
	}
	if a.ID == b.ID {
		t.Fatal("session ids collide")
	}
	if a.Coordinator().Plan() != b.Coordinator().Plan() {
		t.Error("sessions on the same snapshot should share a plan")
	}
	if loader.loads != 2 {
		t.Errorf("loads = %d, want 2", loader.loads)
	}
	if m.Len() != 2 || len(m.List()) != 2 {
		t.Errorf("Len() = %d, List() = %d", m.Len(), len(m.List()))
	}
}

func TestManager_CreateErrors(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager(t, nil)
	if _, err := m.Create(context.Background(), "missing"); !errors.Is(err, hotspot.ErrNotFound) {
		t.Errorf("unknown project error = %v, want ErrNotFound", err)
	}

	attacher := newFakeAttacher()
	attacher.fail = true
	m2, _ := newTestManager(t, nil, attacher)
	if _, err := m2.Create(context.Background(), "campus"); err == nil {
		t.Error("Create() should fail when a provider cannot attach")
	}
	if m2.Len() != 0 {
		t.Errorf("failed Create left %d sessions", m2.Len())
	}

	loader := newFakeLoader()
	loader.set("campus", campusSpots())
	cfg := DefaultManagerConfig()
	cfg.MaxSessions = 1
	m3 := NewManager(loader, nil, cfg)
	t.Cleanup(m3.Shutdown)
	if _, err := m3.Create(context.Background(), "campus"); err != nil {
		t.Fatal(err)
	}
	if _, err := m3.Create(context.Background(), "campus"); !errors.Is(err, ErrTooManySessions) {
		t.Errorf("over limit error = %v, want ErrTooManySessions", err)
	}

	m3.Shutdown()
	if _, err := m3.Create(context.Background(), "campus"); !errors.Is(err, ErrManagerClosed) {
		t.Errorf("after Shutdown error = %v, want ErrManagerClosed", err)
	}
	if m3.Len() != 0 {
		t.Errorf("Shutdown left %d sessions", m3.Len())
	}
}

func TestManager_CheckTimeouts(t *testing.T) {
	t.Parallel()

	sink := newRecordingSink()
	m, _ := newTestManager(t, sink)
	clock := newFakeClock()
	m.now = clock.Now

	s, err := m.Create(context.Background(), "campus")
	if err != nil {
		t.Fatal(err)
	}

	if n := m.CheckTimeouts(clock.Advance(10 * time.Second)); n != 0 {
		t.Errorf("CheckTimeouts() = %d inside grace period", n)
	}
	if n := m.CheckTimeouts(clock.Advance(DefaultGracePeriod)); n != 1 {
		t.Fatalf("CheckTimeouts() = %d, want 1", n)
	}
	updates := sink.wait(t, 1)
	if updates[0].Status.Error != TimeoutMessage {
		t.Errorf("timeout error = %q", updates[0].Status.Error)
	}
	if s.Status().State != StateErrored {
		t.Errorf("state = %s, want ERRORED", s.Status().State)
	}
}

func TestManager_TimeoutPublishedInOrder(t *testing.T) {
	t.Parallel()

	sink := newRecordingSink()
	held := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	slow := EventSinkFunc(func(ctx context.Context, u Update) {
		if u.Status.State == StateErrored {
			once.Do(func() {
				close(held)
				<-release
			})
		}
		sink.Publish(ctx, u)
	})

	m, _ := newTestManager(t, slow)
	clock := newFakeClock()
	m.now = clock.Now

	s, err := m.Create(context.Background(), "campus")
	if err != nil {
		t.Fatal(err)
	}

	if n := m.CheckTimeouts(clock.Advance(DefaultGracePeriod + time.Second)); n != 1 {
		t.Fatalf("CheckTimeouts() = %d, want 1", n)
	}
	select {
	case <-held:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout update was not published")
	}

	// A fix arriving while the timeout is still being delivered must be
	// published after it.
	s.Offer(location.Success(sampleAt(campusCenter, clock.Now())))
	close(release)

	updates := sink.wait(t, 2)
	if updates[0].Status.State != StateErrored || updates[1].Status.State != StateTracking {
		t.Fatalf("published order = [%s %s], want [ERRORED TRACKING]",
			updates[0].Status.State, updates[1].Status.State)
	}
	if got := s.Status(); got.State != StateTracking || got.Campus != proximity.OnCampus {
		t.Errorf("final status = %s/%s, want TRACKING/ON_CAMPUS", got.State, got.Campus)
	}
}

func TestManager_MaxSessionsConcurrent(t *testing.T) {
	t.Parallel()

	loader := newFakeLoader()
	loader.set("campus", campusSpots())
	cfg := DefaultManagerConfig()
	cfg.MaxSessions = 3
	m := NewManager(loader, nil, cfg)
	t.Cleanup(m.Shutdown)

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, _ = m.Create(context.Background(), "campus")
		}()
	}
	close(start)
	wg.Wait()

	if got := m.Len(); got != cfg.MaxSessions {
		t.Errorf("Len() = %d, want %d", got, cfg.MaxSessions)
	}
}

func TestManager_Refresh(t *testing.T) {
	t.Parallel()

	sink := newRecordingSink()
	m, loader := newTestManager(t, sink)

	s, err := m.Create(context.Background(), "campus")
	if err != nil {
		t.Fatal(err)
	}
	s.Offer(location.Success(sampleAt(campusCenter, epoch)))
	sink.wait(t, 1)
	old := s.Coordinator().Plan()

	loader.set("campus", []hotspot.Hotspot{
		spot("hall", campusCenter),
		spot("library", geo.Destination(campusCenter, 180, 60)),
	})
	n, err := m.Refresh(context.Background(), "campus")
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Refresh() updated %d sessions, want 1", n)
	}
	if len(loader.invalidated) != 1 || loader.invalidated[0] != "campus" {
		t.Errorf("invalidated = %v", loader.invalidated)
	}
	if s.Coordinator().Plan() == old {
		t.Error("session still on the old plan")
	}
	if got := s.Status().HotspotCount; got != 2 {
		t.Errorf("HotspotCount = %d, want 2", got)
	}

	updates := sink.wait(t, 2)
	if len(updates[1].Events) != 0 {
		t.Errorf("refresh re-activated hall: %+v", updates[1].Events)
	}
}

func TestManager_ServeShutsDown(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager(t, nil)
	s, err := m.Create(context.Background(), "campus")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Serve(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return")
	}
	select {
	case <-s.Done():
	default:
		t.Error("session still running after Serve returned")
	}
}

func TestSession_Nearby(t *testing.T) {
	t.Parallel()

	sink := newRecordingSink()
	m, _ := newTestManager(t, sink)
	s, err := m.Create(context.Background(), "campus")
	if err != nil {
		t.Fatal(err)
	}
	if got := s.Nearby(500, 0); got != nil {
		t.Errorf("Nearby() without a position = %v", got)
	}

	s.Offer(location.Success(sampleAt(campusCenter, epoch)))
	sink.wait(t, 1)

	got := s.Nearby(150, 0)
	if len(got) != 2 || got[0].ID != "hall" || got[1].ID != "gate" {
		t.Errorf("Nearby(150) = %+v, want hall, gate", got)
	}
	if got := s.Nearby(500, 1); len(got) != 1 {
		t.Errorf("Nearby limit ignored: %+v", got)
	}
}
