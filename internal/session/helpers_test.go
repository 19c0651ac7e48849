// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/waypoint/internal/geo"
	"github.com/tomtom215/waypoint/internal/hotspot"
	"github.com/tomtom215/waypoint/internal/proximity"
)

var (
	campusCenter = geo.NewCoordinate(41.1500, -81.3450)
	offCampus    = geo.NewCoordinate(42.0, -81.3450)
	epoch        = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock { return &fakeClock{t: epoch} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
	return c.t
}

func spot(id string, c geo.Coordinate) hotspot.Hotspot {
	return hotspot.Hotspot{
		ID:        id,
		Name:      "Hotspot " + id,
		Latitude:  hotspot.Degrees(c.Latitude),
		Longitude: hotspot.Degrees(c.Longitude),
	}
}

// campusSpots is a hall at the campus centre, a gate 100 m east and a sub
// hotspot 200 m north.
func campusSpots() []hotspot.Hotspot {
	sub := spot("annex", geo.Destination(campusCenter, 0, 200))
	sub.IsSubHotspot = true
	return []hotspot.Hotspot{
		spot("hall", campusCenter),
		spot("gate", geo.Destination(campusCenter, 90, 100)),
		sub,
	}
}

func mustSnapshot(t *testing.T, project string, hs []hotspot.Hotspot, fetchedAt time.Time) *hotspot.Snapshot {
	t.Helper()
	s, err := hotspot.NewSnapshot(project, hs, fetchedAt)
	if err != nil {
		t.Fatalf("NewSnapshot() error = %v", err)
	}
	return s
}

func mustPlan(t *testing.T, hs []hotspot.Hotspot) *proximity.Plan {
	t.Helper()
	return proximity.NewPlan(mustSnapshot(t, "campus", hs, epoch), proximity.DefaultConfig())
}

func sampleAt(c geo.Coordinate, at time.Time) geo.Sample {
	return geo.Sample{Coords: c, Timestamp: at, Accuracy: 5}
}

func eventIDs(events []proximity.Event, kind proximity.EventKind) []string {
	var out []string
	for _, e := range events {
		if e.Kind == kind {
			out = append(out, e.HotspotID)
		}
	}
	return out
}

// fakeLoader serves snapshots from memory and counts calls.
type fakeLoader struct {
	mu          sync.Mutex
	projects    map[string][]hotspot.Hotspot
	fetchedAt   time.Time
	loads       int
	invalidated []string
}

func newFakeLoader() *fakeLoader {
	return &fakeLoader{projects: make(map[string][]hotspot.Hotspot), fetchedAt: epoch}
}

func (l *fakeLoader) set(project string, hs []hotspot.Hotspot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.projects[project] = hs
	l.fetchedAt = l.fetchedAt.Add(time.Minute)
}

func (l *fakeLoader) Load(_ context.Context, project string) (*hotspot.Snapshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loads++
	hs, ok := l.projects[project]
	if !ok {
		return nil, hotspot.ErrNotFound
	}
	return hotspot.NewSnapshot(project, hs, l.fetchedAt)
}

func (l *fakeLoader) Invalidate(project string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.invalidated = append(l.invalidated, project)
	return nil
}

// recordingSink collects published updates.
type recordingSink struct {
	mu      sync.Mutex
	updates []Update
	notify  chan struct{}
}

func newRecordingSink() *recordingSink {
	return &recordingSink{notify: make(chan struct{}, 64)}
}

func (r *recordingSink) Publish(_ context.Context, u Update) {
	r.mu.Lock()
	r.updates = append(r.updates, u)
	r.mu.Unlock()
	select {
	case r.notify <- struct{}{}:
	default:
	}
}

func (r *recordingSink) wait(t *testing.T, n int) []Update {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		r.mu.Lock()
		if len(r.updates) >= n {
			out := append([]Update(nil), r.updates...)
			r.mu.Unlock()
			return out
		}
		r.mu.Unlock()
		select {
		case <-r.notify:
		case <-deadline:
			t.Fatalf("timed out waiting for %d updates", n)
		}
	}
}
