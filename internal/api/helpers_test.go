// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/waypoint/internal/config"
	"github.com/tomtom215/waypoint/internal/geo"
	"github.com/tomtom215/waypoint/internal/hotspot"
	"github.com/tomtom215/waypoint/internal/session"
	"github.com/tomtom215/waypoint/internal/validation"
	ws "github.com/tomtom215/waypoint/internal/websocket"
)

const allowedOrigin = "https://tour.example.edu"

var (
	campusCenter = geo.NewCoordinate(41.1500, -81.3450)
	testEpoch    = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
)

func spot(id string, c geo.Coordinate) hotspot.Hotspot {
	return hotspot.Hotspot{
		ID:        id,
		Name:      "Hotspot " + id,
		Latitude:  hotspot.Degrees(c.Latitude),
		Longitude: hotspot.Degrees(c.Longitude),
	}
}

// campusSpots is a hall at the centre linking to an annex sub hotspot 200 m
// north and a missing page, a gate 100 m east, and a kiosk 5 m from the
// hall.
func campusSpots() []hotspot.Hotspot {
	hall := spot("hall", campusCenter)
	hall.MainPages = []string{"annex", "ghost"}
	annex := spot("annex", geo.Destination(campusCenter, 0, 200))
	annex.IsSubHotspot = true
	return []hotspot.Hotspot{
		hall,
		spot("gate", geo.Destination(campusCenter, 90, 100)),
		annex,
		spot("kiosk", geo.Destination(campusCenter, 180, 5)),
	}
}

// fakeLoader serves in-memory projects. Invalidate bumps the fetch time so
// the next load yields a new plan.
type fakeLoader struct {
	mu        sync.Mutex
	projects  map[string][]hotspot.Hotspot
	fetchedAt time.Time
	err       error
}

func newFakeLoader() *fakeLoader {
	return &fakeLoader{projects: map[string][]hotspot.Hotspot{"campus": campusSpots()}, fetchedAt: testEpoch}
}

func (l *fakeLoader) set(project string, hs []hotspot.Hotspot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.projects[project] = hs
}

func (l *fakeLoader) fail(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.err = err
}

func (l *fakeLoader) Load(_ context.Context, project string) (*hotspot.Snapshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !validation.IsSlug(project) {
		return nil, fmt.Errorf("%w: %q", hotspot.ErrInvalidProjectID, project)
	}
	if l.err != nil {
		return nil, l.err
	}
	hs, ok := l.projects[project]
	if !ok {
		return nil, fmt.Errorf("project %q: %w", project, hotspot.ErrNotFound)
	}
	return hotspot.NewSnapshot(project, hs, l.fetchedAt)
}

func (l *fakeLoader) Invalidate(string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fetchedAt = l.fetchedAt.Add(time.Minute)
	return nil
}

type testEnv struct {
	handler http.Handler
	api     *Handler
	manager *session.Manager
	loader  *fakeLoader
	hub     *ws.Hub
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{CORSOrigins: []string{allowedOrigin}},
		Engine: config.EngineConfig{ClusterThresholdMeters: 10},
	}
}

func newTestEnv(t *testing.T, cfg *config.Config) *testEnv {
	t.Helper()
	if cfg == nil {
		cfg = testConfig()
	}

	loader := newFakeLoader()
	manager := session.NewManager(loader, nil, session.DefaultManagerConfig())
	t.Cleanup(manager.Shutdown)

	hub := ws.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = hub.RunWithContext(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	h := NewHandler(manager, hub, cfg)
	return &testEnv{
		handler: NewRouter(h, nil).SetupChi(),
		api:     h,
		manager: manager,
		loader:  loader,
		hub:     hub,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	switch b := body.(type) {
	case nil:
		rd = bytes.NewReader(nil)
	case string:
		rd = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

// envelope mirrors models.APIResponse with a raw data payload.
type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  *struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Details map[string]interface{} `json:"details"`
	} `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, wantStatus int, dst interface{}) envelope {
	t.Helper()
	if rec.Code != wantStatus {
		t.Fatalf("status = %d, want %d; body = %s", rec.Code, wantStatus, rec.Body.String())
	}
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v; body = %s", err, rec.Body.String())
	}
	if dst != nil {
		if err := json.Unmarshal(env.Data, dst); err != nil {
			t.Fatalf("decode data: %v; data = %s", err, env.Data)
		}
	}
	return env
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder, wantStatus int) string {
	t.Helper()
	env := decode(t, rec, wantStatus, nil)
	if env.Status != "error" || env.Error == nil {
		t.Fatalf("expected error envelope, got %s", rec.Body.String())
	}
	return env.Error.Code
}

// waitForStatus polls the session until cond holds.
func (e *testEnv) waitForStatus(t *testing.T, id string, cond func(session.Status) bool) session.Status {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		var st session.Status
		decode(t, e.do(t, http.MethodGet, "/api/v1/sessions/"+id, nil), http.StatusOK, &st)
		if cond(st) {
			return st
		}
		if time.Now().After(deadline) {
			t.Fatalf("session %s never reached expected status; last = %+v", id, st)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func (e *testEnv) createSession(t *testing.T, project string) session.Status {
	t.Helper()
	var st session.Status
	decode(t, e.do(t, http.MethodPost, "/api/v1/sessions", map[string]string{"project_id": project}), http.StatusCreated, &st)
	return st
}

func fixBody(c geo.Coordinate) map[string]interface{} {
	return map[string]interface{}{"latitude": c.Latitude, "longitude": c.Longitude, "accuracy": 5}
}
