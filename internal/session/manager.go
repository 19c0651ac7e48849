// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/waypoint/internal/cache"
	"github.com/tomtom215/waypoint/internal/hotspot"
	"github.com/tomtom215/waypoint/internal/location"
	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/metrics"
	"github.com/tomtom215/waypoint/internal/proximity"
)

var (
	// ErrSessionNotFound is returned for unknown session ids.
	ErrSessionNotFound = errors.New("session not found")
	// ErrTooManySessions is returned when MaxSessions is reached.
	ErrTooManySessions = errors.New("too many active sessions")
	// ErrManagerClosed is returned after Shutdown.
	ErrManagerClosed = errors.New("session manager is shut down")
)

// SnapshotLoader supplies hotspot snapshots. hotspot.Cache implements it.
type SnapshotLoader interface {
	Load(ctx context.Context, projectID string) (*hotspot.Snapshot, error)
	Invalidate(projectID string) error
}

// ManagerConfig holds Manager settings.
type ManagerConfig struct {
	Session Config
	// MaxSessions limits concurrent sessions. Zero means unlimited.
	MaxSessions   int
	PlanCacheSize int
	PlanCacheTTL  time.Duration
}

// DefaultManagerConfig returns the defaults.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		Session:       DefaultConfig(),
		MaxSessions:   1000,
		PlanCacheSize: 64,
		PlanCacheTTL:  time.Hour,
	}
}

// Manager creates and tracks sessions. Sessions touring the same snapshot
// share one immutable proximity.Plan.
type Manager struct {
	cfg       ManagerConfig
	loader    SnapshotLoader
	sink      EventSink
	attachers []location.Attacher
	plans     *cache.LRU[*proximity.Plan]
	now       func() time.Time

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu       sync.RWMutex
	sessions map[string]*Session
	closed   bool
}

// NewManager creates a manager. sink may be nil.
func NewManager(loader SnapshotLoader, sink EventSink, cfg ManagerConfig, attachers ...location.Attacher) *Manager {
	if sink == nil {
		sink = noopSink{}
	}
	if cfg.PlanCacheSize <= 0 {
		cfg.PlanCacheSize = 64
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		cfg:       cfg,
		loader:    loader,
		sink:      sink,
		attachers: attachers,
		plans:     cache.NewLRU[*proximity.Plan](cfg.PlanCacheSize, cfg.PlanCacheTTL),
		now:       time.Now,
		baseCtx:   ctx,
		cancel:    cancel,
		sessions:  make(map[string]*Session),
	}
}

func planKey(s *hotspot.Snapshot) string {
	return s.ProjectID + "@" + strconv.FormatInt(s.FetchedAt.UnixNano(), 10)
}

// Plan loads the project's snapshot and returns its derived plan.
func (m *Manager) Plan(ctx context.Context, projectID string) (*proximity.Plan, error) {
	snap, err := m.loader.Load(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load hotspots for %s: %w", projectID, err)
	}
	return m.plans.GetOrAdd(planKey(snap), func() *proximity.Plan {
		return proximity.NewPlan(snap, m.cfg.Session.Engine)
	}), nil
}

// Create starts a session touring projectID and attaches every configured
// location provider to it.
func (m *Manager) Create(ctx context.Context, projectID string) (*Session, error) {
	m.mu.RLock()
	closed, count := m.closed, len(m.sessions)
	m.mu.RUnlock()
	if closed {
		return nil, ErrManagerClosed
	}
	if m.cfg.MaxSessions > 0 && count >= m.cfg.MaxSessions {
		return nil, ErrTooManySessions
	}

	plan, err := m.Plan(ctx, projectID)
	if err != nil {
		return nil, err
	}

	id := uuid.New().String()
	coord := newCoordinator(id, projectID, plan, m.cfg.Session, m.now)
	s := newSession(id, projectID, coord, m.sink, m.now())

	for _, a := range m.attachers {
		detach, err := a.Attach(id, s)
		if err != nil {
			s.close()
			return nil, fmt.Errorf("attach location provider: %w", err)
		}
		s.addDetach(detach)
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		s.close()
		return nil, ErrManagerClosed
	}
	if m.cfg.MaxSessions > 0 && len(m.sessions) >= m.cfg.MaxSessions {
		m.mu.Unlock()
		s.close()
		return nil, ErrTooManySessions
	}
	m.sessions[id] = s
	s.start(m.baseCtx, &m.wg)
	m.mu.Unlock()

	metrics.ActiveSessions.Inc()
	logging.Info().
		Str("session_id", id).
		Str("project_id", projectID).
		Int("hotspots", plan.Snapshot.Len()).
		Msg("Session created")

	return s, nil
}

// Get returns a session by id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Offer queues a fix for a session.
func (m *Manager) Offer(id string, f location.Fix) error {
	s, err := m.Get(id)
	if err != nil {
		return err
	}
	s.Offer(f)
	return nil
}

// Close tears a session down: providers are detached, its loop stops and
// its engine state is discarded.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	s.close()
	metrics.ActiveSessions.Dec()
	logging.Info().Str("session_id", id).Str("project_id", s.ProjectID).Msg("Session closed")
	return nil
}

func (m *Manager) snapshot() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// List returns the status of every session, oldest first.
func (m *Manager) List() []Status {
	sessions := m.snapshot()
	out := make([]Status, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, s.Status())
	}
	return out
}

// Len returns the number of sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// CheckTimeouts fails closed every session whose grace period expired and
// returns how many changed.
func (m *Manager) CheckTimeouts(now time.Time) int {
	n := 0
	for _, s := range m.snapshot() {
		if s.do(m.baseCtx, func(c *Coordinator) (Update, bool) { return c.CheckTimeout(now) }) {
			n++
		}
	}
	return n
}

// Refresh drops the cached snapshot for projectID, reloads it and swaps the
// new plan into every session touring the project. It returns the number
// of sessions updated.
func (m *Manager) Refresh(ctx context.Context, projectID string) (int, error) {
	if err := m.loader.Invalidate(projectID); err != nil {
		return 0, fmt.Errorf("invalidate %s: %w", projectID, err)
	}
	prefix := projectID + "@"
	m.plans.RemoveFunc(func(key string) bool { return strings.HasPrefix(key, prefix) })

	plan, err := m.Plan(ctx, projectID)
	if err != nil {
		return 0, err
	}

	n := 0
	for _, s := range m.snapshot() {
		if s.ProjectID != projectID {
			continue
		}
		if s.do(ctx, func(c *Coordinator) (Update, bool) { return c.SetPlan(plan), true }) {
			n++
		}
	}

	logging.Info().
		Str("project_id", projectID).
		Int("hotspots", plan.Snapshot.Len()).
		Int("sessions", n).
		Msg("Hotspot snapshot refreshed")
	return n, nil
}

// Serve blocks until ctx is cancelled, then shuts every session down. It
// lets the supervisor own the manager's lifetime.
func (m *Manager) Serve(ctx context.Context) error {
	<-ctx.Done()
	m.Shutdown()
	return nil
}

func (m *Manager) String() string { return "session-manager" }

// Shutdown closes every session and rejects new ones.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.close()
		metrics.ActiveSessions.Dec()
	}
	m.cancel()
	m.wg.Wait()

	logging.Info().Int("sessions", len(sessions)).Msg("Session manager stopped")
}
