// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package session

import (
	"sync"
	"time"

	"github.com/tomtom215/waypoint/internal/geo"
	"github.com/tomtom215/waypoint/internal/location"
	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/metrics"
	"github.com/tomtom215/waypoint/internal/proximity"
)

// State is the coordinator lifecycle state.
type State string

const (
	StateUninitialized State = "UNINITIALIZED"
	StateTracking      State = "TRACKING"
	StateErrored       State = "ERRORED"
)

// DefaultGracePeriod is how long a session may go without a fix before it
// fails closed.
const DefaultGracePeriod = 30 * time.Second

// TimeoutMessage is reported when the grace period expires.
const TimeoutMessage = "Error: No location fix received."

// Config holds per-session settings.
type Config struct {
	Engine      proximity.Config
	GracePeriod time.Duration
}

// DefaultConfig returns the engine defaults and a 30 second grace period.
func DefaultConfig() Config {
	return Config{Engine: proximity.DefaultConfig(), GracePeriod: DefaultGracePeriod}
}

// Status is a read-only snapshot of a session.
type Status struct {
	SessionID string `json:"session_id"`
	ProjectID string `json:"project_id"`
	State     State  `json:"state"`

	// Campus is the effective status. It is OFF_CAMPUS whenever the session
	// has no trusted position.
	Campus proximity.CampusStatus `json:"campus_status"`
	// LastKnownCampus is the status of the last successful fix.
	LastKnownCampus proximity.CampusStatus `json:"last_known_campus_status,omitempty"`

	Position  *geo.Coordinate `json:"position,omitempty"`
	Accuracy  float64         `json:"accuracy,omitempty"`
	LastFixAt *time.Time      `json:"last_fix_at,omitempty"`
	Error     string          `json:"error,omitempty"`

	ProximitySet []proximity.Proximity `json:"proximity_set"`
	View         []proximity.Marker    `json:"view"`

	HotspotCount      int       `json:"hotspot_count"`
	SnapshotFetchedAt time.Time `json:"snapshot_fetched_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Update is the outcome of one coordinator step.
type Update struct {
	Status Status
	Events []proximity.Event
	// Warning holds a newly reported error message. Repeats of the last
	// reported message leave it empty.
	Warning string
	// Changed is set when the state or the effective campus status moved.
	Changed bool
}

// Coordinator owns the engine state of one tracking session: lifecycle
// state, campus status and the trigger evaluator. Its methods are safe for
// concurrent use, though a session feeds it from a single goroutine.
type Coordinator struct {
	mu sync.RWMutex

	sessionID string
	projectID string
	cfg       Config
	now       func() time.Time

	plan    *proximity.Plan
	trigger *proximity.TriggerEvaluator

	state     State
	lastKnown proximity.CampusStatus
	effective proximity.CampusStatus
	sample    *geo.Sample
	set       []proximity.Proximity
	lastError string

	lastActivity time.Time
	updatedAt    time.Time
	closed       bool
}

// NewCoordinator creates an UNINITIALIZED coordinator over plan. The grace
// period starts now.
func NewCoordinator(sessionID, projectID string, plan *proximity.Plan, cfg Config) *Coordinator {
	return newCoordinator(sessionID, projectID, plan, cfg, time.Now)
}

func newCoordinator(sessionID, projectID string, plan *proximity.Plan, cfg Config, now func() time.Time) *Coordinator {
	started := now()
	return &Coordinator{
		sessionID:    sessionID,
		projectID:    projectID,
		cfg:          cfg,
		now:          now,
		plan:         plan,
		trigger:      proximity.NewTriggerEvaluator(cfg.Engine.Trigger),
		state:        StateUninitialized,
		effective:    proximity.OffCampus,
		set:          []proximity.Proximity{},
		lastActivity: started,
		updatedAt:    started,
	}
}

// HandleFix evaluates a successful sample: campus check, trigger evaluation
// and view selection. It moves the session to TRACKING and clears any
// remembered error.
func (c *Coordinator) HandleFix(s geo.Sample) Update {
	start := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	prevState, prevEffective := c.state, c.effective

	if s.Timestamp.IsZero() {
		s.Timestamp = c.now()
	}
	s, _ = proximity.NormalizeSample(s)

	status, res := c.evaluateLocked(s)

	c.state = StateTracking
	c.lastKnown = status
	c.effective = status
	c.sample = &s
	c.set = res.Set
	c.lastError = ""
	c.lastActivity = c.now()

	metrics.SamplesProcessed.Inc()
	metrics.RecordEvaluation(time.Since(start))

	return c.finishLocked(prevState, prevEffective, res.Events, "")
}

// evaluateLocked runs the campus check and the trigger evaluator. An empty
// snapshot is OFF_CAMPUS with no triggers and leaves trigger state alone.
func (c *Coordinator) evaluateLocked(s geo.Sample) (proximity.CampusStatus, proximity.Result) {
	if c.plan == nil || c.plan.Empty() {
		return proximity.OffCampus, proximity.Result{Set: []proximity.Proximity{}}
	}
	status := proximity.StatusOf(c.plan.Region.Contains(s.Coords))
	return status, c.trigger.Evaluate(s, c.plan.Index)
}

// HandleError records a provider failure. The session fails closed: the
// effective status becomes OFF_CAMPUS and the position is discarded. The
// last-known status and trigger state are kept.
func (c *Coordinator) HandleError(perr *location.ProviderError) Update {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failLocked(perr)
}

// CheckTimeout fails the session closed when no fix has arrived within the
// grace period. It reports whether the session changed.
func (c *Coordinator) CheckTimeout(now time.Time) (Update, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.state == StateErrored || c.cfg.GracePeriod <= 0 {
		return Update{}, false
	}
	if now.Sub(c.lastActivity) < c.cfg.GracePeriod {
		return Update{}, false
	}
	return c.failLocked(location.NewProviderError(location.CodeTimeout, TimeoutMessage)), true
}

func (c *Coordinator) failLocked(perr *location.ProviderError) Update {
	if perr == nil {
		perr = location.NewProviderError(location.CodeUnknown, "")
	}
	prevState, prevEffective := c.state, c.effective

	c.state = StateErrored
	c.effective = proximity.OffCampus
	c.sample = nil
	c.set = []proximity.Proximity{}

	metrics.LocationErrors.WithLabelValues(string(perr.Code)).Inc()

	warning := ""
	if msg := perr.Describe(); msg != c.lastError {
		c.lastError = msg
		warning = msg
		logging.Warn().
			Str("session_id", c.sessionID).
			Str("project_id", c.projectID).
			Str("code", string(perr.Code)).
			Msg(msg)
	}

	return c.finishLocked(prevState, prevEffective, nil, warning)
}

// SetPlan swaps in a new hotspot snapshot. Trigger state for hotspots that
// no longer exist is dropped without exit events. A tracking session is
// re-evaluated at its current position against the new snapshot.
func (c *Coordinator) SetPlan(plan *proximity.Plan) Update {
	c.mu.Lock()
	defer c.mu.Unlock()

	prevState, prevEffective := c.state, c.effective
	c.plan = plan

	pruned := c.trigger.Prune(func(id string) bool {
		if plan == nil {
			return false
		}
		_, ok := plan.Snapshot.Get(id)
		return ok
	})

	var events []proximity.Event
	if c.state == StateTracking && c.sample != nil {
		status, res := c.evaluateLocked(*c.sample)
		c.lastKnown = status
		c.effective = status
		c.set = res.Set
		events = res.Events
	}

	logging.Info().
		Str("session_id", c.sessionID).
		Str("project_id", c.projectID).
		Int("hotspots", planLen(plan)).
		Int("pruned", pruned).
		Msg("Hotspot snapshot replaced")

	return c.finishLocked(prevState, prevEffective, events, "")
}

func (c *Coordinator) finishLocked(prevState State, prevEffective proximity.CampusStatus, events []proximity.Event, warning string) Update {
	changed := prevState != c.state || prevEffective != c.effective

	if prevState != c.state {
		metrics.SessionTransitions.WithLabelValues(string(prevState), string(c.state)).Inc()
	}
	if prevEffective != c.effective && !c.closed {
		if c.effective == proximity.OnCampus {
			metrics.SessionsOnCampus.Inc()
		} else if prevEffective == proximity.OnCampus {
			metrics.SessionsOnCampus.Dec()
		}
	}
	for _, e := range events {
		metrics.HotspotEvents.WithLabelValues(string(e.Kind)).Inc()
		if e.Kind == proximity.EventEnter {
			logging.Info().
				Str("session_id", c.sessionID).
				Str("hotspot_id", e.HotspotID).
				Float64("meters", e.Meters).
				Int("entry", e.Entry).
				Msg("Hotspot activated")
		}
	}
	if changed {
		logging.Info().
			Str("session_id", c.sessionID).
			Str("from_state", string(prevState)).
			Str("to_state", string(c.state)).
			Str("campus_status", string(c.effective)).
			Msg("Session status changed")
	}

	c.updatedAt = c.now()
	return Update{Status: c.statusLocked(), Events: events, Warning: warning, Changed: changed}
}

// Status returns a consistent snapshot.
func (c *Coordinator) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.statusLocked()
}

func (c *Coordinator) statusLocked() Status {
	st := Status{
		SessionID:       c.sessionID,
		ProjectID:       c.projectID,
		State:           c.state,
		Campus:          c.effective,
		LastKnownCampus: c.lastKnown,
		Error:           c.lastError,
		ProximitySet:    append([]proximity.Proximity{}, c.set...),
		View:            []proximity.Marker{},
		UpdatedAt:       c.updatedAt,
	}
	if c.sample != nil {
		pos := c.sample.Coords
		at := c.sample.Timestamp
		st.Position = &pos
		st.Accuracy = c.sample.Accuracy
		st.LastFixAt = &at
	}
	if c.plan != nil {
		st.HotspotCount = c.plan.Snapshot.Len()
		st.SnapshotFetchedAt = c.plan.Snapshot.FetchedAt
		if !c.plan.Empty() {
			st.View = c.plan.Markers(c.plan.View(c.effective))
		}
	}
	return st
}

// Inside returns the ids of hotspots the session is currently inside.
func (c *Coordinator) Inside() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.trigger.Inside()
}

// Plan returns the snapshot plan in use.
func (c *Coordinator) Plan() *proximity.Plan {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.plan
}

// Close discards engine state. It is idempotent.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	if c.effective == proximity.OnCampus {
		metrics.SessionsOnCampus.Dec()
	}
	c.trigger.Reset()
	c.sample = nil
	c.set = []proximity.Proximity{}
}

func planLen(p *proximity.Plan) int {
	if p == nil {
		return 0
	}
	return p.Snapshot.Len()
}
