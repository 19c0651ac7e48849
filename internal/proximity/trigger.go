// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package proximity

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/tomtom215/waypoint/internal/geo"
	"github.com/tomtom215/waypoint/internal/hotspot"
)

// DefaultTriggerRadiusMeters is the activation radius around a hotspot.
const DefaultTriggerRadiusMeters = 20.0

// ReentryPolicy tells the player what to do when a hotspot is entered again.
type ReentryPolicy string

const (
	// ReentryRestart plays contextual media from the beginning.
	ReentryRestart ReentryPolicy = "restart"
	// ReentryResume continues from the accumulated time spent inside.
	ReentryResume ReentryPolicy = "resume"
)

// ParseReentryPolicy validates a configured policy.
func ParseReentryPolicy(s string) (ReentryPolicy, error) {
	switch ReentryPolicy(s) {
	case ReentryRestart, ReentryResume:
		return ReentryPolicy(s), nil
	default:
		return "", fmt.Errorf("unknown reentry policy %q (want restart or resume)", s)
	}
}

// TriggerConfig tunes the trigger evaluator.
type TriggerConfig struct {
	RadiusMeters float64
	// HysteresisMeters widens the exit radius so a fix jittering on the
	// boundary does not flap. 0 exits as soon as the distance exceeds
	// RadiusMeters.
	HysteresisMeters float64
	Reentry          ReentryPolicy
}

// DefaultTriggerConfig returns a 20 m radius, no hysteresis and restart.
func DefaultTriggerConfig() TriggerConfig {
	return TriggerConfig{RadiusMeters: DefaultTriggerRadiusMeters, Reentry: ReentryRestart}
}

// EventKind distinguishes activations from exits.
type EventKind string

const (
	EventEnter EventKind = "enter"
	EventExit  EventKind = "exit"
)

// Event is a trigger transition for one hotspot.
type Event struct {
	Kind      EventKind `json:"kind"`
	HotspotID string    `json:"hotspot_id"`
	Name      string    `json:"name"`
	Meters    float64   `json:"meters"`
	At        time.Time `json:"at"`

	// Entry counts entries into this hotspot during the session, from 1.
	Entry  int           `json:"entry"`
	Policy ReentryPolicy `json:"policy,omitempty"`

	// ResumeAt is the time previously spent inside, set on entries when the
	// policy is resume.
	ResumeAt time.Duration `json:"resume_at,omitempty"`

	// Dwell is the length of the visit that just ended, set on exits.
	Dwell time.Duration `json:"dwell,omitempty"`

	StartAudio string `json:"start_audio,omitempty"`
	Overlay    string `json:"overlay,omitempty"`
}

// Result is the outcome of one evaluation.
type Result struct {
	// Set is the ProximitySet: hotspots currently inside their trigger
	// radius, nearest first with ties broken by id.
	Set    []Proximity
	Events []Event
	Issues []geo.QualityIssue
}

// Activations returns only the enter events.
func (r Result) Activations() []Event {
	var out []Event
	for _, e := range r.Events {
		if e.Kind == EventEnter {
			out = append(out, e)
		}
	}
	return out
}

type insideState struct {
	name      string
	enteredAt time.Time
}

// TriggerEvaluator tracks which hotspots a session is inside and emits one
// enter event per entry. It is not safe for concurrent use; one
// coordinator owns it.
type TriggerEvaluator struct {
	cfg    TriggerConfig
	inside map[string]insideState
	// entries and dwell persist across exits for the re-entry policy.
	entries map[string]int
	dwell   map[string]time.Duration
}

// NewTriggerEvaluator creates an evaluator with no hotspots inside.
func NewTriggerEvaluator(cfg TriggerConfig) *TriggerEvaluator {
	if cfg.RadiusMeters <= 0 || math.IsNaN(cfg.RadiusMeters) {
		cfg.RadiusMeters = DefaultTriggerRadiusMeters
	}
	if cfg.HysteresisMeters < 0 || math.IsNaN(cfg.HysteresisMeters) {
		cfg.HysteresisMeters = 0
	}
	if cfg.Reentry == "" {
		cfg.Reentry = ReentryRestart
	}
	return &TriggerEvaluator{
		cfg:     cfg,
		inside:  make(map[string]insideState),
		entries: make(map[string]int),
		dwell:   make(map[string]time.Duration),
	}
}

// Config returns the effective settings.
func (t *TriggerEvaluator) Config() TriggerConfig { return t.cfg }

func (t *TriggerEvaluator) exitRadius() float64 {
	return t.cfg.RadiusMeters + t.cfg.HysteresisMeters
}

// OnPositionUpdate evaluates sample against every hotspot. An empty hotspot
// list is a no-op that leaves the inside set untouched.
func (t *TriggerEvaluator) OnPositionUpdate(sample geo.Sample, hotspots []hotspot.Hotspot) Result {
	sample, issues := NormalizeSample(sample)
	if len(hotspots) == 0 {
		return Result{Set: []Proximity{}, Issues: issues}
	}

	coords := hotspotCoords(hotspots)
	limit := t.exitRadius()
	var candidates []Proximity
	for i := range hotspots {
		if d := geo.Distance(sample.Coords, coords[i]); d <= limit {
			h := &hotspots[i]
			candidates = append(candidates, Proximity{ID: h.ID, Name: h.Name, Meters: d, Hotspot: h})
		}
	}

	res := t.apply(sample.Timestamp, candidates)
	res.Issues = issues
	return res
}

// Evaluate is OnPositionUpdate against a prebuilt index.
func (t *TriggerEvaluator) Evaluate(sample geo.Sample, ix *Index) Result {
	sample, issues := NormalizeSample(sample)
	if ix == nil || ix.Len() == 0 {
		return Result{Set: []Proximity{}, Issues: issues}
	}

	res := t.apply(sample.Timestamp, ix.Within(sample.Coords, t.exitRadius()))
	res.Issues = issues
	return res
}

// apply updates the inside set from candidates, which must hold every
// hotspot within the exit radius.
func (t *TriggerEvaluator) apply(at time.Time, candidates []Proximity) Result {
	set := make([]Proximity, 0, len(candidates))
	var entered []Proximity
	present := make(map[string]bool, len(candidates))

	for _, p := range candidates {
		_, wasInside := t.inside[p.ID]
		switch {
		case wasInside:
			// Still within the exit radius.
			present[p.ID] = true
			set = append(set, p)
		case p.Meters <= t.cfg.RadiusMeters:
			present[p.ID] = true
			set = append(set, p)
			entered = append(entered, p)
		}
	}

	var exited []string
	for id := range t.inside {
		if !present[id] {
			exited = append(exited, id)
		}
	}
	sort.Strings(exited)

	sortProximities(set)
	sortProximities(entered)

	events := make([]Event, 0, len(exited)+len(entered))
	for _, id := range exited {
		events = append(events, t.exit(id, at))
	}
	for _, p := range entered {
		events = append(events, t.enter(p, at))
	}
	return Result{Set: set, Events: events}
}

func (t *TriggerEvaluator) enter(p Proximity, at time.Time) Event {
	t.entries[p.ID]++
	t.inside[p.ID] = insideState{name: p.Name, enteredAt: at}

	ev := Event{
		Kind:      EventEnter,
		HotspotID: p.ID,
		Name:      p.Name,
		Meters:    p.Meters,
		At:        at,
		Entry:     t.entries[p.ID],
		Policy:    t.cfg.Reentry,
	}
	if t.cfg.Reentry == ReentryResume {
		ev.ResumeAt = t.dwell[p.ID]
	}
	if p.Hotspot != nil {
		ev.StartAudio = p.Hotspot.StartAudio
		ev.Overlay = p.Hotspot.Overlay
	}
	return ev
}

func (t *TriggerEvaluator) exit(id string, at time.Time) Event {
	st := t.inside[id]
	delete(t.inside, id)

	var dwell time.Duration
	if !st.enteredAt.IsZero() && at.After(st.enteredAt) {
		dwell = at.Sub(st.enteredAt)
	}
	t.dwell[id] += dwell

	return Event{Kind: EventExit, HotspotID: id, Name: st.name, At: at, Entry: t.entries[id], Dwell: dwell}
}

// Inside returns the ids currently inside, sorted.
func (t *TriggerEvaluator) Inside() []string {
	out := make([]string, 0, len(t.inside))
	for id := range t.inside {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Prune forgets every hotspot for which keep returns false, without
// emitting exit events. Used when the hotspot snapshot changes.
func (t *TriggerEvaluator) Prune(keep func(id string) bool) int {
	removed := 0
	for id := range t.inside {
		if !keep(id) {
			delete(t.inside, id)
			removed++
		}
	}
	for id := range t.entries {
		if !keep(id) {
			delete(t.entries, id)
			delete(t.dwell, id)
		}
	}
	return removed
}

// Reset forgets all trigger state.
func (t *TriggerEvaluator) Reset() {
	t.inside = make(map[string]insideState)
	t.entries = make(map[string]int)
	t.dwell = make(map[string]time.Duration)
}
