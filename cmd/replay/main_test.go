// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package main

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/waypoint/internal/proximity"
	"github.com/tomtom215/waypoint/internal/session"
)

const projectDoc = `{
	"project_id": "campus",
	"hotspots": [
		{"hotspot_id": "hall", "name": "Hall", "latitude": 41.15, "longitude": -81.345},
		"{\"hotspot_id\": \"gate\", \"name\": \"Gate\", \"latitude\": 41.15, \"longitude\": -81.3438}"
	]
}`

// The walk starts at the hall, leaves campus, then loses the provider.
const walk = `# hall
{"latitude": 41.15, "longitude": -81.345, "accuracy": 5}
{"latitude": 41.25, "longitude": -81.345, "accuracy": 5}

{"error": {"code": "position_unavailable"}}
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func readSteps(t *testing.T, out *bytes.Buffer) []step {
	t.Helper()
	var steps []step
	sc := bufio.NewScanner(out)
	for sc.Scan() {
		var s step
		if err := json.Unmarshal(sc.Bytes(), &s); err != nil {
			t.Fatalf("decode %q: %v", sc.Text(), err)
		}
		steps = append(steps, s)
	}
	return steps
}

func TestRun(t *testing.T) {
	t.Parallel()

	doc := writeFile(t, "campus.json", projectDoc)
	var out bytes.Buffer
	if err := run(context.Background(), []string{"-hotspots", doc}, strings.NewReader(walk), &out); err != nil {
		t.Fatalf("run: %v", err)
	}

	steps := readSteps(t, &out)
	if len(steps) != 3 {
		t.Fatalf("got %d steps, want 3: %+v", len(steps), steps)
	}

	first := steps[0]
	if first.State != session.StateTracking || first.Campus != proximity.OnCampus || !first.Changed {
		t.Errorf("first step = %+v", first)
	}
	if len(first.Events) != 1 || first.Events[0].Kind != proximity.EventEnter || first.Events[0].HotspotID != "hall" {
		t.Errorf("first events = %+v", first.Events)
	}
	if len(first.Inside) != 1 || first.Inside[0] != "hall" {
		t.Errorf("inside = %v", first.Inside)
	}

	if steps[1].Campus != proximity.OffCampus {
		t.Errorf("second step campus = %s", steps[1].Campus)
	}

	last := steps[2]
	if last.State != session.StateErrored || last.Campus != proximity.OffCampus || last.Warning == "" {
		t.Errorf("last step = %+v", last)
	}
}

func TestRun_AllSteps(t *testing.T) {
	t.Parallel()

	doc := writeFile(t, "campus.json", projectDoc)
	track := writeFile(t, "walk.jsonl", walk+walk)
	var out bytes.Buffer
	if err := run(context.Background(), []string{"-hotspots", doc, "-track", track, "-all"}, nil, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if steps := readSteps(t, &out); len(steps) != 6 {
		t.Errorf("got %d steps, want 6", len(steps))
	}
}

func TestRun_Errors(t *testing.T) {
	t.Parallel()

	doc := writeFile(t, "campus.json", projectDoc)
	bad := writeFile(t, "bad.json", `{"hotspots": ["{broken"]}`)

	tests := []struct {
		name  string
		args  []string
		track string
	}{
		{name: "missing hotspots flag", args: nil},
		{name: "unknown boundary", args: []string{"-hotspots", doc, "-boundary", "circle"}},
		{name: "negative radius", args: []string{"-hotspots", doc, "-radius", "-1"}},
		{name: "unreadable document", args: []string{"-hotspots", bad}},
		{name: "missing document", args: []string{"-hotspots", filepath.Join(t.TempDir(), "nope.json")}},
		{name: "malformed track", args: []string{"-hotspots", doc}, track: "{not json}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var out bytes.Buffer
			if err := run(context.Background(), tt.args, strings.NewReader(tt.track), &out); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadSnapshot_BareArray(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "spots.json", `[{"hotspot_id": "hall", "latitude": 41.15, "longitude": -81.345}]`)
	snap, err := loadSnapshot(path, "")
	if err != nil {
		t.Fatalf("loadSnapshot: %v", err)
	}
	if snap.ProjectID != "replay" || snap.Len() != 1 {
		t.Errorf("snapshot = %s with %d hotspots", snap.ProjectID, snap.Len())
	}

	snap, err = loadSnapshot(path, "north-campus")
	if err != nil || snap.ProjectID != "north-campus" {
		t.Errorf("project override = %v, %v", snap, err)
	}
}
