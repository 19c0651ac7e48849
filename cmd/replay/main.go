// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

// Command replay runs a recorded location track through the proximity engine
// offline and prints one JSON line per interesting step: state or campus
// changes, hotspot entries and exits, and provider warnings.
//
//	replay -hotspots campus.json -track walk.jsonl
//	replay -hotspots campus.json -track - -speed 4 -all < walk.jsonl
//
// The hotspot file is either a project document or a bare array of hotspot
// records. The track is JSON lines in the same shape devices publish over
// NATS; lines starting with '#' are comments.
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/waypoint/internal/hotspot"
	"github.com/tomtom215/waypoint/internal/location"
	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/proximity"
	"github.com/tomtom215/waypoint/internal/session"
)

func main() {
	logCfg := logging.DefaultConfig()
	logCfg.Format = "console"
	logging.Init(logCfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		logging.Fatal().Err(err).Msg("Replay failed")
	}
}

type options struct {
	hotspots  string
	track     string
	projectID string
	speed     float64
	maxGap    time.Duration
	all       bool
	engine    proximity.Config
}

func parseFlags(args []string) (options, error) {
	opts := options{engine: proximity.DefaultConfig()}
	var mode, reentry string

	fs := flag.NewFlagSet("replay", flag.ContinueOnError)
	fs.StringVar(&opts.hotspots, "hotspots", "", "project document or hotspot array (required)")
	fs.StringVar(&opts.track, "track", "-", "JSON-lines track, - for stdin")
	fs.StringVar(&opts.projectID, "project", "", "project id (default: from the document, else \"replay\")")
	fs.Float64Var(&opts.speed, "speed", 0, "pace fixes at this multiple of recorded time; 0 replays instantly")
	fs.DurationVar(&opts.maxGap, "max-gap", 5*time.Second, "longest single wait when pacing")
	fs.BoolVar(&opts.all, "all", false, "print every step, not only changes")
	fs.StringVar(&mode, "boundary", string(opts.engine.Campus.Mode), "campus boundary mode: hull or radius")
	fs.Float64Var(&opts.engine.Campus.ToleranceMeters, "tolerance", opts.engine.Campus.ToleranceMeters, "campus tolerance in meters")
	fs.Float64Var(&opts.engine.Trigger.RadiusMeters, "radius", opts.engine.Trigger.RadiusMeters, "trigger radius in meters")
	fs.Float64Var(&opts.engine.Trigger.HysteresisMeters, "hysteresis", opts.engine.Trigger.HysteresisMeters, "extra exit distance in meters")
	fs.StringVar(&reentry, "reentry", string(opts.engine.Trigger.Reentry), "re-entry policy: restart or resume")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.hotspots == "" {
		return opts, errors.New("-hotspots is required")
	}

	m, err := proximity.ParseBoundaryMode(mode)
	if err != nil {
		return opts, err
	}
	r, err := proximity.ParseReentryPolicy(reentry)
	if err != nil {
		return opts, err
	}
	opts.engine.Campus.Mode = m
	opts.engine.Trigger.Reentry = r
	return opts, opts.engine.Validate()
}

// loadSnapshot reads a project document or a bare hotspot array.
func loadSnapshot(path, projectID string) (*hotspot.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read hotspots: %w", err)
	}

	var hotspots []hotspot.Hotspot
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		hotspots, err = hotspot.DecodeHotspots(trimmed)
	} else {
		var p *hotspot.Project
		if p, err = hotspot.DecodeProject(data); err == nil {
			hotspots = p.Hotspots
			if projectID == "" {
				projectID = p.ID
			}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if projectID == "" {
		projectID = "replay"
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	return hotspot.NewSnapshot(projectID, hotspots, info.ModTime())
}

// step is one printed line.
type step struct {
	Index   int                    `json:"index"`
	State   session.State          `json:"state"`
	Campus  proximity.CampusStatus `json:"campus_status"`
	Changed bool                   `json:"changed,omitempty"`
	Warning string                 `json:"warning,omitempty"`
	Events  []proximity.Event      `json:"events,omitempty"`
	Inside  []string               `json:"inside"`
	Visible int                    `json:"visible"`
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	snap, err := loadSnapshot(opts.hotspots, opts.projectID)
	if err != nil {
		return err
	}

	in := stdin
	if opts.track != "-" {
		f, err := os.Open(opts.track)
		if err != nil {
			return fmt.Errorf("open track: %w", err)
		}
		defer func() { _ = f.Close() }()
		in = f
	}
	fixes, err := location.ReadTrack(in, time.Now())
	if err != nil {
		return err
	}

	plan := proximity.NewPlan(snap, opts.engine)
	// The grace period is a wall-clock rule; offline replay disables it.
	coord := session.NewCoordinator("replay", snap.ProjectID, plan, session.Config{Engine: opts.engine})
	defer coord.Close()

	logging.Info().
		Str("project_id", snap.ProjectID).
		Int("hotspots", snap.Len()).
		Int("fixes", len(fixes)).
		Str("boundary", string(opts.engine.Campus.Mode)).
		Float64("radius_m", opts.engine.Trigger.RadiusMeters).
		Msg("Replaying track")

	enc := json.NewEncoder(stdout)
	var index, activations int
	var writeErr error

	offer := location.OfferFunc(func(f location.Fix) bool {
		var u session.Update
		if f.Failed() {
			u = coord.HandleError(f.Err)
		} else {
			u = coord.HandleFix(f.Sample)
		}
		index++
		for _, e := range u.Events {
			if e.Kind == proximity.EventEnter {
				activations++
			}
		}
		if writeErr != nil || !(opts.all || u.Changed || u.Warning != "" || len(u.Events) > 0) {
			return false
		}
		inside := coord.Inside()
		if inside == nil {
			inside = []string{}
		}
		writeErr = enc.Encode(step{
			Index:   index,
			State:   u.Status.State,
			Campus:  u.Status.Campus,
			Changed: u.Changed,
			Warning: u.Warning,
			Events:  u.Events,
			Inside:  inside,
			Visible: len(u.Status.View),
		})
		return false
	})

	if err := location.Replay(ctx, fixes, offer, location.ReplayOptions{Speed: opts.speed, MaxGap: opts.maxGap}); err != nil {
		return err
	}
	if writeErr != nil {
		return fmt.Errorf("write output: %w", writeErr)
	}

	final := coord.Status()
	logging.Info().
		Int("fixes", index).
		Int("activations", activations).
		Str("state", string(final.State)).
		Str("campus_status", string(final.Campus)).
		Msg("Replay finished")
	return nil
}
