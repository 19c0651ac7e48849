// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package location

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"time"
)

const maxTrackLine = 64 * 1024

// ReadTrack parses a JSON-lines track. Blank lines and lines starting with
// '#' are ignored. Fixes without a timestamp are spaced one second apart
// from start so pacing still works.
func ReadTrack(r io.Reader, start time.Time) ([]Fix, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxTrackLine)

	var fixes []Fix
	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 || text[0] == '#' {
			continue
		}
		fix, err := DecodeFix(text, start.Add(time.Duration(len(fixes))*time.Second))
		if err != nil {
			return nil, fmt.Errorf("track line %d: %w", line, err)
		}
		fixes = append(fixes, fix)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read track: %w", err)
	}
	return fixes, nil
}

// ReplayOptions controls Replay pacing.
type ReplayOptions struct {
	// Speed scales the recorded gaps between fixes: 2 plays twice as fast.
	// Zero or negative replays without waiting.
	Speed float64
	// MaxGap caps a single wait. Zero means no cap.
	MaxGap time.Duration
}

// Replay offers fixes to dst in order. With pacing it sleeps for the
// recorded gap between consecutive successful samples. Failures carry no
// timestamp and are delivered without waiting.
func Replay(ctx context.Context, fixes []Fix, dst Offerer, opts ReplayOptions) error {
	var prev time.Time
	for i, f := range fixes {
		if opts.Speed > 0 && !f.Failed() {
			if !prev.IsZero() && f.Sample.Timestamp.After(prev) {
				wait := time.Duration(float64(f.Sample.Timestamp.Sub(prev)) / opts.Speed)
				if opts.MaxGap > 0 && wait > opts.MaxGap {
					wait = opts.MaxGap
				}
				if err := sleep(ctx, wait); err != nil {
					return fmt.Errorf("replay interrupted at fix %d: %w", i, err)
				}
			}
			prev = f.Sample.Timestamp
		}
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("replay interrupted at fix %d: %w", i, err)
		}
		dst.Offer(f)
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// OfferFunc adapts a function to Offerer.
type OfferFunc func(Fix) bool

// Offer calls fn(f).
func (fn OfferFunc) Offer(f Fix) bool { return fn(f) }
