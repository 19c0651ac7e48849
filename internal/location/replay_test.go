// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package location

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

const track = `
# campus walk
{"latitude":41.1500,"longitude":-81.3450,"timestamp":"2026-03-14T09:00:00Z"}
{"latitude":41.1501,"longitude":-81.3450,"timestamp":"2026-03-14T09:00:05Z"}

{"error":{"code":"position_unavailable"}}
{"latitude":41.1502,"longitude":-81.3450}
`

func TestReadTrack(t *testing.T) {
	t.Parallel()

	fixes, err := ReadTrack(strings.NewReader(track), testNow)
	if err != nil {
		t.Fatalf("ReadTrack() error = %v", err)
	}
	if len(fixes) != 4 {
		t.Fatalf("got %d fixes, want 4", len(fixes))
	}
	if !fixes[2].Failed() || fixes[2].Err.Code != CodePositionUnavailable {
		t.Errorf("fix 2 = %+v, want position_unavailable failure", fixes[2])
	}
	if want := testNow.Add(3 * time.Second); !fixes[3].Sample.Timestamp.Equal(want) {
		t.Errorf("untimed fix stamped %v, want %v", fixes[3].Sample.Timestamp, want)
	}
}

func TestReadTrack_BadLine(t *testing.T) {
	t.Parallel()

	_, err := ReadTrack(strings.NewReader("{\"latitude\":1,\"longitude\":2}\n{\"latitude\":1}\n"), testNow)
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("ReadTrack() error = %v, want line 2 failure", err)
	}
}

func TestReplay_DeliversInOrder(t *testing.T) {
	t.Parallel()

	fixes, err := ReadTrack(strings.NewReader(track), testNow)
	if err != nil {
		t.Fatal(err)
	}

	var got []Fix
	err = Replay(context.Background(), fixes, OfferFunc(func(f Fix) bool {
		got = append(got, f)
		return false
	}), ReplayOptions{})
	if err != nil {
		t.Fatalf("Replay() error = %v", err)
	}
	if len(got) != len(fixes) {
		t.Fatalf("delivered %d fixes, want %d", len(got), len(fixes))
	}
	for i := range got {
		if got[i].Failed() != fixes[i].Failed() || !got[i].Sample.Coords.Equal(fixes[i].Sample.Coords) {
			t.Errorf("fix %d delivered out of order", i)
		}
	}
}

func TestReplay_Cancelled(t *testing.T) {
	t.Parallel()

	fixes, err := ReadTrack(strings.NewReader(track), testNow)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	delivered := 0
	err = Replay(ctx, fixes, OfferFunc(func(Fix) bool {
		delivered++
		cancel()
		return false
	}), ReplayOptions{Speed: 1})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Replay() error = %v, want context.Canceled", err)
	}
	if delivered != 1 {
		t.Errorf("delivered %d fixes after cancel, want 1", delivered)
	}
}

func TestReplay_MaxGap(t *testing.T) {
	t.Parallel()

	fixes, err := ReadTrack(strings.NewReader(track), testNow)
	if err != nil {
		t.Fatal(err)
	}
	start := time.Now()
	err = Replay(context.Background(), fixes[:2], OfferFunc(func(Fix) bool { return false }),
		ReplayOptions{Speed: 1, MaxGap: 10 * time.Millisecond})
	if err != nil {
		t.Fatalf("Replay() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("MaxGap not applied, replay took %v", elapsed)
	}
}
