// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordEvaluation(t *testing.T) {
	before := testutil.ToFloat64(SamplesProcessed)
	RecordEvaluation(50 * time.Microsecond)
	RecordEvaluation(2 * time.Millisecond)

	if got := testutil.ToFloat64(SamplesProcessed) - before; got != 2 {
		t.Errorf("SamplesProcessed delta = %v, want 2", got)
	}
}

func TestRecordAPIRequest(t *testing.T) {
	c := APIRequestsTotal.WithLabelValues("GET", "/api/v1/health", "200")
	before := testutil.ToFloat64(c)

	RecordAPIRequest("GET", "/api/v1/health", "200", 3*time.Millisecond)

	if got := testutil.ToFloat64(c) - before; got != 1 {
		t.Errorf("APIRequestsTotal delta = %v, want 1", got)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	TrackActiveRequest(true)
	TrackActiveRequest(false)

	if got := testutil.ToFloat64(APIActiveRequests) - before; got != 1 {
		t.Errorf("APIActiveRequests delta = %v, want 1", got)
	}
	TrackActiveRequest(false)
}

func TestRecordSnapshotFetch(t *testing.T) {
	errs := SnapshotFetchErrors.WithLabelValues("test-source")
	before := testutil.ToFloat64(errs)

	RecordSnapshotFetch("test-source", time.Millisecond, nil)
	RecordSnapshotFetch("test-source", time.Millisecond, errors.New("boom"))

	if got := testutil.ToFloat64(errs) - before; got != 1 {
		t.Errorf("SnapshotFetchErrors delta = %v, want 1", got)
	}
}

func TestRecordPublish(t *testing.T) {
	ok := EventsPublished.WithLabelValues("test.topic")
	failed := EventPublishErrors.WithLabelValues("test.topic")
	okBefore, failedBefore := testutil.ToFloat64(ok), testutil.ToFloat64(failed)

	RecordPublish("test.topic", nil)
	RecordPublish("test.topic", nil)
	RecordPublish("test.topic", errors.New("closed"))

	if got := testutil.ToFloat64(ok) - okBefore; got != 2 {
		t.Errorf("EventsPublished delta = %v, want 2", got)
	}
	if got := testutil.ToFloat64(failed) - failedBefore; got != 1 {
		t.Errorf("EventPublishErrors delta = %v, want 1", got)
	}
}
