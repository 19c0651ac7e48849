// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Engine Metrics
	SamplesProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "waypoint_position_samples_processed_total",
			Help: "Total number of position samples evaluated",
		},
	)

	SamplesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "waypoint_position_samples_dropped_total",
			Help: "Position samples replaced by a newer fix before evaluation",
		},
	)

	EvaluationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "waypoint_evaluation_duration_seconds",
			Help:    "Time spent evaluating one position sample",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		},
	)

	HotspotEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waypoint_hotspot_events_total",
			Help: "Hotspot trigger events by kind",
		},
		[]string{"kind"}, // "enter", "exit"
	)

	DataQualityIssues = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waypoint_data_quality_issues_total",
			Help: "Coordinates corrected during normalization",
		},
		[]string{"source", "issue"}, // source: "sample", "hotspot"
	)

	LocationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waypoint_location_errors_total",
			Help: "Location provider failures by code",
		},
		[]string{"code"},
	)

	SessionTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waypoint_session_transitions_total",
			Help: "Coordinator state transitions",
		},
		[]string{"from", "to"},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "waypoint_sessions_active",
			Help: "Current number of tracking sessions",
		},
	)

	SessionsOnCampus = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "waypoint_sessions_on_campus",
			Help: "Current number of sessions whose effective status is ON_CAMPUS",
		},
	)

	// Hotspot Snapshot Metrics
	SnapshotCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "waypoint_snapshot_cache_hits_total",
			Help: "Hotspot snapshot loads served from the cache",
		},
	)

	SnapshotCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "waypoint_snapshot_cache_misses_total",
			Help: "Hotspot snapshot loads that went to the source",
		},
	)

	SnapshotFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "waypoint_snapshot_fetch_duration_seconds",
			Help:    "Duration of hotspot source fetches",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	SnapshotFetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waypoint_snapshot_fetch_errors_total",
			Help: "Failed hotspot source fetches",
		},
		[]string{"source"},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waypoint_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "waypoint_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "waypoint_api_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "waypoint_websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waypoint_websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
		[]string{"type"},
	)

	WSMessagesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "waypoint_websocket_messages_dropped_total",
			Help: "Messages dropped because a client buffer was full",
		},
	)

	// Event Bus Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waypoint_events_published_total",
			Help: "Events published to the bus",
		},
		[]string{"topic"},
	)

	EventPublishErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waypoint_event_publish_errors_total",
			Help: "Failed event publishes",
		},
		[]string{"topic"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "waypoint_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waypoint_circuit_breaker_requests_total",
			Help: "Requests through a circuit breaker by result",
		},
		[]string{"name", "result"}, // "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waypoint_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)
)

// RecordEvaluation records one evaluated sample.
func RecordEvaluation(duration time.Duration) {
	SamplesProcessed.Inc()
	EvaluationDuration.Observe(duration.Seconds())
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordSnapshotFetch records a source fetch and its outcome.
func RecordSnapshotFetch(source string, duration time.Duration, err error) {
	SnapshotFetchDuration.WithLabelValues(source).Observe(duration.Seconds())
	if err != nil {
		SnapshotFetchErrors.WithLabelValues(source).Inc()
	}
}

// RecordPublish records an event bus publish.
func RecordPublish(topic string, err error) {
	if err != nil {
		EventPublishErrors.WithLabelValues(topic).Inc()
		return
	}
	EventsPublished.WithLabelValues(topic).Inc()
}
