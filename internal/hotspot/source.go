// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package hotspot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/metrics"
	"github.com/tomtom215/waypoint/internal/validation"
)

// ErrInvalidProjectID is returned for project ids that are not slugs.
var ErrInvalidProjectID = errors.New("invalid project id")

// maxDocumentSize bounds a project document read from any source.
const maxDocumentSize = 8 << 20

// Source fetches raw project documents from the storage collaborator.
type Source interface {
	Fetch(ctx context.Context, projectID string) ([]byte, error)
	Name() string
}

// FileSource reads <dir>/<projectID>.json.
type FileSource struct {
	dir string
}

// NewFileSource creates a FileSource rooted at dir.
func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir}
}

// Name implements Source.
func (s *FileSource) Name() string { return "file" }

// Fetch implements Source.
func (s *FileSource) Fetch(ctx context.Context, projectID string) ([]byte, error) {
	if !validation.IsSlug(projectID) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidProjectID, projectID)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(s.dir, projectID+".json")
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("project %q: %w", projectID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("open project file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("read project file: %w", err)
	}
	return data, nil
}

// BreakerConfig tunes the circuit breaker in front of HTTPSource.
type BreakerConfig struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

// DefaultBreakerConfig returns the production breaker settings.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// HTTPSource fetches <baseURL>/projects/<projectID> from a document service.
// Calls go through a circuit breaker so an unavailable backend fails fast.
type HTTPSource struct {
	baseURL *url.URL
	client  *http.Client
	cb      *gobreaker.CircuitBreaker[[]byte]
	name    string
}

// NewHTTPSource creates an HTTPSource. client may be nil.
func NewHTTPSource(baseURL string, client *http.Client, cfg BreakerConfig) (*HTTPSource, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse hotspot source url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("hotspot source url must be http or https, got %q", u.Scheme)
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	name := "hotspot-source"
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		// A missing project is an answer, not a backend failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})

	return &HTTPSource{baseURL: u, client: client, cb: cb, name: name}, nil
}

// Name implements Source.
func (s *HTTPSource) Name() string { return "http" }

// State returns the current breaker state.
func (s *HTTPSource) State() gobreaker.State { return s.cb.State() }

// Fetch implements Source.
func (s *HTTPSource) Fetch(ctx context.Context, projectID string) ([]byte, error) {
	if !validation.IsSlug(projectID) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidProjectID, projectID)
	}

	data, err := s.cb.Execute(func() ([]byte, error) {
		return s.get(ctx, projectID)
	})
	switch {
	case err == nil:
		metrics.CircuitBreakerRequests.WithLabelValues(s.name, "success").Inc()
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(s.name, "rejected").Inc()
		logging.Warn().Err(err).Str("project_id", projectID).Msg("Hotspot source request rejected")
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(s.name, "failure").Inc()
	}
	return data, err
}

func (s *HTTPSource) get(ctx context.Context, projectID string) ([]byte, error) {
	u := s.baseURL.JoinPath("projects", projectID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch project %q: %w", projectID, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("project %q: %w", projectID, ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("fetch project %q: unexpected status %d", projectID, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("read project %q: %w", projectID, err)
	}
	return data, nil
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
