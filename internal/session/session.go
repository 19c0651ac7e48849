// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package session

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/waypoint/internal/location"
	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/proximity"
)

// EventSink receives every coordinator update.
type EventSink interface {
	Publish(ctx context.Context, u Update)
}

// EventSinkFunc adapts a function to EventSink.
type EventSinkFunc func(ctx context.Context, u Update)

// Publish calls fn.
func (fn EventSinkFunc) Publish(ctx context.Context, u Update) { fn(ctx, u) }

type noopSink struct{}

func (noopSink) Publish(context.Context, Update) {}

// step is a coordinator change requested from outside the session loop.
type step struct {
	apply func(*Coordinator) (Update, bool)
	reply chan bool
}

// Session is one viewing session: a coordinator fed from a latest-wins
// mailbox by a single goroutine. Every update, including timeouts and
// snapshot swaps, is produced and published on that goroutine.
type Session struct {
	ID        string
	ProjectID string
	CreatedAt time.Time

	coord   *Coordinator
	mailbox *location.Mailbox
	steps   chan step
	sink    EventSink

	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once

	mu      sync.Mutex
	detach  []func()
	started bool
}

func newSession(id, projectID string, coord *Coordinator, sink EventSink, createdAt time.Time) *Session {
	if sink == nil {
		sink = noopSink{}
	}
	return &Session{
		ID:        id,
		ProjectID: projectID,
		CreatedAt: createdAt,
		coord:     coord,
		mailbox:   location.NewMailbox(),
		steps:     make(chan step),
		sink:      sink,
		done:      make(chan struct{}),
	}
}

// Offer queues a fix for evaluation. A fix that has not been evaluated yet
// is replaced.
func (s *Session) Offer(f location.Fix) bool {
	return s.mailbox.Offer(f)
}

// Run evaluates fixes until ctx is cancelled. Each fix runs to completion
// before the next is read.
func (s *Session) Run(ctx context.Context) {
	defer close(s.done)

	ctx = logging.ContextWithSession(ctx, s.ID, s.ProjectID)
	logging.Ctx(ctx).Debug().Msg("Session loop started")

	for {
		select {
		case <-ctx.Done():
			logging.Ctx(ctx).Debug().Msg("Session loop stopped")
			return
		case f := <-s.mailbox.C():
			s.sink.Publish(ctx, s.process(f))
		case st := <-s.steps:
			u, ok := st.apply(s.coord)
			st.reply <- ok
			if ok {
				s.sink.Publish(ctx, u)
			}
		}
	}
}

// do runs apply on the session loop and reports whether it produced an
// update. It returns false if the loop has stopped or ctx ends first.
func (s *Session) do(ctx context.Context, apply func(*Coordinator) (Update, bool)) bool {
	st := step{apply: apply, reply: make(chan bool, 1)}
	select {
	case s.steps <- st:
	case <-s.done:
		return false
	case <-ctx.Done():
		return false
	}
	select {
	case ok := <-st.reply:
		return ok
	case <-s.done:
		return false
	}
}

func (s *Session) process(f location.Fix) Update {
	if f.Failed() {
		return s.coord.HandleError(f.Err)
	}
	return s.coord.HandleFix(f.Sample)
}

// start launches Run on a context derived from parent.
func (s *Session) start(parent context.Context, wg *sync.WaitGroup) {
	ctx, cancel := context.WithCancel(parent)

	s.mu.Lock()
	s.cancel = cancel
	s.started = true
	s.mu.Unlock()

	wg.Add(1)
	go func() {
		defer wg.Done()
		s.Run(ctx)
	}()
}

func (s *Session) addDetach(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detach = append(s.detach, fn)
}

// close unsubscribes providers, stops the loop and discards engine state.
func (s *Session) close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		detach := s.detach
		s.detach = nil
		cancel := s.cancel
		started := s.started
		s.mu.Unlock()

		for _, fn := range detach {
			fn()
		}
		if cancel != nil {
			cancel()
		}
		if started {
			<-s.done
		}
		s.coord.Close()
	})
}

// Status returns the current session status.
func (s *Session) Status() Status { return s.coord.Status() }

// Coordinator returns the session's coordinator.
func (s *Session) Coordinator() *Coordinator { return s.coord }

// Dropped returns how many fixes were superseded before evaluation.
func (s *Session) Dropped() uint64 { return s.mailbox.Dropped() }

// Nearby returns up to limit hotspots around the current position, nearest
// first. It returns nil while the session has no trusted position.
func (s *Session) Nearby(radiusMeters float64, limit int) []proximity.Proximity {
	st := s.coord.Status()
	plan := s.coord.Plan()
	if st.Position == nil || plan == nil || plan.Empty() {
		return nil
	}
	out := plan.Index.Within(*st.Position, radiusMeters)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Done is closed when the session loop exits.
func (s *Session) Done() <-chan struct{} { return s.done }
