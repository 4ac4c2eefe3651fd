// Package autosave debounces persistence of an editable value: rapid edits
// coalesce into one save of the latest value, identical values are never
// saved twice, and saves never overlap.
package autosave

import (
	"context"
	"reflect"
	"sync"
	"time"

	"worldsmith/internal/logger"
)

// DefaultDelay is the quiet window after the last change.
const DefaultDelay = 2 * time.Second

type State int

const (
	Idle State = iota
	Pending
	Saving
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Saving:
		return "saving"
	default:
		return "idle"
	}
}

// Options configure a Scheduler. OnError receives failed saves, which are
// not retried. Equal defaults to reflect.DeepEqual.
type Options[T any] struct {
	Delay   time.Duration
	Save    func(ctx context.Context, v T) error
	OnError func(error)
	OnSaved func(v T)
	Equal   func(a, b T) bool
	Log     *logger.Logger
}

type Scheduler[T any] struct {
	opts Options[T]
	log  *logger.Logger

	mu         sync.Mutex
	state      State
	timer      *time.Timer
	generation uint64
	stopped    bool
	done       chan struct{}

	saved      T
	hasSaved   bool
	pending    T
	hasPending bool
}

func New[T any](opts Options[T]) *Scheduler[T] {
	if opts.Delay <= 0 {
		opts.Delay = DefaultDelay
	}
	if opts.Equal == nil {
		opts.Equal = func(a, b T) bool { return reflect.DeepEqual(a, b) }
	}
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}
	return &Scheduler[T]{opts: opts, log: log.With("service", "Autosave")}
}

// Seed records v as already persisted, typically the value just loaded.
func (s *Scheduler[T]) Seed(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = v
	s.hasSaved = true
}

func (s *Scheduler[T]) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Update reports a new current value.
func (s *Scheduler[T]) Update(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	if s.hasPending && s.opts.Equal(v, s.pending) {
		return
	}

	if s.state == Saving {
		// Armed again once the in-flight save completes.
		s.pending = v
		s.hasPending = true
		return
	}

	if s.hasSaved && s.opts.Equal(v, s.saved) {
		// Back to the persisted value: nothing left to save.
		s.cancelLocked()
		s.hasPending = false
		s.state = Idle
		return
	}
	s.pending = v
	s.hasPending = true
	s.armLocked()
}

// Flush saves the pending value now, waiting for an in-flight save first.
func (s *Scheduler[T]) Flush(ctx context.Context) error {
	for {
		s.mu.Lock()
		if s.state == Saving {
			done := s.done
			s.mu.Unlock()
			select {
			case <-done:
				continue
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		s.cancelLocked()
		if !s.hasPending {
			s.state = Idle
			s.mu.Unlock()
			return nil
		}
		v := s.beginLocked()
		s.mu.Unlock()
		return s.run(ctx, v)
	}
}

// Stop cancels the pending timer and ignores later updates. A save already
// in flight runs to completion.
func (s *Scheduler[T]) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	s.cancelLocked()
	s.hasPending = false
	if s.state == Pending {
		s.state = Idle
	}
}

func (s *Scheduler[T]) armLocked() {
	s.cancelLocked()
	s.state = Pending
	gen := s.generation
	s.timer = time.AfterFunc(s.opts.Delay, func() { s.fire(gen) })
}

func (s *Scheduler[T]) cancelLocked() {
	s.generation++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Scheduler[T]) beginLocked() T {
	v := s.pending
	var zero T
	s.pending = zero
	s.hasPending = false
	s.state = Saving
	s.done = make(chan struct{})
	return v
}

func (s *Scheduler[T]) fire(gen uint64) {
	s.mu.Lock()
	if gen != s.generation || s.stopped || s.state == Saving || !s.hasPending {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	v := s.beginLocked()
	s.mu.Unlock()
	_ = s.run(context.Background(), v)
}

func (s *Scheduler[T]) run(ctx context.Context, v T) error {
	err := s.opts.Save(ctx, v)

	s.mu.Lock()
	close(s.done)
	s.state = Idle
	if err == nil {
		s.saved = v
		s.hasSaved = true
	}
	if s.hasPending && !s.stopped {
		switch {
		case err != nil && s.opts.Equal(s.pending, v):
			// The value that just failed; it waits for a real change.
			var zero T
			s.pending = zero
			s.hasPending = false
		case s.hasSaved && s.opts.Equal(s.pending, s.saved):
			s.hasPending = false
		default:
			s.armLocked()
		}
	}
	s.mu.Unlock()

	if err != nil {
		s.log.Warn("autosave failed", "error", err)
		if s.opts.OnError != nil {
			s.opts.OnError(err)
		}
		return err
	}
	s.log.Debug("autosaved")
	if s.opts.OnSaved != nil {
		s.opts.OnSaved(v)
	}
	return nil
}
