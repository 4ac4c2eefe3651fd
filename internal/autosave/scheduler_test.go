package autosave

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type draft struct {
	Name string
	Tags []string
}

type recorder struct {
	mu       sync.Mutex
	saves    []draft
	attempts int
	fail     int
	gate     chan struct{}
}

func (r *recorder) save(_ context.Context, d draft) error {
	if r.gate != nil {
		<-r.gate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts++
	if r.fail > 0 {
		r.fail--
		return errors.New("quota exceeded")
	}
	r.saves = append(r.saves, d)
	return nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.saves)
}

func (r *recorder) tries() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.attempts
}

func (r *recorder) last() draft {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves[len(r.saves)-1]
}

const delay = 20 * time.Millisecond

func TestRapidUpdatesCoalesce(t *testing.T) {
	rec := &recorder{}
	s := New(Options[draft]{Delay: delay, Save: rec.save})
	defer s.Stop()

	for _, name := range []string{"a", "ab", "abc", "abcd", "abcde"} {
		s.Update(draft{Name: name})
	}
	require.Eventually(t, func() bool { return rec.count() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(3 * delay)
	require.Equal(t, 1, rec.count())
	require.Equal(t, "abcde", rec.last().Name)
	require.Equal(t, Idle, s.State())
}

func TestIdenticalValuesSaveOnce(t *testing.T) {
	rec := &recorder{}
	s := New(Options[draft]{Delay: delay, Save: rec.save})
	defer s.Stop()

	s.Update(draft{Name: "a", Tags: []string{"x"}})
	s.Update(draft{Name: "a", Tags: []string{"x"}})
	require.Eventually(t, func() bool { return rec.count() == 1 }, time.Second, 5*time.Millisecond)

	s.Update(draft{Name: "a", Tags: []string{"x"}})
	time.Sleep(3 * delay)
	require.Equal(t, 1, rec.count())
	require.Equal(t, Idle, s.State())
}

func TestSeededValueIsNotSaved(t *testing.T) {
	rec := &recorder{}
	s := New(Options[draft]{Delay: delay, Save: rec.save})
	defer s.Stop()

	s.Seed(draft{Name: "loaded"})
	s.Update(draft{Name: "loaded"})
	require.Equal(t, Idle, s.State())
	time.Sleep(3 * delay)
	require.Equal(t, 0, rec.count())
}

func TestRevertToSavedCancelsPending(t *testing.T) {
	rec := &recorder{}
	s := New(Options[draft]{Delay: 50 * time.Millisecond, Save: rec.save})
	defer s.Stop()

	s.Seed(draft{Name: "loaded"})
	s.Update(draft{Name: "typo"})
	require.Equal(t, Pending, s.State())
	s.Update(draft{Name: "loaded"})
	require.Equal(t, Idle, s.State())
	time.Sleep(150 * time.Millisecond)
	require.Equal(t, 0, rec.count())
}

func TestFailedSaveClearsFlag(t *testing.T) {
	rec := &recorder{fail: 1}
	errs := make(chan error, 1)
	s := New(Options[draft]{
		Delay:   delay,
		Save:    rec.save,
		OnError: func(err error) { errs <- err },
	})
	defer s.Stop()

	s.Update(draft{Name: "first"})
	select {
	case err := <-errs:
		require.EqualError(t, err, "quota exceeded")
	case <-time.After(time.Second):
		t.Fatal("expected error callback")
	}
	require.Eventually(t, func() bool { return s.State() == Idle }, time.Second, 5*time.Millisecond)
	require.Equal(t, 0, rec.count())

	s.Update(draft{Name: "second"})
	require.Eventually(t, func() bool { return rec.count() == 1 }, time.Second, 5*time.Millisecond)
	require.Equal(t, "second", rec.last().Name)
}

func TestFailedValueRepeatedDuringSaveIsNotRetried(t *testing.T) {
	rec := &recorder{fail: 1, gate: make(chan struct{})}
	errs := make(chan error, 1)
	s := New(Options[draft]{
		Delay:   delay,
		Save:    rec.save,
		OnError: func(err error) { errs <- err },
	})
	defer s.Stop()

	s.Update(draft{Name: "same"})
	require.Eventually(t, func() bool { return s.State() == Saving }, time.Second, time.Millisecond)
	s.Update(draft{Name: "same"})
	close(rec.gate)

	select {
	case err := <-errs:
		require.EqualError(t, err, "quota exceeded")
	case <-time.After(time.Second):
		t.Fatal("expected error callback")
	}
	time.Sleep(5 * delay)
	require.Equal(t, 1, rec.tries())
	require.Equal(t, 0, rec.count())
	require.Equal(t, Idle, s.State())

	s.Update(draft{Name: "changed"})
	require.Eventually(t, func() bool { return rec.count() == 1 }, time.Second, 5*time.Millisecond)
	require.Equal(t, "changed", rec.last().Name)
}

func TestUpdateDuringSaveIsSavedAfter(t *testing.T) {
	rec := &recorder{gate: make(chan struct{})}
	s := New(Options[draft]{Delay: delay, Save: rec.save})
	defer s.Stop()

	s.Update(draft{Name: "one"})
	require.Eventually(t, func() bool { return s.State() == Saving }, time.Second, time.Millisecond)

	s.Update(draft{Name: "two"})
	require.Equal(t, Saving, s.State())
	close(rec.gate)

	require.Eventually(t, func() bool { return rec.count() == 2 }, time.Second, 5*time.Millisecond)
	require.Equal(t, "two", rec.last().Name)
}

func TestStopCancelsPending(t *testing.T) {
	rec := &recorder{}
	s := New(Options[draft]{Delay: delay, Save: rec.save})

	s.Update(draft{Name: "unsaved"})
	s.Stop()
	s.Update(draft{Name: "ignored"})
	time.Sleep(3 * delay)
	require.Equal(t, 0, rec.count())
	require.Equal(t, Idle, s.State())
}

func TestFlush(t *testing.T) {
	rec := &recorder{}
	saved := make(chan draft, 1)
	s := New(Options[draft]{
		Delay:   time.Hour,
		Save:    rec.save,
		OnSaved: func(d draft) { saved <- d },
	})
	defer s.Stop()

	require.NoError(t, s.Flush(context.Background()))
	require.Equal(t, 0, rec.count())

	s.Update(draft{Name: "now"})
	require.NoError(t, s.Flush(context.Background()))
	require.Equal(t, 1, rec.count())
	require.Equal(t, "now", (<-saved).Name)
	require.Equal(t, Idle, s.State())
}
