package engine

import (
	"sync"
	"testing"
	"time"
)

// =============================================================================
// Fake Clock
// =============================================================================

// fakeClock is a deterministic Clock for tests. Advance fires due timers
// synchronously on the calling goroutine.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock    *fakeClock
	deadline time.Time
	fn       func()
	stopped  bool
	fired    bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, fn func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, deadline: c.now.Add(d), fn: fn}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	was := !t.stopped && !t.fired
	t.stopped = true
	return was
}

// Advance moves time forward and fires every due, unstopped timer.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.deadline.After(c.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()
	for _, t := range due {
		t.fn()
	}
}

// =============================================================================
// Scheduler Tests
// =============================================================================

func TestSchedulerFiresAfterDelay(t *testing.T) {
	clock := newFakeClock()
	s := NewScheduler(clock, 50*time.Millisecond)

	fired := 0
	s.Trigger(func() { fired++ })

	clock.Advance(40 * time.Millisecond)
	if fired != 0 {
		t.Error("trigger fired before the debounce window elapsed")
	}
	clock.Advance(20 * time.Millisecond)
	if fired != 1 {
		t.Errorf("fired = %d, want 1", fired)
	}
}

func TestSchedulerLastWriteWins(t *testing.T) {
	clock := newFakeClock()
	s := NewScheduler(clock, 50*time.Millisecond)

	var got []string
	s.Trigger(func() { got = append(got, "first") })
	clock.Advance(30 * time.Millisecond)
	s.Trigger(func() { got = append(got, "second") })

	// The first trigger's window elapses, but it was superseded.
	clock.Advance(30 * time.Millisecond)
	if len(got) != 0 {
		t.Errorf("superseded trigger fired: %v", got)
	}

	clock.Advance(30 * time.Millisecond)
	if len(got) != 1 || got[0] != "second" {
		t.Errorf("got %v, want [second]", got)
	}
}

func TestSchedulerStaleGenerationNeverFires(t *testing.T) {
	clock := newFakeClock()
	s := NewScheduler(clock, 50*time.Millisecond)

	fired := 0
	for i := 0; i < 10; i++ {
		s.Trigger(func() { fired++ })
		clock.Advance(10 * time.Millisecond)
	}
	clock.Advance(100 * time.Millisecond)

	if fired != 1 {
		t.Errorf("fired = %d, want exactly 1 (last trigger only)", fired)
	}
}

func TestSchedulerStop(t *testing.T) {
	clock := newFakeClock()
	s := NewScheduler(clock, 50*time.Millisecond)

	fired := 0
	s.Trigger(func() { fired++ })
	s.Stop()
	clock.Advance(time.Second)

	if fired != 0 {
		t.Error("stopped scheduler fired a pending trigger")
	}

	// Triggers after Stop are rejected.
	s.Trigger(func() { fired++ })
	clock.Advance(time.Second)
	if fired != 0 {
		t.Error("stopped scheduler accepted a new trigger")
	}
}

func TestSchedulerDefaults(t *testing.T) {
	s := NewScheduler(nil, 0)
	if s.clock == nil {
		t.Error("nil clock should default to SystemClock")
	}
	if s.delay != DefaultDebounce {
		t.Errorf("delay = %v, want %v", s.delay, DefaultDebounce)
	}
}
