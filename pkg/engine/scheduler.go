package engine

import (
	"sync"
	"time"
)

// =============================================================================
// Clock
// =============================================================================

// Clock abstracts wall time and timers so solve determinism is not coupled
// to real time. Tests inject a fake; production uses SystemClock.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Timer
}

// Timer is a cancelable pending callback.
type Timer interface {
	// Stop cancels the timer. It reports whether the call prevented the
	// callback from firing.
	Stop() bool
}

// SystemClock is the real-time Clock.
type SystemClock struct{}

// Now returns the current wall time.
func (SystemClock) Now() time.Time { return time.Now() }

// AfterFunc schedules fn after d on a new goroutine.
func (SystemClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// Ensure SystemClock implements Clock.
var _ Clock = SystemClock{}

// =============================================================================
// Debounce Scheduler
// =============================================================================

// Scheduler debounces solve triggers with last-write-wins semantics: at
// most one pending timer exists at a time, and scheduling a new trigger
// cancels any prior pending one. A superseded generation never fires even
// if its timer already popped, so callers get "never solve for a stale
// trigger" without any cancellation plumbing of their own.
type Scheduler struct {
	clock Clock
	delay time.Duration

	mu      sync.Mutex
	gen     uint64
	pending Timer
	stopped bool
}

// DefaultDebounce is the stock debounce window for solve triggers.
const DefaultDebounce = 50 * time.Millisecond

// NewScheduler creates a debounce scheduler. A nil clock means SystemClock;
// a non-positive delay means DefaultDebounce.
func NewScheduler(clock Clock, delay time.Duration) *Scheduler {
	if clock == nil {
		clock = SystemClock{}
	}
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Scheduler{clock: clock, delay: delay}
}

// Trigger schedules fn to run after the debounce window, replacing any
// pending trigger.
func (s *Scheduler) Trigger(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	if s.pending != nil {
		s.pending.Stop()
	}
	s.gen++
	gen := s.gen
	s.pending = s.clock.AfterFunc(s.delay, func() {
		s.mu.Lock()
		stale := gen != s.gen || s.stopped
		if !stale {
			s.pending = nil
		}
		s.mu.Unlock()
		if !stale {
			fn()
		}
	})
}

// Stop cancels any pending trigger and rejects future ones.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
}
