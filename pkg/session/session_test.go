package session

import (
	"testing"
	"time"

	"github.com/affectively-ai/foldline/pkg/engine"
)

// stubClock implements engine.Clock with a settable time.
type stubClock struct {
	now time.Time
}

func (c *stubClock) Now() time.Time { return c.now }

func (c *stubClock) AfterFunc(d time.Duration, fn func()) engine.Timer {
	return stubTimer{}
}

type stubTimer struct{}

func (stubTimer) Stop() bool { return false }

func TestRegistryCreatesOnFirstUse(t *testing.T) {
	r := NewRegistry(Config{})
	defer r.Close()

	if r.Peek("doc-1") != nil {
		t.Error("Peek should not create sessions")
	}

	eng := r.Engine("doc-1")
	if eng == nil {
		t.Fatal("Engine returned nil")
	}
	if eng.DocumentID() != "doc-1" {
		t.Errorf("document id = %q, want doc-1", eng.DocumentID())
	}
	if got := r.Engine("doc-1"); got != eng {
		t.Error("repeat lookup should return the same engine")
	}
	if r.Len() != 1 {
		t.Errorf("Len = %d, want 1", r.Len())
	}
}

func TestRegistryIsolatesDocuments(t *testing.T) {
	r := NewRegistry(Config{})
	defer r.Close()

	a := r.Engine("doc-a")
	b := r.Engine("doc-b")
	if a == b {
		t.Fatal("documents must not share engines")
	}

	a.RegisterItem(engine.ContentItem{BlockID: "x"}, engine.ValueSignals{},
		engine.WeightSignals{FullHeight: 100, CompressedHeight: 40})
	if b.ItemCount() != 0 {
		t.Error("registration leaked across documents")
	}
}

func TestRegistryCleanup(t *testing.T) {
	clock := &stubClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	r := NewRegistry(Config{TTL: time.Hour, Clock: clock})
	defer r.Close()

	r.Engine("stale")
	clock.now = clock.now.Add(30 * time.Minute)
	r.Engine("fresh")

	clock.now = clock.now.Add(45 * time.Minute)
	if dropped := r.Cleanup(); dropped != 1 {
		t.Errorf("dropped = %d, want 1", dropped)
	}
	if r.Peek("stale") != nil {
		t.Error("stale session should be gone")
	}
	if r.Peek("fresh") == nil {
		t.Error("fresh session should survive")
	}
}

func TestRegistryTouchRefreshesTTL(t *testing.T) {
	clock := &stubClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	r := NewRegistry(Config{TTL: time.Hour, Clock: clock})
	defer r.Close()

	r.Engine("doc-1")
	clock.now = clock.now.Add(45 * time.Minute)
	r.Engine("doc-1") // touch
	clock.now = clock.now.Add(45 * time.Minute)

	if dropped := r.Cleanup(); dropped != 0 {
		t.Errorf("dropped = %d, refreshed session should survive", dropped)
	}
}

func TestRegistryRemove(t *testing.T) {
	r := NewRegistry(Config{})
	defer r.Close()

	r.Engine("doc-1")
	r.Remove("doc-1")
	if r.Len() != 0 {
		t.Error("Remove should drop the session")
	}
	r.Remove("missing") // no-op
}
