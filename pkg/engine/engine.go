package engine

import (
	"context"
	"io"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/affectively-ai/foldline/pkg/manifest"
	"github.com/affectively-ai/foldline/pkg/observability"
)

// =============================================================================
// Engine
// =============================================================================

// Config configures an Engine. The zero value is usable: defaults are a
// discard logger, the system clock, stock tunables, and edge resolution
// enabled with the default TTL.
type Config struct {
	// DocumentID identifies the owning document in logs, hooks, and
	// manifests.
	DocumentID string

	// Tunables are the engine's heuristic constants.
	Tunables Tunables

	// Personalization are the adapter's multipliers.
	Personalization PersonalizationTunables

	// Logger receives structured solve logs. Nil discards.
	Logger *log.Logger

	// Clock supplies timestamps and timers. Nil means SystemClock.
	Clock Clock

	// Debounce is the window for ScheduleSolve coalescing. Non-positive
	// means DefaultDebounce.
	Debounce time.Duration

	// DisableEdgeResolution omits URL templates from generated manifests.
	DisableEdgeResolution bool

	// EdgeCacheTTLSeconds is the declared TTL for edge-resolved values.
	// Non-positive means manifest.DefaultCacheTTLSeconds.
	EdgeCacheTTLSeconds int
}

// Engine owns one document's signal store and last decision set for the
// lifetime of its session. All mutation funnels through RegisterItem,
// UpdateValue, and ApplyOverrides; Solve recomputes the full decision set
// from current store state and performs no I/O.
type Engine struct {
	cfg       Config
	store     *SignalStore
	logger    *log.Logger
	clock     Clock
	notifier  notifier
	scheduler *Scheduler
	last      *LayoutResult
}

// New creates an engine from cfg, filling zero-valued fields with defaults.
func New(cfg Config) *Engine {
	cfg.Tunables.Normalize()
	cfg.Personalization.Normalize()
	if cfg.Logger == nil {
		cfg.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock{}
	}
	return &Engine{
		cfg:       cfg,
		store:     NewSignalStore(cfg.Tunables),
		logger:    cfg.Logger,
		clock:     cfg.Clock,
		scheduler: NewScheduler(cfg.Clock, cfg.Debounce),
	}
}

// DocumentID returns the owning document id.
func (e *Engine) DocumentID() string { return e.cfg.DocumentID }

// ItemCount returns the number of registered items.
func (e *Engine) ItemCount() int { return e.store.Len() }

// LastResult returns the most recent solve result, or nil before the first
// solve.
func (e *Engine) LastResult() *LayoutResult { return e.last }

// =============================================================================
// Mutation API
// =============================================================================

// RegisterItem upserts an item with its raw signals. Idempotent: repeating
// a registration replaces the item while keeping its stable position.
func (e *Engine) RegisterItem(item ContentItem, values ValueSignals, weights WeightSignals) {
	e.store.Register(item, values, weights)
}

// UpdateValue merges a partial value-signal update. Unknown ids are a
// no-op, matching upstream signal ticks that may outlive an item set.
func (e *Engine) UpdateValue(blockID string, patch *ValuePatch) {
	e.store.UpdateValue(blockID, patch)
}

// ApplyOverrides merges externally supplied overrides into the store.
// Overrides for unknown ids are silently ignored.
func (e *Engine) ApplyOverrides(overrides []Override) {
	for _, ov := range overrides {
		e.store.ApplyOverride(ov)
	}
}

// Subscribe registers a listener for solve results and returns its
// unsubscribe handle. Each solve delivers exactly one result, in
// subscription order.
func (e *Engine) Subscribe(fn Listener) func() {
	return e.notifier.subscribe(fn)
}

// =============================================================================
// Solving
// =============================================================================

// Solve produces a complete decision set for the given constraints.
// Synchronous and re-entrant over current store state; calling it twice
// with no intervening mutation yields identical decisions.
func (e *Engine) Solve(constraints ContainerConstraints) *LayoutResult {
	return e.solve(constraints, nil, nil)
}

// PersonalizedSolve adjusts capacity, cognitive budget, and item values for
// one viewer, then delegates to the standard solve pipeline. The viewer
// context is consumed, never stored.
func (e *Engine) PersonalizedSolve(constraints ContainerConstraints, viewer PersonalizationContext) *LayoutResult {
	constraints = e.cfg.Personalization.AdjustConstraints(constraints, viewer)
	overlay := e.cfg.Personalization.ValueMultipliers(viewer, e.store.snapshot())
	return e.solve(constraints, overlay, &viewer)
}

// ScheduleSolve debounces a solve for the given constraints. Rapid signal
// bursts coalesce into one solve per debounce window, last constraints
// winning; results are delivered through the notifier only. Stop cancels
// anything still pending.
func (e *Engine) ScheduleSolve(constraints ContainerConstraints) {
	e.scheduler.Trigger(func() {
		e.solve(constraints, nil, nil)
	})
}

// Stop cancels any pending scheduled solve and rejects future ones.
// Synchronous Solve calls remain usable after Stop.
func (e *Engine) Stop() {
	e.scheduler.Stop()
}

// solve runs the compose → allocate → enforce → finalize pipeline. The
// overlay multiplies stored composite values without mutating them, so
// personalized and plain solves can interleave freely.
func (e *Engine) solve(constraints ContainerConstraints, overlay map[string]float64, viewer *PersonalizationContext) *LayoutResult {
	start := e.clock.Now()
	entries := e.store.snapshot()
	observability.Solver().OnSolveStart(context.Background(), e.cfg.DocumentID, len(entries))

	byID := make(map[string]*entry, len(entries))
	vals := make(map[string]float64, len(entries))
	for _, en := range entries {
		byID[en.item.BlockID] = en
		v := en.compositeValue
		if overlay != nil {
			if m, ok := overlay[en.item.BlockID]; ok {
				v *= m
			}
		}
		vals[en.item.BlockID] = v
	}

	// Pass 1: structural reservation. Structural items never enter the
	// allocator; each claims capacity up front.
	draft := make([]LayoutDecision, 0, len(entries))
	remaining := constraints.Capacity
	var cands []candidate
	for _, en := range entries {
		if constraints.PreserveStructural() && en.item.Structural {
			d := structuralDecision(en, vals[en.item.BlockID], e.cfg.Tunables)
			remaining -= structuralReservation(d, en)
			draft = append(draft, d)
			continue
		}
		cands = append(cands, candidate{
			id:     en.item.BlockID,
			value:  vals[en.item.BlockID],
			weight: en.fullWeight,
			pos:    en.position,
		})
	}

	// Allocate the optional subset over whatever capacity is left.
	fractions := allocate(remaining, cands)
	for _, c := range cands {
		en := byID[c.id]
		f := fractions[c.id]
		draft = append(draft, LayoutDecision{
			BlockID:         c.id,
			Mode:            modeForFraction(f),
			AllocatedWeight: allocatedWeight(f, en.weights),
			Fraction:        f,
			Position:        en.position,
			Efficiency:      c.value / max1(c.weight),
			Included:        f > 0,
		})
	}

	// Pass 2: content floor. Pass 3: cognitive-load ceiling.
	enforceMinVisible(draft, byID, vals, constraints.MinVisibleItems)
	load := enforceLoadCeiling(draft, byID, vals, constraints, e.cfg.Tunables)

	// Final pass: forced render modes from overrides.
	applyForcedModes(draft, byID)

	sortByPosition(draft)

	result := &LayoutResult{
		Decisions:     draft,
		CognitiveLoad: load,
		Meta: SolveMeta{
			RunID:     uuid.NewString(),
			ItemCount: len(entries),
			SolvedAt:  start,
		},
	}
	var allocated float64
	for _, d := range draft {
		en := byID[d.BlockID]
		result.TotalValue += vals[d.BlockID] * d.Fraction
		allocated += d.AllocatedWeight
		if !d.Included {
			result.Overflow = append(result.Overflow, en.item.BlockID)
		}
	}
	if constraints.Capacity > 0 {
		result.Utilization = allocated / constraints.Capacity
	}
	if viewer != nil {
		result.Personalized = true
		result.ViewerID = viewer.ViewerID
	}
	result.Meta.Elapsed = e.clock.Now().Sub(start)

	e.last = result
	e.logger.Debug("solved layout",
		"doc", e.cfg.DocumentID,
		"items", result.Meta.ItemCount,
		"included", result.IncludedCount(),
		"utilization", result.Utilization,
		"load", result.CognitiveLoad,
		"elapsed", result.Meta.Elapsed)
	observability.Solver().OnSolveComplete(context.Background(), e.cfg.DocumentID,
		result.IncludedCount(), result.Utilization, result.Meta.Elapsed)

	e.notifier.emit(result)
	return result
}

// sortByPosition restores stable registration order after the passes.
func sortByPosition(draft []LayoutDecision) {
	sort.Slice(draft, func(i, j int) bool { return draft[i].Position < draft[j].Position })
}

// =============================================================================
// Manifests
// =============================================================================

// GenerateManifest snapshots the document's last decision set plus the
// edge-resolution template contract into a serializable manifest.
func (e *Engine) GenerateManifest(documentID string) manifest.Manifest {
	if documentID == "" {
		documentID = e.cfg.DocumentID
	}

	m := manifest.Manifest{
		ID:          uuid.NewString(),
		DocumentID:  documentID,
		GeneratedAt: e.clock.Now(),
	}
	var blockIDs []string
	if e.last != nil {
		m.Decisions = make([]manifest.Decision, 0, len(e.last.Decisions))
		for _, d := range e.last.Decisions {
			m.Decisions = append(m.Decisions, manifest.Decision{
				BlockID:         d.BlockID,
				Mode:            string(d.Mode),
				AllocatedWeight: d.AllocatedWeight,
				Position:        d.Position,
				Efficiency:      d.Efficiency,
				Included:        d.Included,
			})
			blockIDs = append(blockIDs, d.BlockID)
		}
	} else {
		for _, en := range e.store.snapshot() {
			blockIDs = append(blockIDs, en.item.BlockID)
		}
	}
	m.Edge = manifest.BuildEdgeResolution(documentID, blockIDs,
		!e.cfg.DisableEdgeResolution, e.cfg.EdgeCacheTTLSeconds)
	return m
}
