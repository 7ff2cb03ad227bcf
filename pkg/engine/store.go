package engine

// =============================================================================
// Signal Store
// =============================================================================

// entry is the store's per-item record: the immutable item, its raw
// signals, and the composite scalars recomputed on every write.
type entry struct {
	item    ContentItem
	values  ValueSignals
	weights WeightSignals

	compositeValue float64
	fullWeight     float64
	minWeight      float64

	boost      float64    // multiplicative boost from overrides, 1 = neutral
	forcedMode RenderMode // "" = none

	position int // registration order, stable across re-registration
}

// SignalStore owns all per-item state. It is the single choke point for
// mutation: every write path (register, update, override) funnels through
// it so composites are always consistent with the latest raw signals.
//
// The store is not synchronized; intended usage is a single logical writer
// with solves interleaved sequentially.
type SignalStore struct {
	entries map[string]*entry
	order   []string // block ids in registration order
	tun     Tunables
}

// NewSignalStore creates an empty store with the given tunables.
func NewSignalStore(tun Tunables) *SignalStore {
	tun.Normalize()
	return &SignalStore{
		entries: make(map[string]*entry),
		tun:     tun,
	}
}

// Register upserts an item with its raw signals and recomputes composites.
// Re-registering an existing block id replaces item and signals but keeps
// the original position, so decision ordering stays stable. Override boosts
// and forced modes applied earlier survive re-registration: overrides may
// race ahead of registration and must not be lost by it.
func (s *SignalStore) Register(item ContentItem, values ValueSignals, weights WeightSignals) {
	e, ok := s.entries[item.BlockID]
	if !ok {
		e = &entry{boost: 1, position: len(s.order)}
		s.entries[item.BlockID] = e
		s.order = append(s.order, item.BlockID)
	}
	e.item = item
	e.values = values
	e.weights = weights
	s.recompute(e)
}

// UpdateValue merges a partial value-signal update into an item and
// recomputes its composite. Unknown ids are a no-op.
func (s *SignalStore) UpdateValue(blockID string, patch *ValuePatch) {
	e, ok := s.entries[blockID]
	if !ok {
		return
	}
	if patch.apply(&e.values) {
		s.recompute(e)
	}
}

// ApplyOverride merges one override: value replacements feed back into the
// raw signals (triggering recompute), the boost factor multiplies the
// composite, and a forced mode is recorded for the post-solve pass.
// Overrides for unknown ids are silently ignored.
func (s *SignalStore) ApplyOverride(ov Override) {
	e, ok := s.entries[ov.BlockID]
	if !ok {
		return
	}
	ov.Values.apply(&e.values)
	if ov.BoostFactor != 0 {
		e.boost *= ov.BoostFactor
	}
	if ov.ForcedMode != "" {
		e.forcedMode = ov.ForcedMode
	}
	s.recompute(e)
}

// recompute refreshes an entry's composite scalars from its raw signals.
func (s *SignalStore) recompute(e *entry) {
	e.compositeValue = s.tun.Weights.Compose(e.values) * e.boost
	e.fullWeight, e.minWeight = composeWeight(e.weights, s.tun.MinWeightRatio)
}

// Len returns the number of registered items.
func (s *SignalStore) Len() int { return len(s.entries) }

// snapshot returns all entries in registration order.
func (s *SignalStore) snapshot() []*entry {
	out := make([]*entry, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.entries[id])
	}
	return out
}

// get returns the entry for a block id, or nil.
func (s *SignalStore) get(blockID string) *entry { return s.entries[blockID] }
