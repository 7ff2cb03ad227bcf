package engine

// =============================================================================
// Signal Composition
// =============================================================================

// SignalWeights is the weight vector folding raw value signals into one
// composite scalar. The weights are intended to sum to roughly 1 but that is
// not enforced; callers tuning the vector own normalization.
type SignalWeights struct {
	EmotionalIntensity  float64 `json:"emotional_intensity" toml:"emotional_intensity"`
	ContextualRelevance float64 `json:"contextual_relevance" toml:"contextual_relevance"`
	Freshness           float64 `json:"freshness" toml:"freshness"`
	ReaderEngagement    float64 `json:"reader_engagement" toml:"reader_engagement"`
}

// DefaultSignalWeights returns the stock weight vector. Relevance dominates,
// with emotional intensity next and freshness/engagement sharing the rest.
func DefaultSignalWeights() SignalWeights {
	return SignalWeights{
		EmotionalIntensity:  0.25,
		ContextualRelevance: 0.35,
		Freshness:           0.20,
		ReaderEngagement:    0.20,
	}
}

// IsZero reports whether no weight is set, so defaults should apply.
func (w SignalWeights) IsZero() bool {
	return w == SignalWeights{}
}

// Compose maps raw value signals to the composite value used as the
// solver's objective. Pure; out-of-range inputs are not rejected.
func (w SignalWeights) Compose(s ValueSignals) float64 {
	return w.EmotionalIntensity*s.EmotionalIntensity +
		w.ContextualRelevance*s.ContextualRelevance +
		w.Freshness*s.Freshness +
		w.ReaderEngagement*s.ReaderEngagement
}

// composeWeight maps raw weight signals to (full, min) composite weights.
// The full weight is the cost at full fidelity; the min weight is the
// irreducible footprint when maximally compressed. A collapsed item is never
// truly zero-cost, hence the ratio floor on the compressed height.
func composeWeight(s WeightSignals, minWeightRatio float64) (full, min float64) {
	return s.FullHeight, s.CompressedHeight * minWeightRatio
}

// =============================================================================
// Tunables
// =============================================================================

// Tunables collects the engine's heuristic constants. Zero-value fields fall
// back to defaults via Normalize, so callers can set only what they tune.
type Tunables struct {
	// Weights is the value-signal composition vector.
	Weights SignalWeights

	// MinWeightRatio scales CompressedHeight down to the irreducible
	// min weight of a collapsed item.
	MinWeightRatio float64

	// LoadSavingRatio is the estimated share of an item's cognitive load
	// recovered by compressing it. This is a heuristic constant with no
	// derivation behind it; treat it as approximate, not exact.
	LoadSavingRatio float64

	// ComfortableScale inflates the full height of high-value structural
	// items rendered comfortably.
	ComfortableScale float64
}

// Default tunable constants.
const (
	DefaultMinWeightRatio   = 0.3
	DefaultLoadSavingRatio  = 0.5
	DefaultComfortableScale = 1.1
)

// DefaultTunables returns the stock tunables.
func DefaultTunables() Tunables {
	return Tunables{
		Weights:          DefaultSignalWeights(),
		MinWeightRatio:   DefaultMinWeightRatio,
		LoadSavingRatio:  DefaultLoadSavingRatio,
		ComfortableScale: DefaultComfortableScale,
	}
}

// Normalize fills zero-valued fields with defaults. Idempotent.
func (t *Tunables) Normalize() {
	if t.Weights.IsZero() {
		t.Weights = DefaultSignalWeights()
	}
	if t.MinWeightRatio == 0 {
		t.MinWeightRatio = DefaultMinWeightRatio
	}
	if t.LoadSavingRatio == 0 {
		t.LoadSavingRatio = DefaultLoadSavingRatio
	}
	if t.ComfortableScale == 0 {
		t.ComfortableScale = DefaultComfortableScale
	}
}
