package engine

// =============================================================================
// Render Modes
// =============================================================================

// RenderMode is a discrete rendering-fidelity bucket. Modes are derived from
// an item's allocated fraction (optional items) or its composite value
// (structural items), except where an override forces a mode outright.
type RenderMode string

// Render modes ordered from most to least screen real estate.
const (
	ModeComfortable RenderMode = "comfortable" // full fidelity with extra breathing room
	ModeFull        RenderMode = "full"        // full fidelity
	ModeCompact     RenderMode = "compact"     // full text, tightened spacing
	ModeCompressed  RenderMode = "compressed"  // summary text only
	ModeCollapsed   RenderMode = "collapsed"   // title bar only
	ModeHidden      RenderMode = "hidden"      // not rendered
)

// =============================================================================
// Content Items and Signals
// =============================================================================

// ContentItem identifies one block of renderable content. Items are
// immutable once registered; re-registering the same BlockID replaces the
// item while keeping its position in the stable ordering.
type ContentItem struct {
	BlockID    string `json:"block_id"`
	Text       string `json:"text,omitempty"`
	Summary    string `json:"summary,omitempty"` // shown when compressed
	Category   string `json:"category,omitempty"`
	Structural bool   `json:"structural,omitempty"` // headings, required scaffolding
}

// ValueSignals are the raw per-item value inputs, nominally in [0,1].
// The engine does not clamp them; upstream signal producers own correctness
// and out-of-range values propagate into the composite.
type ValueSignals struct {
	EmotionalIntensity  float64 `json:"emotional_intensity"`
	ContextualRelevance float64 `json:"contextual_relevance"`
	Freshness           float64 `json:"freshness"`
	ReaderEngagement    float64 `json:"reader_engagement"`
}

// WeightSignals are the raw per-item cost inputs. FullHeight is the cost at
// full fidelity, CompressedHeight the cost when summarized, and
// CognitiveLoad a unitless [0,1] density proxy. The intended invariant is
// minWeight <= CompressedHeight <= FullHeight.
type WeightSignals struct {
	FullHeight       float64 `json:"full_height"`
	CompressedHeight float64 `json:"compressed_height"`
	ReadingTime      float64 `json:"reading_time,omitempty"`
	CognitiveLoad    float64 `json:"cognitive_load"`
}

// ValuePatch is a partial update to an item's value signals. Nil fields are
// left unchanged. It is used both by UpdateValue (incremental upstream
// ticks) and by Override (external replacements).
type ValuePatch struct {
	EmotionalIntensity  *float64 `json:"emotional_intensity,omitempty"`
	ContextualRelevance *float64 `json:"contextual_relevance,omitempty"`
	Freshness           *float64 `json:"freshness,omitempty"`
	ReaderEngagement    *float64 `json:"reader_engagement,omitempty"`
}

// apply merges the patch into s and reports whether anything changed.
func (p *ValuePatch) apply(s *ValueSignals) bool {
	if p == nil {
		return false
	}
	changed := false
	if p.EmotionalIntensity != nil {
		s.EmotionalIntensity = *p.EmotionalIntensity
		changed = true
	}
	if p.ContextualRelevance != nil {
		s.ContextualRelevance = *p.ContextualRelevance
		changed = true
	}
	if p.Freshness != nil {
		s.Freshness = *p.Freshness
		changed = true
	}
	if p.ReaderEngagement != nil {
		s.ReaderEngagement = *p.ReaderEngagement
		changed = true
	}
	return changed
}

// =============================================================================
// Overrides
// =============================================================================

// Override is an externally supplied correction for one item: optional
// value-signal replacements, a multiplicative boost on the composite value,
// and an optional forced render mode that bypasses the solver entirely.
// Overrides for unknown block ids are silently ignored; in a personalization
// pipeline they may legitimately race ahead of registration.
type Override struct {
	BlockID     string      `json:"block_id"`
	Values      *ValuePatch `json:"values,omitempty"`
	BoostFactor float64     `json:"boost_factor,omitempty"` // 0 means unset (treated as 1)
	ForcedMode  RenderMode  `json:"forced_mode,omitempty"`  // "" means none
}

// =============================================================================
// Container Constraints
// =============================================================================

// ContainerConstraints bound a single solve. The zero value means
// "unlimited-ish": zero capacity allocates nothing, no load ceiling, no
// visibility floor, and structural preservation enabled.
type ContainerConstraints struct {
	// Capacity is the available space in the same unit as WeightSignals
	// heights.
	Capacity float64 `json:"capacity"`

	// MaxCognitiveLoad caps the summed cognitive load of the rendered set.
	// Zero means no ceiling.
	MaxCognitiveLoad float64 `json:"max_cognitive_load,omitempty"`

	// MinVisibleItems is a content floor: at least this many optional items
	// are promoted to visibility even if that overflows capacity. Zero means
	// no floor.
	MinVisibleItems int `json:"min_visible_items,omitempty"`

	// SkipStructural disables structural reservation, sending structural
	// items through the solver like any other. The default (false) preserves
	// structural items unconditionally.
	SkipStructural bool `json:"skip_structural,omitempty"`
}

// PreserveStructural reports whether structural items bypass the solver.
func (c ContainerConstraints) PreserveStructural() bool { return !c.SkipStructural }

// HasLoadCeiling reports whether a cognitive-load ceiling is set.
func (c ContainerConstraints) HasLoadCeiling() bool { return c.MaxCognitiveLoad > 0 }
