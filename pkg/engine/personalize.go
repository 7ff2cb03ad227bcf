package engine

// =============================================================================
// Personalization Context
// =============================================================================

// DeviceClass identifies the viewer's device form factor.
type DeviceClass string

// Known device classes.
const (
	DevicePhone   DeviceClass = "phone"
	DeviceTablet  DeviceClass = "tablet"
	DeviceDesktop DeviceClass = "desktop"
	DeviceTV      DeviceClass = "tv"
)

// ReadingLevel expresses how much cognitive budget a viewer brings.
type ReadingLevel string

// Known reading levels.
const (
	ReadingCasual   ReadingLevel = "casual"
	ReadingStandard ReadingLevel = "standard"
	ReadingExpert   ReadingLevel = "expert"
)

// Density is a declared layout-density preference.
type Density string

// Density preferences.
const (
	DensitySparse Density = "sparse"
	DensityDense  Density = "dense"
)

// Preferences are a viewer's declared layout preferences.
type Preferences struct {
	// TopicBoosts multiplies the value of items in a category.
	TopicBoosts map[string]float64 `json:"topic_boosts,omitempty"`

	// HiddenCategories near-hides whole categories. Hidden is not zero:
	// the content stays minimally discoverable.
	HiddenCategories []string `json:"hidden_categories,omitempty"`

	// Density scales every value down (sparse) or up (dense).
	Density Density `json:"density,omitempty"`
}

// History is a viewer's engagement history with this document.
type History struct {
	Seen        []string `json:"seen,omitempty"`        // block ids previously viewed
	Highlighted []string `json:"highlighted,omitempty"` // block ids previously highlighted
	VisitCount  int      `json:"visit_count,omitempty"`
}

// PersonalizationContext is the per-viewer input to PersonalizedSolve. It is
// consumed during the solve and never persisted by the engine.
type PersonalizationContext struct {
	ViewerID     string       `json:"viewer_id"`
	Device       DeviceClass  `json:"device,omitempty"`
	ReadingLevel ReadingLevel `json:"reading_level,omitempty"`
	Preferences  Preferences  `json:"preferences,omitempty"`
	History      History      `json:"history,omitempty"`
}

// =============================================================================
// Personalization Tunables
// =============================================================================

// PersonalizationTunables holds the multipliers the adapter applies. Zero
// maps/fields fall back to defaults via Normalize.
type PersonalizationTunables struct {
	// DeviceCapacity multiplies the raw capacity per device class.
	DeviceCapacity map[DeviceClass]float64

	// ReadingBudget overrides MaxCognitiveLoad per reading level.
	ReadingBudget map[ReadingLevel]float64

	// HiddenCategoryFactor is the multiplier for hidden categories.
	HiddenCategoryFactor float64

	// SparseFactor and DenseFactor scale every value by density preference.
	SparseFactor float64
	DenseFactor  float64

	// SeenFactor demotes already-seen content on repeat visits;
	// HighlightFactor promotes previously highlighted content.
	SeenFactor      float64
	HighlightFactor float64
}

// DefaultPersonalizationTunables returns the stock multipliers.
func DefaultPersonalizationTunables() PersonalizationTunables {
	return PersonalizationTunables{
		DeviceCapacity: map[DeviceClass]float64{
			DevicePhone:   0.4,
			DeviceTablet:  0.7,
			DeviceDesktop: 1.0,
			DeviceTV:      1.5,
		},
		ReadingBudget: map[ReadingLevel]float64{
			ReadingCasual:   0.4,
			ReadingStandard: 0.7,
			ReadingExpert:   1.0,
		},
		HiddenCategoryFactor: 0.05,
		SparseFactor:         0.8,
		DenseFactor:          1.2,
		SeenFactor:           0.6,
		HighlightFactor:      1.5,
	}
}

// Normalize fills zero-valued fields with defaults. Idempotent.
func (p *PersonalizationTunables) Normalize() {
	def := DefaultPersonalizationTunables()
	if p.DeviceCapacity == nil {
		p.DeviceCapacity = def.DeviceCapacity
	}
	if p.ReadingBudget == nil {
		p.ReadingBudget = def.ReadingBudget
	}
	if p.HiddenCategoryFactor == 0 {
		p.HiddenCategoryFactor = def.HiddenCategoryFactor
	}
	if p.SparseFactor == 0 {
		p.SparseFactor = def.SparseFactor
	}
	if p.DenseFactor == 0 {
		p.DenseFactor = def.DenseFactor
	}
	if p.SeenFactor == 0 {
		p.SeenFactor = def.SeenFactor
	}
	if p.HighlightFactor == 0 {
		p.HighlightFactor = def.HighlightFactor
	}
}

// =============================================================================
// Personalization Adapter
// =============================================================================

// AdjustConstraints derives per-viewer constraints: device class scales the
// raw capacity, and a declared reading level overrides the cognitive
// budget. Unknown device classes and reading levels leave the constraints
// untouched.
func (p PersonalizationTunables) AdjustConstraints(c ContainerConstraints, ctx PersonalizationContext) ContainerConstraints {
	if mult, ok := p.DeviceCapacity[ctx.Device]; ok {
		c.Capacity *= mult
	}
	if budget, ok := p.ReadingBudget[ctx.ReadingLevel]; ok {
		c.MaxCognitiveLoad = budget
	}
	return c
}

// ValueMultipliers computes the per-item multiplicative boosts a viewer's
// preferences and history imply. All boosts commute, so application order
// does not matter. The returned map is an overlay: stored composites are
// never mutated, which keeps plain Solve idempotent across personalized
// calls.
func (p PersonalizationTunables) ValueMultipliers(ctx PersonalizationContext, entries []*entry) map[string]float64 {
	mult := make(map[string]float64, len(entries))

	hidden := make(map[string]bool, len(ctx.Preferences.HiddenCategories))
	for _, cat := range ctx.Preferences.HiddenCategories {
		hidden[cat] = true
	}
	seen := make(map[string]bool, len(ctx.History.Seen))
	for _, id := range ctx.History.Seen {
		seen[id] = true
	}
	highlighted := make(map[string]bool, len(ctx.History.Highlighted))
	for _, id := range ctx.History.Highlighted {
		highlighted[id] = true
	}

	density := 1.0
	switch ctx.Preferences.Density {
	case DensitySparse:
		density = p.SparseFactor
	case DensityDense:
		density = p.DenseFactor
	}

	for _, e := range entries {
		m := density
		if hidden[e.item.Category] {
			m *= p.HiddenCategoryFactor
		}
		if boost, ok := ctx.Preferences.TopicBoosts[e.item.Category]; ok && boost != 0 {
			m *= boost
		}
		if seen[e.item.BlockID] && ctx.History.VisitCount > 1 {
			m *= p.SeenFactor
		}
		if highlighted[e.item.BlockID] {
			m *= p.HighlightFactor
		}
		mult[e.item.BlockID] = m
	}
	return mult
}
