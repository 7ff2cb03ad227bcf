package engine

import "time"

// =============================================================================
// Layout Decisions
// =============================================================================

// LayoutDecision is the engine's output for one item. Decisions are
// recomputed wholesale on every solve; there is no incremental diffing.
type LayoutDecision struct {
	BlockID string     `json:"block_id"`
	Mode    RenderMode `json:"mode"`

	// AllocatedWeight is the space the item occupies under this decision.
	AllocatedWeight float64 `json:"allocated_weight"`

	// Fraction is the solver's inclusion fraction. Structural items carry 1.
	Fraction float64 `json:"fraction"`

	// Position is the item's stable registration order.
	Position int `json:"position"`

	// Efficiency is the value/weight ratio the solver ranked by.
	Efficiency float64 `json:"efficiency"`

	Included   bool `json:"included"`
	Structural bool `json:"structural,omitempty"`
}

// LayoutResult is the complete output of one solve.
type LayoutResult struct {
	// Decisions in stable position order, one per registered item.
	Decisions []LayoutDecision `json:"decisions"`

	// TotalValue is the achieved objective: sum of composite value times
	// inclusion fraction.
	TotalValue float64 `json:"total_value"`

	// Utilization is allocated weight over capacity. The minimum-visible
	// pass can push this above 1.0; that overflow is a deliberate trade-off
	// (a content floor beats a hard ceiling) and is surfaced rather than
	// clamped.
	Utilization float64 `json:"utilization"`

	// CognitiveLoad is the summed load of the rendered set after
	// enforcement.
	CognitiveLoad float64 `json:"cognitive_load"`

	// Overflow lists block ids that received zero allocation.
	Overflow []string `json:"overflow,omitempty"`

	// Personalized is true for PersonalizedSolve results, with the viewer
	// id echoed back.
	Personalized bool   `json:"personalized,omitempty"`
	ViewerID     string `json:"viewer_id,omitempty"`

	Meta SolveMeta `json:"meta"`
}

// SolveMeta carries solver metadata.
type SolveMeta struct {
	RunID     string        `json:"run_id"`
	ItemCount int           `json:"item_count"`
	Elapsed   time.Duration `json:"elapsed_ns"`
	SolvedAt  time.Time     `json:"solved_at"`
}

// Decision returns the decision for a block id, or nil.
func (r *LayoutResult) Decision(blockID string) *LayoutDecision {
	for i := range r.Decisions {
		if r.Decisions[i].BlockID == blockID {
			return &r.Decisions[i]
		}
	}
	return nil
}

// IncludedCount returns how many decisions are included.
func (r *LayoutResult) IncludedCount() int {
	n := 0
	for _, d := range r.Decisions {
		if d.Included {
			n++
		}
	}
	return n
}
