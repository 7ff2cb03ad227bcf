package engine

import "sort"

// =============================================================================
// Render-Mode Mapping
// =============================================================================

// Fraction thresholds for the allocator-controlled mode mapping.
const (
	fractionComfortable = 0.95
	fractionFull        = 0.8
	fractionCompact     = 0.5
	fractionCompressed  = 0.2
)

// Composite-value thresholds for structural items, which never pass through
// the allocator and pick their mode from value alone.
const (
	structuralComfortable = 0.8
	structuralFull        = 0.5
	structuralCompressed  = 0.3
)

// modeForFraction maps an inclusion fraction to a render mode.
func modeForFraction(f float64) RenderMode {
	switch {
	case f >= fractionComfortable:
		return ModeComfortable
	case f >= fractionFull:
		return ModeFull
	case f >= fractionCompact:
		return ModeCompact
	case f >= fractionCompressed:
		return ModeCompressed
	case f > 0:
		return ModeCollapsed
	default:
		return ModeHidden
	}
}

// =============================================================================
// Pass 1: Structural Reservation
// =============================================================================

// structuralDecision builds the decision for a structural item. Structural
// items always render; their mode follows the (possibly personalized)
// composite value, and each reserves at least its compressed height off the
// capacity handed to the allocator.
func structuralDecision(e *entry, value float64, tun Tunables) LayoutDecision {
	d := LayoutDecision{
		BlockID:    e.item.BlockID,
		Fraction:   1,
		Position:   e.position,
		Efficiency: value / max1(e.fullWeight),
		Included:   true,
		Structural: true,
	}
	switch {
	case value > structuralComfortable:
		d.Mode = ModeComfortable
		d.AllocatedWeight = e.weights.FullHeight * tun.ComfortableScale
	case value > structuralFull:
		d.Mode = ModeFull
		d.AllocatedWeight = e.weights.FullHeight
	case value > structuralCompressed:
		d.Mode = ModeCompressed
		d.AllocatedWeight = e.weights.CompressedHeight
	default:
		d.Mode = ModeCollapsed
		d.AllocatedWeight = e.minWeight
	}
	return d
}

// structuralReservation is the capacity a structural decision takes off the
// budget before the allocator runs. Never less than the compressed height.
func structuralReservation(d LayoutDecision, e *entry) float64 {
	if d.AllocatedWeight < e.weights.CompressedHeight {
		return e.weights.CompressedHeight
	}
	return d.AllocatedWeight
}

// =============================================================================
// Pass 2: Minimum Visible Items
// =============================================================================

// enforceMinVisible promotes the highest-composite-value hidden optional
// items to collapsed until at least minVisible optional items are included,
// or no hidden items remain. Promotion can push total allocated weight past
// nominal capacity; the overflow is accepted (and surfaced via utilization)
// because a content floor beats a hard capacity ceiling.
func enforceMinVisible(draft []LayoutDecision, entries map[string]*entry, vals map[string]float64, minVisible int) {
	if minVisible <= 0 {
		return
	}

	visible := 0
	var hidden []int // indexes into draft
	for i, d := range draft {
		if d.Structural {
			continue
		}
		if d.Included {
			visible++
		} else {
			hidden = append(hidden, i)
		}
	}
	if visible >= minVisible {
		return
	}

	sort.Slice(hidden, func(a, b int) bool {
		ida, idb := draft[hidden[a]].BlockID, draft[hidden[b]].BlockID
		if vals[ida] != vals[idb] {
			return vals[ida] > vals[idb]
		}
		return entries[ida].position < entries[idb].position
	})

	for _, i := range hidden {
		if visible >= minVisible {
			break
		}
		e := entries[draft[i].BlockID]
		draft[i].Mode = ModeCollapsed
		draft[i].AllocatedWeight = e.minWeight
		draft[i].Included = true
		visible++
	}
}

// =============================================================================
// Pass 3: Cognitive-Load Ceiling
// =============================================================================

// enforceLoadCeiling walks non-structural included items by ascending
// composite value, forcing each to compressed mode and crediting an
// estimated load saving until the running total fits under the ceiling.
// This is a greedy heuristic, not an exact optimizer: progress toward the
// ceiling is monotonic but the number of compressions is not guaranteed
// minimal. It returns the (estimated) remaining cognitive load.
func enforceLoadCeiling(draft []LayoutDecision, entries map[string]*entry, vals map[string]float64, c ContainerConstraints, tun Tunables) float64 {
	total := totalCognitiveLoad(draft, entries)
	if !c.HasLoadCeiling() || total <= c.MaxCognitiveLoad {
		return total
	}

	var idx []int
	for i, d := range draft {
		if !d.Structural && d.Included && d.Mode != ModeCompressed {
			idx = append(idx, i)
		}
	}
	sort.Slice(idx, func(a, b int) bool {
		ida, idb := draft[idx[a]].BlockID, draft[idx[b]].BlockID
		if vals[ida] != vals[idb] {
			return vals[ida] < vals[idb]
		}
		return entries[ida].position < entries[idb].position
	})

	for _, i := range idx {
		if total <= c.MaxCognitiveLoad {
			break
		}
		e := entries[draft[i].BlockID]
		draft[i].Mode = ModeCompressed
		if draft[i].AllocatedWeight > e.weights.CompressedHeight {
			draft[i].AllocatedWeight = e.weights.CompressedHeight
		}
		total -= e.weights.CognitiveLoad * tun.LoadSavingRatio
	}
	if total < 0 {
		total = 0
	}
	return total
}

// totalCognitiveLoad sums each included item's cognitive load scaled by its
// inclusion fraction.
func totalCognitiveLoad(draft []LayoutDecision, entries map[string]*entry) float64 {
	var total float64
	for _, d := range draft {
		if !d.Included {
			continue
		}
		e := entries[d.BlockID]
		total += e.weights.CognitiveLoad * d.Fraction
	}
	return total
}

// =============================================================================
// Final Pass: Forced Modes
// =============================================================================

// applyForcedModes overwrites render modes for items carrying a forced-mode
// override. It runs after all constraint passes, so a forced mode can
// override even enforcement output; this is the only per-item escape hatch
// from the solver. Draft decisions are left untouched apart from the mode.
func applyForcedModes(draft []LayoutDecision, entries map[string]*entry) {
	for i := range draft {
		if e := entries[draft[i].BlockID]; e != nil && e.forcedMode != "" {
			draft[i].Mode = e.forcedMode
		}
	}
}
