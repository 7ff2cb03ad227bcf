package engine

import "sort"

// =============================================================================
// Fractional Allocator
// =============================================================================

// candidate is one (id, value, weight) triple handed to the allocator.
// pos is the registration position, used to break ratio ties
// deterministically.
type candidate struct {
	id     string
	value  float64
	weight float64
	pos    int
}

// allocate solves the continuous relaxation of knapsack: given capacity C
// and candidates, it returns an inclusion fraction in [0,1] per id
// maximizing total value subject to the capacity bound.
//
// The fractional model is the correct one here, not an approximation: an
// item rendered at 73% of its full size is a legitimate output (a
// compressed render mode), unlike physical knapsack items which cannot be
// split. Greedy by value/weight ratio is provably optimal for the
// fractional relaxation, so there is exactly one algorithm regardless of
// item count.
//
// Weights are floored at 1 in the ratio so zero-weight items never divide
// by zero; they sort first and cost nothing against the budget they claim.
func allocate(capacity float64, cands []candidate) map[string]float64 {
	fractions := make(map[string]float64, len(cands))
	if capacity < 0 {
		capacity = 0
	}

	sorted := make([]candidate, len(cands))
	copy(sorted, cands)
	sort.Slice(sorted, func(i, j int) bool {
		ri := sorted[i].value / max1(sorted[i].weight)
		rj := sorted[j].value / max1(sorted[j].weight)
		if ri != rj {
			return ri > rj
		}
		return sorted[i].pos < sorted[j].pos
	})

	remaining := capacity
	for _, c := range sorted {
		switch {
		case c.weight <= remaining:
			fractions[c.id] = 1
			remaining -= c.weight
		case remaining > 0:
			fractions[c.id] = remaining / max1(c.weight)
			remaining = 0
		default:
			fractions[c.id] = 0
		}
	}
	return fractions
}

// allocatedWeight converts an inclusion fraction to the weight an item
// actually occupies. Compression floors at the compressed height rather
// than zero; a fully excluded item (f=0) is the one case where the floor
// does not apply because nothing is rendered at all.
func allocatedWeight(f float64, weights WeightSignals) float64 {
	if f <= 0 {
		return 0
	}
	if f > 1 {
		f = 1
	}
	return weights.CompressedHeight + (weights.FullHeight-weights.CompressedHeight)*f
}

// max1 floors a denominator at 1.
func max1(v float64) float64 {
	if v < 1 {
		return 1
	}
	return v
}
