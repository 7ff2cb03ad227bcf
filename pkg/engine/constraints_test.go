package engine

import (
	"math"
	"testing"
)

func TestModeForFraction(t *testing.T) {
	tests := []struct {
		fraction float64
		want     RenderMode
	}{
		{1, ModeComfortable},
		{0.95, ModeComfortable},
		{0.9, ModeFull},
		{0.8, ModeFull},
		{0.6, ModeCompact},
		{0.5, ModeCompact},
		{0.3, ModeCompressed},
		{0.2, ModeCompressed},
		{0.1, ModeCollapsed},
		{0.001, ModeCollapsed},
		{0, ModeHidden},
	}

	for _, tt := range tests {
		if got := modeForFraction(tt.fraction); got != tt.want {
			t.Errorf("modeForFraction(%f) = %s, want %s", tt.fraction, got, tt.want)
		}
	}
}

func TestStructuralDecisionThresholds(t *testing.T) {
	tun := DefaultTunables()
	e := &entry{
		item:    ContentItem{BlockID: "h", Structural: true},
		weights: WeightSignals{FullHeight: 100, CompressedHeight: 40},
	}
	e.fullWeight, e.minWeight = composeWeight(e.weights, tun.MinWeightRatio)

	tests := []struct {
		value      float64
		wantMode   RenderMode
		wantWeight float64
	}{
		{0.9, ModeComfortable, 110}, // 100 * 1.1
		{0.7, ModeFull, 100},
		{0.4, ModeCompressed, 40},
		{0.1, ModeCollapsed, 12}, // 40 * 0.3
	}

	for _, tt := range tests {
		d := structuralDecision(e, tt.value, tun)
		if d.Mode != tt.wantMode {
			t.Errorf("value %f: mode = %s, want %s", tt.value, d.Mode, tt.wantMode)
		}
		if math.Abs(d.AllocatedWeight-tt.wantWeight) > 1e-9 {
			t.Errorf("value %f: weight = %f, want %f", tt.value, d.AllocatedWeight, tt.wantWeight)
		}
		if !d.Included {
			t.Errorf("value %f: structural item must be included", tt.value)
		}
	}
}

func TestStructuralReservationFloor(t *testing.T) {
	e := &entry{weights: WeightSignals{FullHeight: 100, CompressedHeight: 40}, minWeight: 12}

	// A collapsed structural item occupies its min weight but still
	// reserves its compressed height off the allocator's budget.
	d := LayoutDecision{AllocatedWeight: 12}
	if got := structuralReservation(d, e); got != 40 {
		t.Errorf("reservation = %f, want compressed-height floor 40", got)
	}

	d = LayoutDecision{AllocatedWeight: 110}
	if got := structuralReservation(d, e); got != 110 {
		t.Errorf("reservation = %f, want 110", got)
	}
}

func TestEnforceMinVisiblePromotes(t *testing.T) {
	entries := map[string]*entry{
		"a": {item: ContentItem{BlockID: "a"}, weights: WeightSignals{CompressedHeight: 40}, minWeight: 12, position: 0},
		"b": {item: ContentItem{BlockID: "b"}, weights: WeightSignals{CompressedHeight: 40}, minWeight: 12, position: 1},
		"c": {item: ContentItem{BlockID: "c"}, weights: WeightSignals{CompressedHeight: 40}, minWeight: 12, position: 2},
	}
	vals := map[string]float64{"a": 0.9, "b": 0.2, "c": 0.6}
	draft := []LayoutDecision{
		{BlockID: "a", Mode: ModeComfortable, Fraction: 1, Included: true},
		{BlockID: "b", Mode: ModeHidden},
		{BlockID: "c", Mode: ModeHidden},
	}

	enforceMinVisible(draft, entries, vals, 2)

	// c has the higher value of the two hidden items, so it gets promoted.
	if draft[2].Mode != ModeCollapsed || !draft[2].Included {
		t.Errorf("c should be promoted to collapsed, got %s included=%v", draft[2].Mode, draft[2].Included)
	}
	if draft[2].AllocatedWeight != 12 {
		t.Errorf("promoted item weight = %f, want min weight 12", draft[2].AllocatedWeight)
	}
	if draft[1].Included {
		t.Error("b should stay hidden once the floor is met")
	}
}

func TestEnforceMinVisibleDegradesGracefully(t *testing.T) {
	entries := map[string]*entry{
		"a": {item: ContentItem{BlockID: "a"}, minWeight: 12, position: 0},
	}
	vals := map[string]float64{"a": 0.5}
	draft := []LayoutDecision{{BlockID: "a", Mode: ModeHidden}}

	// Floor exceeds the item count: include as many as exist, no error.
	enforceMinVisible(draft, entries, vals, 5)

	if !draft[0].Included {
		t.Error("the only item should be promoted")
	}
}

func TestEnforceLoadCeiling(t *testing.T) {
	tun := DefaultTunables()
	entries := make(map[string]*entry)
	vals := make(map[string]float64)
	var draft []LayoutDecision
	ids := []string{"a", "b", "c", "d", "e"}
	for i, id := range ids {
		entries[id] = &entry{
			item:    ContentItem{BlockID: id},
			weights:  WeightSignals{FullHeight: 100, CompressedHeight: 40, CognitiveLoad: 0.8},
			position: i,
		}
		vals[id] = float64(i+1) / 10
		draft = append(draft, LayoutDecision{
			BlockID: id, Mode: ModeComfortable, Fraction: 1,
			AllocatedWeight: 100, Included: true,
		})
	}

	before := totalCognitiveLoad(draft, entries) // 5 * 0.8 = 4.0
	after := enforceLoadCeiling(draft, entries, vals, ContainerConstraints{MaxCognitiveLoad: 0.5}, tun)

	if after > before {
		t.Errorf("load must be non-increasing: before %f, after %f", before, after)
	}
	compressed := 0
	for _, d := range draft {
		if d.Mode == ModeCompressed {
			compressed++
			if d.AllocatedWeight != 40 {
				t.Errorf("compressed item weight = %f, want 40", d.AllocatedWeight)
			}
		}
	}
	if compressed == 0 {
		t.Error("at least one item should be downgraded to compressed")
	}
	// Ascending value order: the lowest-value item compresses first.
	if draft[0].Mode != ModeCompressed {
		t.Error("lowest-value item should be compressed first")
	}
}

func TestEnforceLoadCeilingNoCeiling(t *testing.T) {
	entries := map[string]*entry{
		"a": {item: ContentItem{BlockID: "a"}, weights: WeightSignals{CognitiveLoad: 0.9}},
	}
	draft := []LayoutDecision{{BlockID: "a", Mode: ModeFull, Fraction: 1, Included: true}}

	got := enforceLoadCeiling(draft, entries, map[string]float64{"a": 1}, ContainerConstraints{}, DefaultTunables())

	if got != 0.9 {
		t.Errorf("load = %f, want untouched 0.9", got)
	}
	if draft[0].Mode != ModeFull {
		t.Error("no ceiling must not compress anything")
	}
}

func TestApplyForcedModes(t *testing.T) {
	entries := map[string]*entry{
		"a": {item: ContentItem{BlockID: "a"}, forcedMode: ModeCollapsed},
		"b": {item: ContentItem{BlockID: "b"}},
	}
	draft := []LayoutDecision{
		{BlockID: "a", Mode: ModeFull, Included: true},
		{BlockID: "b", Mode: ModeFull, Included: true},
	}

	applyForcedModes(draft, entries)

	if draft[0].Mode != ModeCollapsed {
		t.Errorf("forced mode not applied: %s", draft[0].Mode)
	}
	if draft[1].Mode != ModeFull {
		t.Error("unforced decision changed")
	}
}

func TestHasLoadCeiling(t *testing.T) {
	tests := []struct {
		maxLoad float64
		want    bool
	}{
		{0, false},
		{-1, false},
		{0.5, true},
	}

	for _, tt := range tests {
		c := ContainerConstraints{MaxCognitiveLoad: tt.maxLoad}
		if got := c.HasLoadCeiling(); got != tt.want {
			t.Errorf("HasLoadCeiling() with %f = %v, want %v", tt.maxLoad, got, tt.want)
		}
	}
}
