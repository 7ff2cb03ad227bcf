package cli

import (
	"encoding/json"
	"os"

	"github.com/affectively-ai/foldline/pkg/engine"
	"github.com/affectively-ai/foldline/pkg/errors"
)

// Fixture is the JSON document description the CLI solves from: items with
// their raw signals, container constraints, optional overrides, and an
// optional viewer context for personalized solves.
type Fixture struct {
	DocumentID  string                         `json:"document_id"`
	Items       []FixtureItem                  `json:"items"`
	Constraints engine.ContainerConstraints    `json:"constraints"`
	Overrides   []engine.Override              `json:"overrides,omitempty"`
	Viewer      *engine.PersonalizationContext `json:"viewer,omitempty"`
}

// FixtureItem bundles one item with its raw signals.
type FixtureItem struct {
	Item    engine.ContentItem   `json:"item"`
	Values  engine.ValueSignals  `json:"values"`
	Weights engine.WeightSignals `json:"weights"`
}

// LoadFixture reads and validates a fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read fixture %s", path)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFixture, err, "parse fixture %s", path)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks the fixture's required fields.
func (f *Fixture) Validate() error {
	if err := errors.ValidateDocumentID(f.DocumentID); err != nil {
		return err
	}
	if len(f.Items) == 0 {
		return errors.New(errors.ErrCodeInvalidFixture, "fixture has no items")
	}
	seen := make(map[string]bool, len(f.Items))
	for _, it := range f.Items {
		if err := errors.ValidateBlockID(it.Item.BlockID); err != nil {
			return err
		}
		if seen[it.Item.BlockID] {
			return errors.New(errors.ErrCodeInvalidFixture, "duplicate block id %s", it.Item.BlockID)
		}
		seen[it.Item.BlockID] = true
		if it.Weights.FullHeight < 0 || it.Weights.CompressedHeight < 0 {
			return errors.New(errors.ErrCodeInvalidFixture, "block %s has negative weight signals", it.Item.BlockID)
		}
	}
	if f.Constraints.Capacity < 0 {
		return errors.New(errors.ErrCodeInvalidConstraints, "capacity must be non-negative")
	}
	if f.Constraints.MaxCognitiveLoad < 0 {
		return errors.New(errors.ErrCodeInvalidConstraints, "cognitive-load ceiling must be non-negative")
	}
	if f.Constraints.MinVisibleItems < 0 {
		return errors.New(errors.ErrCodeInvalidConstraints, "minimum visible items must be non-negative")
	}
	return nil
}

// BuildEngine registers the fixture's items and overrides into a fresh
// engine.
func (f *Fixture) BuildEngine(cfg engine.Config) *engine.Engine {
	cfg.DocumentID = f.DocumentID
	eng := engine.New(cfg)
	f.Load(eng)
	return eng
}

// Load registers the fixture's items and overrides on an existing engine,
// typically one owned by a session registry.
func (f *Fixture) Load(eng *engine.Engine) {
	for _, it := range f.Items {
		eng.RegisterItem(it.Item, it.Values, it.Weights)
	}
	if len(f.Overrides) > 0 {
		eng.ApplyOverrides(f.Overrides)
	}
}

// Solve runs a plain or personalized solve depending on whether the fixture
// carries a viewer context.
func (f *Fixture) Solve(eng *engine.Engine) *engine.LayoutResult {
	if f.Viewer != nil {
		return eng.PersonalizedSolve(f.Constraints, *f.Viewer)
	}
	return eng.Solve(f.Constraints)
}
