package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/affectively-ai/foldline/pkg/engine"
	"github.com/affectively-ai/foldline/pkg/errors"
)

const sampleFixture = `{
  "document_id": "doc-1",
  "items": [
    {
      "item": {"block_id": "headline", "structural": true},
      "values": {"emotional_intensity": 0.5, "contextual_relevance": 0.9, "freshness": 0.8, "reader_engagement": 0.4},
      "weights": {"full_height": 80, "compressed_height": 30}
    },
    {
      "item": {"block_id": "lede", "category": "news"},
      "values": {"emotional_intensity": 0.7, "contextual_relevance": 0.8, "freshness": 0.9, "reader_engagement": 0.6},
      "weights": {"full_height": 200, "compressed_height": 60, "cognitive_load": 0.5}
    },
    {
      "item": {"block_id": "sidebar", "category": "sports"},
      "values": {"emotional_intensity": 0.2, "contextual_relevance": 0.3, "freshness": 0.4, "reader_engagement": 0.3},
      "weights": {"full_height": 300, "compressed_height": 90, "cognitive_load": 0.7}
    }
  ],
  "constraints": {"capacity": 400, "min_visible_items": 1},
  "overrides": [
    {"block_id": "lede", "boost_factor": 1.5}
  ],
  "viewer": {
    "viewer_id": "viewer-1",
    "device": "desktop"
  }
}`

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFixture(t *testing.T) {
	f, err := LoadFixture(writeFixture(t, sampleFixture))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	if f.DocumentID != "doc-1" {
		t.Errorf("document id = %q", f.DocumentID)
	}
	if len(f.Items) != 3 {
		t.Errorf("items = %d, want 3", len(f.Items))
	}
	if f.Viewer == nil || f.Viewer.Device != engine.DeviceDesktop {
		t.Errorf("viewer = %+v", f.Viewer)
	}
	if len(f.Overrides) != 1 || f.Overrides[0].BoostFactor != 1.5 {
		t.Errorf("overrides = %+v", f.Overrides)
	}
}

func TestLoadFixtureErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		code    errors.Code
	}{
		{"bad json", `{not json`, errors.ErrCodeInvalidFixture},
		{"no items", `{"document_id": "doc-1", "items": []}`, errors.ErrCodeInvalidFixture},
		{"missing document id", `{"items": [{"item": {"block_id": "a"}}]}`, errors.ErrCodeInvalidInput},
		{
			"duplicate block",
			`{"document_id": "d", "items": [{"item": {"block_id": "a"}}, {"item": {"block_id": "a"}}]}`,
			errors.ErrCodeInvalidFixture,
		},
		{
			"negative weight",
			`{"document_id": "d", "items": [{"item": {"block_id": "a"}, "weights": {"full_height": -1}}]}`,
			errors.ErrCodeInvalidFixture,
		},
		{
			"negative capacity",
			`{"document_id": "d", "items": [{"item": {"block_id": "a"}}], "constraints": {"capacity": -10}}`,
			errors.ErrCodeInvalidConstraints,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFixture(writeFixture(t, tt.content))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("code = %v, want %v", errors.GetCode(err), tt.code)
			}
		})
	}

	if _, err := LoadFixture(filepath.Join(t.TempDir(), "absent.json")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file code = %v, want FILE_NOT_FOUND", errors.GetCode(err))
	}
}

func TestFixtureSolve(t *testing.T) {
	f, err := LoadFixture(writeFixture(t, sampleFixture))
	if err != nil {
		t.Fatal(err)
	}

	eng := f.BuildEngine(engine.Config{})
	if eng.ItemCount() != 3 {
		t.Fatalf("items registered = %d, want 3", eng.ItemCount())
	}

	res := f.Solve(eng)
	if !res.Personalized || res.ViewerID != "viewer-1" {
		t.Errorf("fixture viewer should drive a personalized solve: %+v", res)
	}
	if d := res.Decision("headline"); d == nil || !d.Structural || !d.Included {
		t.Errorf("structural headline = %+v", d)
	}

	// Without the viewer a plain solve runs.
	f.Viewer = nil
	res = f.Solve(eng)
	if res.Personalized {
		t.Error("solve without viewer should not be personalized")
	}
}
