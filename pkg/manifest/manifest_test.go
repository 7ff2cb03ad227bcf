package manifest

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/affectively-ai/foldline/pkg/errors"
)

func sampleManifest(documentID string) Manifest {
	return Manifest{
		ID:          "run-1",
		DocumentID:  documentID,
		GeneratedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Decisions: []Decision{
			{BlockID: "intro", Mode: "full", AllocatedWeight: 120, Position: 0, Included: true},
			{BlockID: "body", Mode: "compressed", AllocatedWeight: 60, Position: 1, Included: true},
		},
		Edge: BuildEdgeResolution(documentID, []string{"intro", "body"}, true, 0),
	}
}

func TestValuesURL(t *testing.T) {
	got := ValuesURL("intro", "doc-1")
	want := "{base}/values?block=intro&doc=doc-1"
	if got != want {
		t.Errorf("ValuesURL = %q, want %q", got, want)
	}
}

func TestContextURL(t *testing.T) {
	got := ContextURL("doc-1")
	want := "{base}/context?doc=doc-1"
	if got != want {
		t.Errorf("ContextURL = %q, want %q", got, want)
	}
}

func TestBuildEdgeResolution(t *testing.T) {
	er := BuildEdgeResolution("doc-1", []string{"a", "b"}, true, 0)
	if er.CacheTTLSeconds != DefaultCacheTTLSeconds {
		t.Errorf("ttl = %d, want default %d", er.CacheTTLSeconds, DefaultCacheTTLSeconds)
	}
	if len(er.Values) != 2 {
		t.Fatalf("values = %d, want one per block", len(er.Values))
	}
	if er.Context == "" {
		t.Error("context template missing")
	}

	disabled := BuildEdgeResolution("doc-1", []string{"a"}, false, 60)
	if disabled.Enabled || len(disabled.Values) != 0 || disabled.Context != "" {
		t.Errorf("disabled edge resolution should carry no templates: %+v", disabled)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	m := sampleManifest("doc-1")
	data, err := Marshal(m)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !reflect.DeepEqual(m, got) {
		t.Errorf("round trip mismatch:\nwant %+v\ngot  %+v", m, got)
	}
}

func TestUnmarshalRejectsMissingDocument(t *testing.T) {
	if _, err := Unmarshal([]byte(`{"id":"x"}`)); err == nil {
		t.Error("manifest without document id should be rejected")
	}
	if _, err := Unmarshal([]byte(`{not json`)); err == nil {
		t.Error("invalid JSON should be rejected")
	}
}

func TestFileReadWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.json")
	m := sampleManifest("doc-1")

	if err := WriteFile(m, path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !reflect.DeepEqual(m, got) {
		t.Error("file round trip mismatch")
	}

	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("missing file should error")
	}
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	defer store.Close(ctx)

	// Missing document
	_, err = store.Get(ctx, "doc-1")
	if !errors.Is(err, errors.ErrCodeDocumentNotFound) {
		t.Errorf("Get missing = %v, want DOCUMENT_NOT_FOUND", err)
	}

	// Put then Get
	m := sampleManifest("doc-1")
	if err := store.Put(ctx, m); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := store.Get(ctx, "doc-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !reflect.DeepEqual(m, got) {
		t.Error("stored manifest mismatch")
	}

	// Put replaces
	m2 := sampleManifest("doc-1")
	m2.ID = "run-2"
	if err := store.Put(ctx, m2); err != nil {
		t.Fatalf("Put replace: %v", err)
	}
	got, _ = store.Get(ctx, "doc-1")
	if got.ID != "run-2" {
		t.Errorf("replaced manifest id = %q, want run-2", got.ID)
	}

	// List
	if err := store.Put(ctx, sampleManifest("doc-2")); err != nil {
		t.Fatalf("Put doc-2: %v", err)
	}
	ids, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if !reflect.DeepEqual(ids, []string{"doc-1", "doc-2"}) {
		t.Errorf("List = %v, want [doc-1 doc-2]", ids)
	}

	// Delete
	if err := store.Delete(ctx, "doc-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, "doc-1"); !errors.Is(err, errors.ErrCodeDocumentNotFound) {
		t.Error("deleted document should be gone")
	}
	if err := store.Delete(ctx, "doc-1"); err != nil {
		t.Errorf("double delete should be a no-op, got %v", err)
	}

	// Validation
	if err := store.Put(ctx, Manifest{DocumentID: "../escape"}); err == nil {
		t.Error("traversal document id should be rejected")
	}
}
