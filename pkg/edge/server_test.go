package edge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/affectively-ai/foldline/pkg/cache"
	"github.com/affectively-ai/foldline/pkg/engine"
	"github.com/affectively-ai/foldline/pkg/manifest"
)

func testServer(t *testing.T, mutate func(*Config)) (*Server, *StaticSource) {
	t.Helper()
	src := NewStaticSource()
	src.SetValues("doc-1", "intro", engine.ValueSignals{
		EmotionalIntensity:  0.4,
		ContextualRelevance: 0.8,
	})
	src.SetContext("doc-1", "viewer-1", engine.PersonalizationContext{
		ViewerID: "viewer-1",
		Device:   engine.DevicePhone,
	})

	cfg := Config{Values: src, Contexts: src}
	if mutate != nil {
		mutate(&cfg)
	}
	return NewServer(cfg), src
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	s, _ := testServer(t, nil)
	rec := get(t, s, "/healthz")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestValuesRoute(t *testing.T) {
	s, _ := testServer(t, nil)

	rec := get(t, s, "/values?block=intro&doc=doc-1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var got engine.ValueSignals
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ContextualRelevance != 0.8 {
		t.Errorf("relevance = %v, want 0.8", got.ContextualRelevance)
	}
}

func TestValuesRouteErrors(t *testing.T) {
	s, _ := testServer(t, nil)

	tests := []struct {
		name string
		path string
		want int
	}{
		{"missing doc", "/values?block=intro", http.StatusBadRequest},
		{"missing block", "/values?doc=doc-1", http.StatusBadRequest},
		{"traversal doc", "/values?block=intro&doc=../x", http.StatusBadRequest},
		{"unknown block", "/values?block=nope&doc=doc-1", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, s, tt.path)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			var body struct {
				Code string `json:"code"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body.Code == "" {
				t.Errorf("error body should carry a code, got %s", rec.Body.String())
			}
		})
	}
}

func TestContextRoute(t *testing.T) {
	s, _ := testServer(t, nil)

	rec := get(t, s, "/context?doc=doc-1&viewer=viewer-1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got engine.PersonalizationContext
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Device != engine.DevicePhone {
		t.Errorf("device = %s, want phone", got.Device)
	}

	// Unknown viewers resolve to an empty context, not an error.
	rec = get(t, s, "/context?doc=doc-1&viewer=stranger")
	if rec.Code != http.StatusOK {
		t.Errorf("unknown viewer status = %d, want 200", rec.Code)
	}
}

func TestValuesCaching(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	s, src := testServer(t, func(c *Config) {
		c.Cache = fc
		c.CacheTTL = time.Hour
	})

	if rec := get(t, s, "/values?block=intro&doc=doc-1"); rec.Code != http.StatusOK {
		t.Fatalf("first fetch status = %d", rec.Code)
	}

	// Mutate the source; the cached response should still be served.
	src.SetValues("doc-1", "intro", engine.ValueSignals{ContextualRelevance: 0.1})
	rec := get(t, s, "/values?block=intro&doc=doc-1")
	var got engine.ValueSignals
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.ContextualRelevance != 0.8 {
		t.Errorf("relevance = %v, want cached 0.8", got.ContextualRelevance)
	}
}

func TestManifestRoute(t *testing.T) {
	store, err := manifest.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	m := manifest.Manifest{
		ID:         "run-1",
		DocumentID: "doc-1",
		Edge:       manifest.BuildEdgeResolution("doc-1", []string{"intro"}, true, 0),
	}
	if err := store.Put(ctx, m); err != nil {
		t.Fatal(err)
	}

	s, _ := testServer(t, func(c *Config) { c.Manifests = store })

	rec := get(t, s, "/manifest/doc-1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got manifest.Manifest
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.ID != "run-1" || len(got.Edge.Values) != 1 {
		t.Errorf("manifest = %+v", got)
	}

	if rec := get(t, s, "/manifest/absent"); rec.Code != http.StatusNotFound {
		t.Errorf("missing manifest status = %d, want 404", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	s, _ := testServer(t, func(c *Config) {
		c.RateLimitRPS = 1
		c.RateLimitBurst = 2
	})

	limited := false
	for i := 0; i < 5; i++ {
		rec := get(t, s, "/healthz")
		if rec.Code == http.StatusTooManyRequests {
			limited = true
			if rec.Header().Get("Retry-After") == "" {
				t.Error("429 should carry Retry-After")
			}
			break
		}
	}
	if !limited {
		t.Error("burst of requests should trip the limiter")
	}
}
