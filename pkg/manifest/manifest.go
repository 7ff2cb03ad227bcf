// Package manifest defines the serializable layout-manifest format.
//
// A manifest is a snapshot of one document's last decision set plus the
// edge-resolution contract: URL templates an edge service expands to fetch
// per-viewer value overrides and personalization context. The template
// shape (one block-scoped values entry per item, plus exactly one context
// entry) is the engine's wire-level boundary with the personalization edge
// and must be reproduced verbatim for interoperability. The {base} token is
// owned by the rendering layer, not by this package.
//
// Manifests carry both JSON tags (wire format, files) and BSON tags
// (document-store snapshots, see Store implementations).
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// DefaultCacheTTLSeconds is the declared cache lifetime for edge-resolved
// values when the engine does not configure one.
const DefaultCacheTTLSeconds = 300

// Manifest is a serializable snapshot of a document's layout state.
type Manifest struct {
	ID          string    `json:"id" bson:"id"`
	DocumentID  string    `json:"document_id" bson:"document_id"`
	GeneratedAt time.Time `json:"generated_at" bson:"generated_at"`

	// Decisions is the last decision set, in stable position order. Empty
	// if the document has never been solved.
	Decisions []Decision `json:"decisions,omitempty" bson:"decisions,omitempty"`

	Edge EdgeResolution `json:"edge" bson:"edge"`
}

// Decision is the snapshot form of one layout decision.
type Decision struct {
	BlockID         string  `json:"block_id" bson:"block_id"`
	Mode            string  `json:"mode" bson:"mode"`
	AllocatedWeight float64 `json:"allocated_weight" bson:"allocated_weight"`
	Position        int     `json:"position" bson:"position"`
	Efficiency      float64 `json:"efficiency" bson:"efficiency"`
	Included        bool    `json:"included" bson:"included"`
}

// EdgeResolution declares how an edge service resolves per-viewer values.
type EdgeResolution struct {
	// Enabled gates edge-side resolution entirely.
	Enabled bool `json:"enabled" bson:"enabled"`

	// CacheTTLSeconds is how long resolved values may be cached.
	CacheTTLSeconds int `json:"cache_ttl_seconds" bson:"cache_ttl_seconds"`

	// Values holds one block-scoped resolution template per item.
	Values []ValueTemplate `json:"values,omitempty" bson:"values,omitempty"`

	// Context is the single context-resolution template for the document.
	Context string `json:"context,omitempty" bson:"context,omitempty"`
}

// ValueTemplate pairs a block id with its value-resolution URL template.
type ValueTemplate struct {
	BlockID string `json:"block_id" bson:"block_id"`
	URL     string `json:"url" bson:"url"`
}

// =============================================================================
// Template Contract
// =============================================================================

// ValuesURL returns the value-resolution template for one block. The {base}
// token is left for the rendering layer to expand.
func ValuesURL(blockID, documentID string) string {
	return fmt.Sprintf("{base}/values?block=%s&doc=%s", blockID, documentID)
}

// ContextURL returns the context-resolution template for a document.
func ContextURL(documentID string) string {
	return fmt.Sprintf("{base}/context?doc=%s", documentID)
}

// BuildEdgeResolution assembles the edge block for a document and its block
// ids. A non-positive ttl falls back to DefaultCacheTTLSeconds.
func BuildEdgeResolution(documentID string, blockIDs []string, enabled bool, ttlSeconds int) EdgeResolution {
	if ttlSeconds <= 0 {
		ttlSeconds = DefaultCacheTTLSeconds
	}
	er := EdgeResolution{
		Enabled:         enabled,
		CacheTTLSeconds: ttlSeconds,
	}
	if !enabled {
		return er
	}
	er.Values = make([]ValueTemplate, 0, len(blockIDs))
	for _, id := range blockIDs {
		er.Values = append(er.Values, ValueTemplate{
			BlockID: id,
			URL:     ValuesURL(id, documentID),
		})
	}
	er.Context = ContextURL(documentID)
	return er
}

// =============================================================================
// Serialization
// =============================================================================

// Marshal serializes a manifest to pretty-printed JSON.
func Marshal(m Manifest) ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// Unmarshal deserializes JSON bytes into a manifest and validates required
// fields.
func Unmarshal(data []byte) (Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("unmarshal manifest: %w", err)
	}
	if m.DocumentID == "" {
		return Manifest{}, fmt.Errorf("manifest must contain a document id")
	}
	return m, nil
}

// WriteFile writes a manifest to a JSON file.
func WriteFile(m Manifest, path string) error {
	data, err := Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadFile reads a manifest from a JSON file.
func ReadFile(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read %s: %w", path, err)
	}
	return Unmarshal(data)
}
