// Package cache provides pluggable caching for edge-resolved values,
// personalization context, and layout manifests.
//
// Three backends cover the deployment spectrum:
//   - null: caching disabled (testing, single solves)
//   - file: file-based cache for CLI usage
//   - redis: Redis-backed cache for edge-server deployments
//
// Keys are generated through the Keyer interface so multi-tenant
// deployments can namespace them (see ScopedKeyer).
package cache

import (
	"context"
	"time"
)

// Cache is the interface all cache backends implement.
type Cache interface {
	// Get retrieves a value. The second return reports hit or miss; a miss
	// is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with a TTL. A non-positive TTL means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer generates cache keys for the domain objects the edge serves.
type Keyer interface {
	// ValuesKey keys one block's resolved value signals.
	ValuesKey(documentID, blockID string) string

	// ContextKey keys a viewer's personalization context for a document.
	ContextKey(documentID, viewerID string) string

	// ManifestKey keys a document's generated manifest.
	ManifestKey(documentID string) string
}

// DefaultKeyer is the stock key scheme: a typed prefix plus a hash of the
// identifying parts.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the stock keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// ValuesKey generates a key for block-scoped value signals.
func (k *DefaultKeyer) ValuesKey(documentID, blockID string) string {
	return hashKey("values", documentID, blockID)
}

// ContextKey generates a key for viewer personalization context.
func (k *DefaultKeyer) ContextKey(documentID, viewerID string) string {
	return hashKey("context", documentID, viewerID)
}

// ManifestKey generates a key for a document manifest.
func (k *DefaultKeyer) ManifestKey(documentID string) string {
	return hashKey("manifest", documentID)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
