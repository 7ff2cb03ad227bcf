package cache

// ScopedKeyer wraps a Keyer with a prefix for multi-tenant isolation.
// Different publishers sharing one edge deployment need separate cache
// namespaces.
//
// Example usage:
//
//	// Publisher-specific keys
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "pub:acme:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ValuesKey generates a prefixed key for block-scoped value signals.
func (k *ScopedKeyer) ValuesKey(documentID, blockID string) string {
	return k.prefix + k.inner.ValuesKey(documentID, blockID)
}

// ContextKey generates a prefixed key for personalization context.
func (k *ScopedKeyer) ContextKey(documentID, viewerID string) string {
	return k.prefix + k.inner.ContextKey(documentID, viewerID)
}

// ManifestKey generates a prefixed key for a document manifest.
func (k *ScopedKeyer) ManifestKey(documentID string) string {
	return k.prefix + k.inner.ManifestKey(documentID)
}
