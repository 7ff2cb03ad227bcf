package edge

import (
	"context"
	"sync"

	"github.com/affectively-ai/foldline/pkg/engine"
	"github.com/affectively-ai/foldline/pkg/errors"
)

// ValueSource resolves per-block value signals for a document. The edge
// server consults it on cache misses.
type ValueSource interface {
	// Values returns the current value signals for one block.
	Values(ctx context.Context, documentID, blockID string) (engine.ValueSignals, error)
}

// ContextSource resolves a viewer's personalization context for a document.
type ContextSource interface {
	// Context returns the personalization context for one viewer.
	Context(ctx context.Context, documentID, viewerID string) (engine.PersonalizationContext, error)
}

// StaticSource serves values and contexts from in-memory maps. Used in
// tests and in standalone deployments where signals arrive through the API
// rather than an upstream producer.
type StaticSource struct {
	mu       sync.RWMutex
	values   map[string]map[string]engine.ValueSignals        // documentID -> blockID -> signals
	contexts map[string]map[string]engine.PersonalizationContext // documentID -> viewerID -> context
}

// NewStaticSource creates an empty static source.
func NewStaticSource() *StaticSource {
	return &StaticSource{
		values:   make(map[string]map[string]engine.ValueSignals),
		contexts: make(map[string]map[string]engine.PersonalizationContext),
	}
}

// SetValues stores the signals for one block.
func (s *StaticSource) SetValues(documentID, blockID string, v engine.ValueSignals) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.values[documentID]
	if !ok {
		doc = make(map[string]engine.ValueSignals)
		s.values[documentID] = doc
	}
	doc[blockID] = v
}

// SetContext stores the personalization context for one viewer.
func (s *StaticSource) SetContext(documentID, viewerID string, ctx engine.PersonalizationContext) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.contexts[documentID]
	if !ok {
		doc = make(map[string]engine.PersonalizationContext)
		s.contexts[documentID] = doc
	}
	doc[viewerID] = ctx
}

// Values implements ValueSource.
func (s *StaticSource) Values(ctx context.Context, documentID, blockID string) (engine.ValueSignals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if doc, ok := s.values[documentID]; ok {
		if v, ok := doc[blockID]; ok {
			return v, nil
		}
	}
	return engine.ValueSignals{}, errors.New(errors.ErrCodeBlockNotFound, "no values for block %s in document %s", blockID, documentID)
}

// Context implements ContextSource.
func (s *StaticSource) Context(ctx context.Context, documentID, viewerID string) (engine.PersonalizationContext, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if doc, ok := s.contexts[documentID]; ok {
		if c, ok := doc[viewerID]; ok {
			return c, nil
		}
	}
	// Unknown viewers get an empty context rather than an error; a fresh
	// viewer simply has no history or preferences yet.
	return engine.PersonalizationContext{ViewerID: viewerID}, nil
}

var (
	_ ValueSource   = (*StaticSource)(nil)
	_ ContextSource = (*StaticSource)(nil)
)
