// Package session manages per-document layout sessions.
//
// Each document that registers content owns one engine instance for the
// lifetime of its session. The registry hands out engines keyed by document
// id, expires idle sessions, and supports explicit cleanup for long-running
// edge deployments.
//
// # Usage
//
// Create a registry and resolve engines:
//
//	reg := session.NewRegistry(session.Config{
//	    Tunables: tunables,
//	    Logger:   logger,
//	})
//	defer reg.Close()
//
//	eng := reg.Engine("doc-1")    // creates on first use
//	eng.RegisterItem(item, values, weights)
//
//	// Periodically, or on a timer:
//	reg.Cleanup()
package session

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/affectively-ai/foldline/pkg/engine"
)

// DefaultTTL is how long an idle document session survives.
const DefaultTTL = 24 * time.Hour

// Config configures a Registry.
type Config struct {
	// Tunables are applied to every engine the registry creates.
	Tunables engine.Tunables

	// Personalization multipliers for every engine.
	Personalization engine.PersonalizationTunables

	// TTL is the idle lifetime of a session. Non-positive means DefaultTTL.
	TTL time.Duration

	// EdgeCacheTTLSeconds is the declared TTL on generated manifests.
	EdgeCacheTTLSeconds int

	// Logger is propagated to created engines. Nil discards.
	Logger *log.Logger

	// Clock supplies time for expiry checks. Nil means the system clock.
	Clock engine.Clock
}

// docSession pairs an engine with its last-touched timestamp.
type docSession struct {
	engine   *engine.Engine
	lastUsed time.Time
}

// Registry owns the engines of all active documents. Safe for concurrent
// use; each engine inside remains single-owner per document.
type Registry struct {
	cfg   Config
	clock engine.Clock

	mu       sync.Mutex
	sessions map[string]*docSession
}

// NewRegistry creates a registry with the given config.
func NewRegistry(cfg Config) *Registry {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Clock == nil {
		cfg.Clock = engine.SystemClock{}
	}
	return &Registry{
		cfg:      cfg,
		clock:    cfg.Clock,
		sessions: make(map[string]*docSession),
	}
}

// Engine returns the engine for a document, creating it on first use. Every
// call refreshes the session's idle timer.
func (r *Registry) Engine(documentID string) *engine.Engine {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	if s, ok := r.sessions[documentID]; ok {
		s.lastUsed = now
		return s.engine
	}

	eng := engine.New(engine.Config{
		DocumentID:          documentID,
		Tunables:            r.cfg.Tunables,
		Personalization:     r.cfg.Personalization,
		Logger:              r.cfg.Logger,
		Clock:               r.cfg.Clock,
		EdgeCacheTTLSeconds: r.cfg.EdgeCacheTTLSeconds,
	})
	r.sessions[documentID] = &docSession{engine: eng, lastUsed: now}
	return eng
}

// Peek returns a document's engine without creating or refreshing it.
// Returns nil if no session exists.
func (r *Registry) Peek(documentID string) *engine.Engine {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[documentID]; ok {
		return s.engine
	}
	return nil
}

// Remove drops a document's session, canceling any scheduled solve.
func (r *Registry) Remove(documentID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[documentID]; ok {
		s.engine.Stop()
		delete(r.sessions, documentID)
	}
}

// Len returns the number of active sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Cleanup removes sessions idle past the TTL and returns how many were
// dropped.
func (r *Registry) Cleanup() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.clock.Now().Add(-r.cfg.TTL)
	dropped := 0
	for id, s := range r.sessions {
		if s.lastUsed.Before(cutoff) {
			s.engine.Stop()
			delete(r.sessions, id)
			dropped++
		}
	}
	return dropped
}

// Close drops all sessions and stops their engines.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		s.engine.Stop()
	}
	r.sessions = make(map[string]*docSession)
}
