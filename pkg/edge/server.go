// Package edge implements the HTTP surface behind a manifest's resolution
// templates.
//
// A generated manifest declares one value-resolution URL per block
// ({base}/values?block=<id>&doc=<docID>) and a single context-resolution
// URL ({base}/context?doc=<docID>). This package serves those routes: a
// rendering layer expands {base} to this server's address and fetches
// per-viewer values and context at display time. Responses are cached per
// the manifest's declared TTL.
package edge

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/affectively-ai/foldline/pkg/cache"
	"github.com/affectively-ai/foldline/pkg/errors"
	"github.com/affectively-ai/foldline/pkg/manifest"
	"github.com/affectively-ai/foldline/pkg/observability"
)

// Config configures a Server.
type Config struct {
	// Values resolves block value signals. Required.
	Values ValueSource

	// Contexts resolves viewer personalization contexts. Required.
	Contexts ContextSource

	// Manifests serves stored manifests. Nil disables the manifest route.
	Manifests manifest.Store

	// Cache holds resolved responses. Nil means no caching.
	Cache cache.Cache

	// Keyer generates cache keys. Nil means the default keyer.
	Keyer cache.Keyer

	// CacheTTL is how long resolved values stay cached. Non-positive means
	// the manifest default.
	CacheTTL time.Duration

	// RateLimitRPS caps requests per second. Zero disables limiting.
	RateLimitRPS float64

	// RateLimitBurst is the limiter burst. Non-positive means RateLimitRPS.
	RateLimitBurst int

	// Logger receives request logs. Nil discards.
	Logger *log.Logger
}

// Server serves the edge-resolution routes.
type Server struct {
	cfg     Config
	logger  *log.Logger
	cache   cache.Cache
	keyer   cache.Keyer
	ttl     time.Duration
	limiter *rate.Limiter
	router  chi.Router
}

// NewServer builds the server and its routes.
func NewServer(cfg Config) *Server {
	s := &Server{
		cfg:    cfg,
		logger: cfg.Logger,
		cache:  cfg.Cache,
		keyer:  cfg.Keyer,
		ttl:    cfg.CacheTTL,
	}
	if s.logger == nil {
		s.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if s.cache == nil {
		s.cache = cache.NewNullCache()
	}
	if s.keyer == nil {
		s.keyer = cache.NewDefaultKeyer()
	}
	if s.ttl <= 0 {
		s.ttl = manifest.DefaultCacheTTLSeconds * time.Second
	}
	if cfg.RateLimitRPS > 0 {
		burst := cfg.RateLimitBurst
		if burst <= 0 {
			burst = int(cfg.RateLimitRPS)
			if burst < 1 {
				burst = 1
			}
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), burst)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.observe)
	if s.limiter != nil {
		r.Use(s.throttle)
	}
	r.Get("/healthz", s.handleHealth)
	r.Get("/values", s.handleValues)
	r.Get("/context", s.handleContext)
	if cfg.Manifests != nil {
		r.Get("/manifest/{documentID}", s.handleManifest)
	}
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// =============================================================================
// Middleware
// =============================================================================

// observe emits HTTP hooks and request logs.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		observability.HTTP().OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		elapsed := time.Since(start)
		observability.HTTP().OnResponse(r.Context(), r.Method, r.URL.Path, ww.Status(), elapsed)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"elapsed", elapsed)
	})
}

// throttle rejects requests over the configured rate.
func (s *Server) throttle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			s.writeError(w, &errors.RateLimitedError{RetryAfter: 1})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleValues serves GET /values?block=<id>&doc=<docID>, the expansion of
// a manifest's per-block value template.
func (s *Server) handleValues(w http.ResponseWriter, r *http.Request) {
	docID := r.URL.Query().Get("doc")
	blockID := r.URL.Query().Get("block")
	if err := errors.ValidateDocumentID(docID); err != nil {
		s.writeError(w, err)
		return
	}
	if err := errors.ValidateBlockID(blockID); err != nil {
		s.writeError(w, err)
		return
	}

	ctx := r.Context()
	key := s.keyer.ValuesKey(docID, blockID)
	if data, ok := s.cacheGet(ctx, key, "values"); ok {
		s.writeCached(w, data)
		return
	}

	values, err := s.cfg.Values.Values(ctx, docID, blockID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.respond(ctx, w, key, "values", values)
}

// handleContext serves GET /context?doc=<docID>&viewer=<id>, the expansion
// of a manifest's single context template. The viewer parameter is optional;
// without it an empty context is returned.
func (s *Server) handleContext(w http.ResponseWriter, r *http.Request) {
	docID := r.URL.Query().Get("doc")
	viewerID := r.URL.Query().Get("viewer")
	if err := errors.ValidateDocumentID(docID); err != nil {
		s.writeError(w, err)
		return
	}

	ctx := r.Context()
	key := s.keyer.ContextKey(docID, viewerID)
	if data, ok := s.cacheGet(ctx, key, "context"); ok {
		s.writeCached(w, data)
		return
	}

	pctx, err := s.cfg.Contexts.Context(ctx, docID, viewerID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.respond(ctx, w, key, "context", pctx)
}

// handleManifest serves GET /manifest/{documentID} from the manifest store.
func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "documentID")
	if err := errors.ValidateDocumentID(docID); err != nil {
		s.writeError(w, err)
		return
	}

	m, err := s.cfg.Manifests.Get(r.Context(), docID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, m)
}

// =============================================================================
// Response Helpers
// =============================================================================

func (s *Server) cacheGet(ctx context.Context, key, keyType string) ([]byte, bool) {
	data, hit, err := s.cache.Get(ctx, key)
	if err != nil {
		// Degrade to source resolution on cache failure.
		s.logger.Warn("cache get failed", "key_type", keyType, "err", err)
		return nil, false
	}
	if hit {
		observability.Cache().OnCacheHit(ctx, keyType)
		return data, true
	}
	observability.Cache().OnCacheMiss(ctx, keyType)
	return nil, false
}

// respond marshals v, stores it in the cache, and writes it.
func (s *Server) respond(ctx context.Context, w http.ResponseWriter, key, keyType string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "marshal response"))
		return
	}
	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		s.logger.Warn("cache set failed", "key_type", keyType, "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, keyType, len(data))
	}
	s.writeCached(w, data)
}

func (s *Server) writeCached(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorBody is the wire shape of error responses.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := errors.GetCode(err)
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidConstraints, errors.ErrCodeInvalidManifest:
		status = http.StatusBadRequest
	case errors.ErrCodeDocumentNotFound, errors.ErrCodeBlockNotFound, errors.ErrCodeNotFound:
		status = http.StatusNotFound
	}
	if rl, ok := err.(*errors.RateLimitedError); ok {
		status = http.StatusTooManyRequests
		code = rl.Code()
		if rl.RetryAfter > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(rl.RetryAfter))
		}
	}
	if code == "" {
		code = errors.ErrCodeInternal
	}
	s.writeJSON(w, status, errorBody{Code: string(code), Message: errors.UserMessage(err)})
}
