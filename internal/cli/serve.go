package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/affectively-ai/foldline/pkg/cache"
	"github.com/affectively-ai/foldline/pkg/config"
	"github.com/affectively-ai/foldline/pkg/edge"
	"github.com/affectively-ai/foldline/pkg/manifest"
	"github.com/affectively-ai/foldline/pkg/session"
)

// serveCommand creates the serve command for running the edge server.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		configPath string
		listen     string
		noCache    bool
	)

	cmd := &cobra.Command{
		Use:   "serve [fixture.json...]",
		Short: "Run the edge server behind a manifest's URL templates",
		Long: `Run the edge server behind a manifest's URL templates.

The serve command answers the routes a generated manifest declares:

  GET /values?block=<id>&doc=<docID>   block value signals
  GET /context?doc=<docID>             viewer personalization context
  GET /manifest/<docID>                stored layout manifest

Fixture files passed as arguments are solved at startup; their signals seed
the value source and their manifests are stored for serving. Backends
(cache, manifest store) are selected in the TOML config.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), args, configPath, listen, noCache)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "TOML config file")
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (overrides config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable response caching")

	return cmd
}

// runServe wires backends, seeds fixtures, and serves until ctx is done.
func (c *CLI) runServe(ctx context.Context, fixtures []string, configPath, listen string, noCache bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if listen != "" {
		cfg.Edge.Listen = listen
	}

	respCache, err := c.buildCache(ctx, cfg.Cache, noCache)
	if err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}
	defer respCache.Close()

	store, err := c.buildManifestStore(ctx, cfg.Manifest)
	if err != nil {
		return fmt.Errorf("initialize manifest store: %w", err)
	}
	defer store.Close(ctx)

	sessions := session.NewRegistry(session.Config{
		Tunables:            cfg.Tunables(),
		Personalization:     cfg.PersonalizationTunables(),
		EdgeCacheTTLSeconds: cfg.Edge.CacheTTLSeconds,
		Logger:              c.Logger,
	})
	defer sessions.Close()

	source := edge.NewStaticSource()
	if err := c.seedFixtures(ctx, fixtures, sessions, source, store); err != nil {
		return err
	}

	server := edge.NewServer(edge.Config{
		Values:         source,
		Contexts:       source,
		Manifests:      store,
		Cache:          respCache,
		CacheTTL:       time.Duration(cfg.Edge.CacheTTLSeconds) * time.Second,
		RateLimitRPS:   cfg.Edge.RateLimitRPS,
		RateLimitBurst: cfg.Edge.RateLimitBurst,
		Logger:         c.Logger,
	})

	httpServer := &http.Server{
		Addr:              cfg.Edge.Listen,
		Handler:           server,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("edge server listening", "addr", cfg.Edge.Listen)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// buildCache constructs the configured cache backend.
func (c *CLI) buildCache(ctx context.Context, cfg config.CacheConfig, noCache bool) (cache.Cache, error) {
	if noCache {
		return newCache(true)
	}
	switch cfg.Backend {
	case "", "null":
		return cache.NewNullCache(), nil
	case "file":
		if cfg.Dir == "" {
			return newCache(false)
		}
		return cache.NewFileCache(cfg.Dir)
	case "redis":
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// buildManifestStore constructs the configured manifest store.
func (c *CLI) buildManifestStore(ctx context.Context, cfg config.ManifestConfig) (manifest.Store, error) {
	switch cfg.Store {
	case "", "file":
		dir := cfg.Dir
		if dir == "" {
			dir = "manifests"
		}
		return manifest.NewFileStore(dir)
	case "mongo":
		return manifest.NewMongoStore(ctx, manifest.MongoConfig{
			URI:        cfg.MongoURI,
			Database:   cfg.MongoDatabase,
			Collection: cfg.MongoCollection,
		})
	default:
		return nil, fmt.Errorf("unknown manifest store %q", cfg.Store)
	}
}

// seedFixtures solves each fixture on its session engine, stores the
// resulting manifest, and loads signals into the value source.
func (c *CLI) seedFixtures(ctx context.Context, paths []string, sessions *session.Registry, source *edge.StaticSource, store manifest.Store) error {
	for _, path := range paths {
		fixture, err := LoadFixture(path)
		if err != nil {
			return err
		}
		eng := sessions.Engine(fixture.DocumentID)
		fixture.Load(eng)
		fixture.Solve(eng)

		m := eng.GenerateManifest(fixture.DocumentID)
		if err := store.Put(ctx, m); err != nil {
			return err
		}
		for _, it := range fixture.Items {
			source.SetValues(fixture.DocumentID, it.Item.BlockID, it.Values)
		}
		if fixture.Viewer != nil {
			source.SetContext(fixture.DocumentID, fixture.Viewer.ViewerID, *fixture.Viewer)
		}
		c.Logger.Info("seeded document", "doc", fixture.DocumentID, "items", len(fixture.Items))
	}
	return nil
}
