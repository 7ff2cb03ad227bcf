// Package config loads Foldline configuration from TOML files.
//
// All fields are optional; the zero config resolves to working defaults.
// A typical file:
//
//	[compose]
//	emotional_intensity = 0.25
//	contextual_relevance = 0.35
//	freshness = 0.20
//	reader_engagement = 0.20
//
//	[enforce]
//	min_weight_ratio = 0.3
//	load_saving_ratio = 0.5
//
//	[edge]
//	listen = ":8080"
//	rate_limit_rps = 50
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//
//	[manifest]
//	store = "mongo"
//	mongo_uri = "mongodb://localhost:27017"
package config

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/affectively-ai/foldline/pkg/engine"
	"github.com/affectively-ai/foldline/pkg/errors"
)

// Config is the full application configuration.
type Config struct {
	Compose     ComposeConfig     `toml:"compose"`
	Enforce     EnforceConfig     `toml:"enforce"`
	Personalize PersonalizeConfig `toml:"personalize"`
	Edge        EdgeConfig        `toml:"edge"`
	Cache       CacheConfig       `toml:"cache"`
	Manifest    ManifestConfig    `toml:"manifest"`
}

// ComposeConfig holds the value-signal composition weights.
type ComposeConfig struct {
	EmotionalIntensity  float64 `toml:"emotional_intensity"`
	ContextualRelevance float64 `toml:"contextual_relevance"`
	Freshness           float64 `toml:"freshness"`
	ReaderEngagement    float64 `toml:"reader_engagement"`
}

// EnforceConfig holds the constraint-pass tunables.
type EnforceConfig struct {
	MinWeightRatio   float64 `toml:"min_weight_ratio"`
	LoadSavingRatio  float64 `toml:"load_saving_ratio"`
	ComfortableScale float64 `toml:"comfortable_scale"`
}

// PersonalizeConfig holds the personalization multipliers.
type PersonalizeConfig struct {
	HiddenCategoryFactor float64 `toml:"hidden_category_factor"`
	SparseFactor         float64 `toml:"sparse_factor"`
	DenseFactor          float64 `toml:"dense_factor"`
	SeenFactor           float64 `toml:"seen_factor"`
	HighlightFactor      float64 `toml:"highlight_factor"`
}

// EdgeConfig holds the edge-server settings.
type EdgeConfig struct {
	// Listen is the HTTP listen address. Defaults to ":8080".
	Listen string `toml:"listen"`

	// RateLimitRPS caps requests per second per server. Zero disables
	// limiting.
	RateLimitRPS float64 `toml:"rate_limit_rps"`

	// RateLimitBurst is the limiter burst size. Defaults to RateLimitRPS.
	RateLimitBurst int `toml:"rate_limit_burst"`

	// CacheTTLSeconds declares the TTL for edge-resolved values.
	CacheTTLSeconds int `toml:"cache_ttl_seconds"`
}

// CacheConfig selects and configures a cache backend.
type CacheConfig struct {
	// Backend is one of "null", "file", "redis". Defaults to "null".
	Backend string `toml:"backend"`

	// Dir is the file-backend directory.
	Dir string `toml:"dir"`

	// Redis connection settings.
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// ManifestConfig selects and configures a manifest store.
type ManifestConfig struct {
	// Store is one of "file", "mongo". Defaults to "file".
	Store string `toml:"store"`

	// Dir is the file-store directory.
	Dir string `toml:"dir"`

	// Mongo connection settings.
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// Default returns a config resolving entirely to defaults.
func Default() Config {
	return Config{
		Edge:     EdgeConfig{Listen: ":8080"},
		Cache:    CacheConfig{Backend: "null"},
		Manifest: ManifestConfig{Store: "file", Dir: "manifests"},
	}
}

// Load reads a TOML config file and validates backend selections. Missing
// files are not an error; defaults apply.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks backend selections and numeric ranges.
func (c Config) Validate() error {
	switch c.Cache.Backend {
	case "", "null", "file", "redis":
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	switch c.Manifest.Store {
	case "", "file", "mongo":
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown manifest store %q", c.Manifest.Store)
	}
	if c.Edge.RateLimitRPS < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "rate limit must be non-negative")
	}
	if c.Edge.CacheTTLSeconds < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache ttl must be non-negative")
	}
	return nil
}

// Tunables converts the compose and enforce sections into engine tunables.
// Unset fields stay zero and pick up engine defaults through Normalize.
func (c Config) Tunables() engine.Tunables {
	return engine.Tunables{
		Weights: engine.SignalWeights{
			EmotionalIntensity:  c.Compose.EmotionalIntensity,
			ContextualRelevance: c.Compose.ContextualRelevance,
			Freshness:           c.Compose.Freshness,
			ReaderEngagement:    c.Compose.ReaderEngagement,
		},
		MinWeightRatio:   c.Enforce.MinWeightRatio,
		LoadSavingRatio:  c.Enforce.LoadSavingRatio,
		ComfortableScale: c.Enforce.ComfortableScale,
	}
}

// PersonalizationTunables converts the personalize section into engine
// multipliers.
func (c Config) PersonalizationTunables() engine.PersonalizationTunables {
	return engine.PersonalizationTunables{
		HiddenCategoryFactor: c.Personalize.HiddenCategoryFactor,
		SparseFactor:         c.Personalize.SparseFactor,
		DenseFactor:          c.Personalize.DenseFactor,
		SeenFactor:           c.Personalize.SeenFactor,
		HighlightFactor:      c.Personalize.HighlightFactor,
	}
}
