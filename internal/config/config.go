// Andariego - Tourism Geo-Recommendation and Risk Analysis
// Copyright 2026 Andariego contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/andariego-ec/andariego

// Package config loads and validates the service configuration from layered
// sources: built-in defaults, an optional YAML file, and environment
// variables, in ascending precedence.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the service.
type Config struct {
	Server       ServerConfig       `koanf:"server"`
	Logging      LoggingConfig      `koanf:"logging"`
	Database     DatabaseConfig     `koanf:"database"`
	Catalog      CatalogConfig      `koanf:"catalog"`
	Recommend    RecommendConfig    `koanf:"recommend"`
	Vision       VisionConfig       `koanf:"vision"`
	Risk         RiskConfig         `koanf:"risk"`
	Achievements AchievementsConfig `koanf:"achievements"`
	Security     SecurityConfig     `koanf:"security"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`
}

// LoggingConfig holds zerolog settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// DatabaseConfig holds DuckDB settings for the site catalog.
type DatabaseConfig struct {
	// Backend selects the catalog store: "duckdb" or "memory".
	Backend string `koanf:"backend"`

	// Path is the DuckDB database file. Empty runs DuckDB in-memory.
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"`
}

// CatalogConfig holds site catalog content settings.
type CatalogConfig struct {
	// SeedFile is an optional JSON file of sites loaded at startup.
	SeedFile string `koanf:"seed_file"`

	// ImageDir is the directory holding site reference images. Site image
	// paths in the catalog are resolved relative to it.
	ImageDir string `koanf:"image_dir"`
}

// RecommendConfig holds the tunable thresholds of the recommendation engine.
// Defaults reflect field-tested values; change with care, the identification
// and suggestion behavior is sensitive to them.
type RecommendConfig struct {
	// MatchThreshold is the minimum similarity score for a visual match.
	MatchThreshold float64 `koanf:"match_threshold"`

	// SearchRadiusKm bounds the candidate filter for photo identification.
	SearchRadiusKm float64 `koanf:"search_radius_km"`

	// SuggestionRadiusKm is the distance within which an unmatched photo
	// still yields a "you might be at" suggestion.
	SuggestionRadiusKm float64 `koanf:"suggestion_radius_km"`

	// MaxDistanceKm bounds contextual recommendations.
	MaxDistanceKm float64 `koanf:"max_distance_km"`

	// BiasFactor scales the effective distance of sites whose category
	// matches the detected scene context. Must be in (0, 1].
	BiasFactor float64 `koanf:"bias_factor"`

	// NearbyLimit caps the nearby-sites listing.
	NearbyLimit int `koanf:"nearby_limit"`

	// RelatedLimit caps the related-sites listing.
	RelatedLimit int `koanf:"related_limit"`
}

// VisionConfig holds image similarity and object detection settings.
type VisionConfig struct {
	// DetectorURL is the external object-detection endpoint. Empty disables
	// detection; recognize and context biasing degrade gracefully.
	DetectorURL     string        `koanf:"detector_url"`
	DetectorTimeout time.Duration `koanf:"detector_timeout"`

	// HashCacheSize and HashCacheTTL size the reference-image hash cache.
	HashCacheSize int           `koanf:"hash_cache_size"`
	HashCacheTTL  time.Duration `koanf:"hash_cache_ttl"`
}

// RiskConfig holds the paths of the pre-trained risk model artifacts.
type RiskConfig struct {
	// ModelPath is the JSON file of cluster centroids.
	ModelPath string `koanf:"model_path"`

	// TablePath is the JSON file mapping cluster index to base risk level.
	TablePath string `koanf:"table_path"`
}

// AchievementsConfig holds the visit-tracking settings.
type AchievementsConfig struct {
	Enabled bool `koanf:"enabled"`

	// StorePath is the Badger directory for visit counters. Empty uses an
	// in-memory Badger instance.
	StorePath string `koanf:"store_path"`
}

// SecurityConfig holds rate limiting and CORS settings.
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// Validate checks configuration invariants. It is called after loading and
// returns the first violation found.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1-65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %s", c.Server.Timeout)
	}

	switch c.Database.Backend {
	case "duckdb", "memory":
	default:
		return fmt.Errorf("database.backend must be duckdb or memory, got %q", c.Database.Backend)
	}

	r := c.Recommend
	if r.MatchThreshold < 0 || r.MatchThreshold > 1 {
		return fmt.Errorf("recommend.match_threshold must be in [0,1], got %f", r.MatchThreshold)
	}
	if r.BiasFactor <= 0 || r.BiasFactor > 1 {
		return fmt.Errorf("recommend.bias_factor must be in (0,1], got %f", r.BiasFactor)
	}
	if r.SearchRadiusKm <= 0 {
		return fmt.Errorf("recommend.search_radius_km must be positive, got %f", r.SearchRadiusKm)
	}
	if r.SuggestionRadiusKm < 0 {
		return fmt.Errorf("recommend.suggestion_radius_km must be non-negative, got %f", r.SuggestionRadiusKm)
	}
	if r.MaxDistanceKm <= 0 {
		return fmt.Errorf("recommend.max_distance_km must be positive, got %f", r.MaxDistanceKm)
	}
	if r.NearbyLimit < 1 {
		return fmt.Errorf("recommend.nearby_limit must be at least 1, got %d", r.NearbyLimit)
	}
	if r.RelatedLimit < 1 {
		return fmt.Errorf("recommend.related_limit must be at least 1, got %d", r.RelatedLimit)
	}

	if c.Vision.HashCacheSize < 1 {
		return fmt.Errorf("vision.hash_cache_size must be at least 1, got %d", c.Vision.HashCacheSize)
	}

	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs < 1 {
			return fmt.Errorf("security.rate_limit_reqs must be at least 1, got %d", c.Security.RateLimitReqs)
		}
		if c.Security.RateLimitWindow <= 0 {
			return fmt.Errorf("security.rate_limit_window must be positive, got %s", c.Security.RateLimitWindow)
		}
	}

	return nil
}
