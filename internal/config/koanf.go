// Andariego - Tourism Geo-Recommendation and Risk Analysis
// Copyright 2026 Andariego contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/andariego-ec/andariego

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where config files are searched, in order.
// The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/andariego/config.yaml",
	"/etc/andariego/config.yml",
}

// ConfigPathEnvVar overrides the config file path when set.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with all defaults applied. These are layered
// first, then overridden by the config file and environment variables.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8421,
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Database: DatabaseConfig{
			Backend:   "duckdb",
			Path:      "/data/andariego.duckdb",
			MaxMemory: "1GB",
			Threads:   0, // 0 = runtime.NumCPU()
		},
		Catalog: CatalogConfig{
			SeedFile: "",
			ImageDir: "/data/images",
		},
		Recommend: RecommendConfig{
			MatchThreshold:     0.70,
			SearchRadiusKm:     10.0,
			SuggestionRadiusKm: 0.20,
			MaxDistanceKm:      50.0,
			BiasFactor:         0.6,
			NearbyLimit:        5,
			RelatedLimit:       4,
		},
		Vision: VisionConfig{
			DetectorURL:     "",
			DetectorTimeout: 15 * time.Second,
			HashCacheSize:   256,
			HashCacheTTL:    time.Hour,
		},
		Risk: RiskConfig{
			ModelPath: "/data/risk/centroids.json",
			TablePath: "/data/risk/levels.json",
		},
		Achievements: AchievementsConfig{
			Enabled:   true,
			StorePath: "/data/achievements",
		},
		Security: SecurityConfig{
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{"*"},
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: built-in values from defaultConfig
//  2. Config file: optional YAML file (if one exists)
//  3. Environment variables: override any setting
//
// Precedence is ENV > file > defaults.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// ANDARIEGO_DATABASE_PATH -> database.path
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file, env var path first.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths are config paths parsed as comma-separated slices when
// they arrive as env var strings.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated strings to slices for known
// slice fields. Env vars come in as strings but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps short legacy environment variable names to config paths.
var envMappings = map[string]string{
	"http_port":    "server.port",
	"http_host":    "server.host",
	"http_timeout": "server.timeout",
	"environment":  "server.environment",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"catalog_backend":   "database.backend",
	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",

	"seed_file": "catalog.seed_file",
	"image_dir": "catalog.image_dir",

	"match_threshold":      "recommend.match_threshold",
	"search_radius_km":     "recommend.search_radius_km",
	"suggestion_radius_km": "recommend.suggestion_radius_km",
	"max_distance_km":      "recommend.max_distance_km",
	"bias_factor":          "recommend.bias_factor",

	"detector_url":     "vision.detector_url",
	"detector_timeout": "vision.detector_timeout",

	"risk_model_path": "risk.model_path",
	"risk_table_path": "risk.table_path",

	"achievements_enabled": "achievements.enabled",
	"achievements_path":    "achievements.store_path",

	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",
}

// envTransformFunc maps environment variable names to koanf config paths.
//
// Two forms are accepted:
//   - Short legacy names from envMappings: DUCKDB_PATH -> database.path
//   - ANDARIEGO_-prefixed nested names: ANDARIEGO_RECOMMEND_BIAS_FACTOR ->
//     recommend.bias_factor (first underscore separates the section)
func envTransformFunc(key string) string {
	lower := strings.ToLower(key)

	if path, ok := envMappings[lower]; ok {
		return path
	}

	const prefix = "andariego_"
	if !strings.HasPrefix(lower, prefix) {
		return "" // unrelated env var, ignore
	}

	rest := strings.TrimPrefix(lower, prefix)
	section, field, found := strings.Cut(rest, "_")
	if !found {
		return section
	}
	return section + "." + field
}
