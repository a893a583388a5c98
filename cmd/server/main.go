// Andariego - Tourism Geo-Recommendation and Risk Analysis
// Copyright 2026 Andariego contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/andariego-ec/andariego

// Package main is the entry point for the Andariego server.
//
// Andariego recommends tourism sites in Ecuador from a visitor's position,
// identifies sites from uploaded photos via perceptual image hashing, and
// scores coordinates for crime risk using a pre-trained clustering model.
//
// The server initializes components in the following order:
//
//  1. Configuration: Koanf v2 layered sources (defaults, YAML file, env vars)
//  2. Catalog: DuckDB-backed site store, optionally seeded from a JSON file
//  3. Vision: perceptual-hash similarity oracle and object-detection client
//  4. Achievements: in-process visit event bus with a Badger-backed tracker
//  5. Risk: clustering model and risk table loaded from JSON artifacts
//  6. HTTP server: chi-routed REST API under Suture supervision
//
// Graceful shutdown on SIGINT and SIGTERM: the supervisor tree stops the
// event consumer and drains in-flight HTTP requests before exit.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andariego-ec/andariego/internal/achievements"
	"github.com/andariego-ec/andariego/internal/api"
	"github.com/andariego-ec/andariego/internal/catalog"
	"github.com/andariego-ec/andariego/internal/config"
	"github.com/andariego-ec/andariego/internal/logging"
	"github.com/andariego-ec/andariego/internal/recommend"
	"github.com/andariego-ec/andariego/internal/risk"
	"github.com/andariego-ec/andariego/internal/supervisor"
	"github.com/andariego-ec/andariego/internal/vision"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("Server failed")
	}
}

func run() error {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Msg("Starting Andariego")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = store.Close()
	}()

	if cfg.Catalog.SeedFile != "" {
		if err := catalog.SeedFromFile(ctx, store, cfg.Catalog.SeedFile); err != nil {
			return fmt.Errorf("seed catalog: %w", err)
		}
	}

	oracle := vision.NewPerceptualOracle(cfg.Vision.HashCacheSize, cfg.Vision.HashCacheTTL)
	detector := buildDetector(cfg)
	scorer := risk.NewScorer(risk.Config{
		ModelPath: cfg.Risk.ModelPath,
		TablePath: cfg.Risk.TablePath,
	})

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())

	var publisher recommend.VisitPublisher
	if cfg.Achievements.Enabled {
		bus := achievements.NewBus()
		defer func() {
			_ = bus.Close()
		}()

		tracker, err := achievements.NewTracker(cfg.Achievements.StorePath, bus)
		if err != nil {
			return fmt.Errorf("open achievements tracker: %w", err)
		}
		defer func() {
			_ = tracker.Close()
		}()

		tree.AddEventService(supervisor.NewTrackerService(tracker))
		publisher = achievements.NewPublisher(bus)
	}

	engineCfg := recommend.Config{
		MatchThreshold:     cfg.Recommend.MatchThreshold,
		SearchRadiusKm:     cfg.Recommend.SearchRadiusKm,
		SuggestionRadiusKm: cfg.Recommend.SuggestionRadiusKm,
		MaxDistanceKm:      cfg.Recommend.MaxDistanceKm,
		BiasFactor:         cfg.Recommend.BiasFactor,
		NearbyLimit:        cfg.Recommend.NearbyLimit,
		RelatedLimit:       cfg.Recommend.RelatedLimit,
		Region:             recommend.DefaultConfig().Region,
		ImageDir:           cfg.Catalog.ImageDir,
	}
	engine := recommend.NewEngine(store, oracle, publisher, engineCfg)

	handler := api.NewHandler(engine, detector, scorer, version)
	router := api.NewRouter(handler, api.RouterConfig{
		RateLimitReqs:     cfg.Security.RateLimitReqs,
		RateLimitWindow:   cfg.Security.RateLimitWindow,
		RateLimitDisabled: cfg.Security.RateLimitDisabled,
		CORSOrigins:       cfg.Security.CORSOrigins,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * cfg.Server.Timeout,
	}
	tree.AddAPIService(supervisor.NewHTTPService(server, 10*time.Second))

	err = tree.Serve(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor: %w", err)
	}

	if unstopped, reportErr := tree.UnstoppedServiceReport(); reportErr == nil && len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop within timeout")
		}
	}

	logging.Info().Msg("Shutdown complete")
	return nil
}

// openStore builds the configured catalog backend.
func openStore(cfg *config.Config) (catalog.Store, error) {
	switch cfg.Database.Backend {
	case "memory":
		logging.Info().Msg("Using in-memory site catalog")
		return catalog.NewMemoryStore(), nil
	default:
		store, err := catalog.NewDuckDBStore(catalog.DuckDBConfig{
			Path:      cfg.Database.Path,
			MaxMemory: cfg.Database.MaxMemory,
			Threads:   cfg.Database.Threads,
		})
		if err != nil {
			return nil, fmt.Errorf("open catalog database: %w", err)
		}
		return store, nil
	}
}

// buildDetector returns the object-detection client, or a noop when no
// service is configured.
func buildDetector(cfg *config.Config) vision.Detector {
	if cfg.Vision.DetectorURL == "" {
		logging.Info().Msg("Object detection disabled, zone classification degrades to rural")
		return vision.NoopDetector{}
	}
	return vision.NewHTTPDetector(vision.DetectorConfig{
		URL:     cfg.Vision.DetectorURL,
		Timeout: cfg.Vision.DetectorTimeout,
	})
}
