// Andariego - Tourism Geo-Recommendation and Risk Analysis
// Copyright 2026 Andariego contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/andariego-ec/andariego

package catalog

import (
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/andariego-ec/andariego/internal/logging"
)

// LoadSeedFile reads a JSON array of sites from disk. The file is produced
// by the offline curation pipeline; entries missing an explicit active flag
// default to active.
func LoadSeedFile(path string) ([]Site, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from operator config
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	type seedSite struct {
		Site
		Active *bool `json:"active"`
	}

	var raw []seedSite
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}

	sites := make([]Site, 0, len(raw))
	for _, r := range raw {
		s := r.Site
		s.Active = r.Active == nil || *r.Active
		sites = append(sites, s)
	}
	return sites, nil
}

// SeedFromFile loads the seed file and upserts its sites into the store.
// A missing file is not an error; the catalog simply starts empty.
func SeedFromFile(ctx context.Context, store Store, path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		logging.Warn().Str("path", path).Msg("Catalog seed file not found, starting with existing data")
		return nil
	}

	sites, err := LoadSeedFile(path)
	if err != nil {
		return err
	}
	if err := store.SeedSites(ctx, sites); err != nil {
		return err
	}

	logging.Info().Int("sites", len(sites)).Str("path", path).Msg("Catalog seeded")
	return nil
}
