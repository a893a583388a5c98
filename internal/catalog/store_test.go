// Andariego - Tourism Geo-Recommendation and Risk Analysis
// Copyright 2026 Andariego contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/andariego-ec/andariego

package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func testSites() []Site {
	return []Site{
		{ID: 1, Name: "Malecón 2000", Category: CategoryCity, Province: "Guayas", Latitude: -2.1946, Longitude: -79.8824, Active: true, ImagePath: "/media/sites/malecon.jpg"},
		{ID: 2, Name: "Parque Histórico", Category: CategoryPark, Province: "Guayas", Latitude: -2.1430, Longitude: -79.8648, Active: true},
		{ID: 3, Name: "Cerro Santa Ana", Category: CategoryCultural, Province: "Guayas", Latitude: -2.1803, Longitude: -79.8754, Active: false},
	}
}

func TestMemoryStoreListActiveSites(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	sites, err := store.ListActiveSites(ctx)
	if err != nil {
		t.Fatalf("ListActiveSites on empty store: %v", err)
	}
	if len(sites) != 0 {
		t.Errorf("expected empty slice, got %d sites", len(sites))
	}

	if err := store.SeedSites(ctx, testSites()); err != nil {
		t.Fatalf("SeedSites: %v", err)
	}

	sites, err = store.ListActiveSites(ctx)
	if err != nil {
		t.Fatalf("ListActiveSites: %v", err)
	}
	if len(sites) != 2 {
		t.Fatalf("expected 2 active sites, got %d", len(sites))
	}
	for _, s := range sites {
		if !s.Active {
			t.Errorf("inactive site %d returned by ListActiveSites", s.ID)
		}
	}
	if sites[0].ID != 1 || sites[1].ID != 2 {
		t.Errorf("expected deterministic ID order, got %d, %d", sites[0].ID, sites[1].ID)
	}
}

func TestMemoryStoreGetSite(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.SeedSites(ctx, testSites()); err != nil {
		t.Fatalf("SeedSites: %v", err)
	}

	s, err := store.GetSite(ctx, 3)
	if err != nil {
		t.Fatalf("GetSite(3): %v", err)
	}
	if s.Name != "Cerro Santa Ana" {
		t.Errorf("GetSite(3).Name = %q", s.Name)
	}

	if _, err := store.GetSite(ctx, 99); !errors.Is(err, ErrSiteNotFound) {
		t.Errorf("GetSite(99) error = %v, want ErrSiteNotFound", err)
	}
}

func TestHasReferenceImage(t *testing.T) {
	with := Site{ImagePath: "/media/a.jpg"}
	without := Site{}
	if !with.HasReferenceImage() {
		t.Error("expected HasReferenceImage = true for site with image path")
	}
	if without.HasReferenceImage() {
		t.Error("expected HasReferenceImage = false for site without image path")
	}
}

func TestLoadSeedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sites.json")
	seed := `[
		{"id": 10, "name": "Laguna Quilotoa", "category": "lagoon", "province": "Cotopaxi", "latitude": -0.8583, "longitude": -78.9003},
		{"id": 11, "name": "Sitio Retirado", "category": "other", "province": "Azuay", "latitude": -2.9, "longitude": -79.0, "active": false}
	]`
	if err := os.WriteFile(path, []byte(seed), 0o600); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	sites, err := LoadSeedFile(path)
	if err != nil {
		t.Fatalf("LoadSeedFile: %v", err)
	}
	if len(sites) != 2 {
		t.Fatalf("expected 2 sites, got %d", len(sites))
	}
	if !sites[0].Active {
		t.Error("site without active flag should default to active")
	}
	if sites[1].Active {
		t.Error("explicit active=false should be preserved")
	}
	if sites[0].Category != CategoryLagoon {
		t.Errorf("category = %q, want %q", sites[0].Category, CategoryLagoon)
	}
}

func TestSeedFromFileMissingFile(t *testing.T) {
	store := NewMemoryStore()
	if err := SeedFromFile(context.Background(), store, "/nonexistent/sites.json"); err != nil {
		t.Errorf("missing seed file should not be an error, got %v", err)
	}
}
