// Andariego - Tourism Geo-Recommendation and Risk Analysis
// Copyright 2026 Andariego contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/andariego-ec/andariego

package catalog

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// ErrSiteNotFound is returned when a site ID does not exist in the catalog.
var ErrSiteNotFound = errors.New("site not found")

// Store is the catalog read boundary consumed by the recommendation engine.
type Store interface {
	// ListActiveSites returns all sites with the active flag set.
	// An empty catalog yields an empty slice, not an error.
	ListActiveSites(ctx context.Context) ([]Site, error)

	// GetSite returns a site by ID regardless of its active flag.
	GetSite(ctx context.Context, id int64) (*Site, error)

	// SeedSites inserts or replaces catalog entries. Used only at startup.
	SeedSites(ctx context.Context, sites []Site) error

	// Close releases underlying resources.
	Close() error
}

// MemoryStore is an in-memory Store for tests and ephemeral deployments.
type MemoryStore struct {
	mu    sync.RWMutex
	sites map[int64]Site
}

// NewMemoryStore creates an empty in-memory catalog.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sites: make(map[int64]Site)}
}

// ListActiveSites returns active sites ordered by ID for determinism.
func (m *MemoryStore) ListActiveSites(_ context.Context) ([]Site, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Site, 0, len(m.sites))
	for _, s := range m.sites {
		if s.Active {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GetSite returns a site by ID.
func (m *MemoryStore) GetSite(_ context.Context, id int64) (*Site, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sites[id]
	if !ok {
		return nil, ErrSiteNotFound
	}
	return &s, nil
}

// SeedSites inserts or replaces sites by ID.
func (m *MemoryStore) SeedSites(_ context.Context, sites []Site) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range sites {
		m.sites[s.ID] = s
	}
	return nil
}

// Close is a no-op for the memory store.
func (m *MemoryStore) Close() error { return nil }
