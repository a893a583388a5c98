// Andariego - Tourism Geo-Recommendation and Risk Analysis
// Copyright 2026 Andariego contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/andariego-ec/andariego

// Package risk scores the safety of a coordinate using a pre-trained spatial
// clustering model and a per-cluster base risk table, both loaded once at
// startup from JSON artifacts. A load failure degrades the scorer
// permanently: every assessment fails with an explicit error, never a crash.
package risk

import (
	"fmt"
	"os"
	"strconv"

	"github.com/goccy/go-json"
)

// CentroidModel assigns a coordinate to the nearest cluster centroid. It is
// the request-time half of an offline k-means fit; centroids live in plain
// lat/lon space, matching how the model was trained.
type CentroidModel struct {
	centroids [][2]float64
}

// centroidArtifact is the JSON shape of the persisted model.
type centroidArtifact struct {
	Centroids [][2]float64 `json:"centroids"`
}

// LoadCentroids reads a centroid artifact from disk.
func LoadCentroids(path string) (*CentroidModel, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from config
	if err != nil {
		return nil, fmt.Errorf("read centroid model: %w", err)
	}

	var artifact centroidArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("parse centroid model: %w", err)
	}
	if len(artifact.Centroids) == 0 {
		return nil, fmt.Errorf("centroid model %s holds no centroids", path)
	}

	return &CentroidModel{centroids: artifact.Centroids}, nil
}

// NewCentroidModel builds a model from in-memory centroids. Used by tests
// and tooling.
func NewCentroidModel(centroids [][2]float64) *CentroidModel {
	return &CentroidModel{centroids: centroids}
}

// Predict returns the index of the centroid closest to the coordinate.
// Squared euclidean distance in lat/lon space; ties keep the lower index.
func (m *CentroidModel) Predict(lat, lon float64) int {
	best := 0
	bestDist := sqDist(lat, lon, m.centroids[0])
	for i := 1; i < len(m.centroids); i++ {
		if d := sqDist(lat, lon, m.centroids[i]); d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

// Clusters returns the number of centroids.
func (m *CentroidModel) Clusters() int {
	return len(m.centroids)
}

func sqDist(lat, lon float64, c [2]float64) float64 {
	dlat := lat - c[0]
	dlon := lon - c[1]
	return dlat*dlat + dlon*dlon
}

// Table maps cluster index to base risk level on the 0-10 scale. The JSON
// artifact is string-keyed; clusters absent from the table default to 0.
type Table map[int]float64

// LoadTable reads a string-keyed risk table artifact from disk.
func LoadTable(path string) (Table, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from config
	if err != nil {
		return nil, fmt.Errorf("read risk table: %w", err)
	}

	var raw map[string]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse risk table: %w", err)
	}

	table := make(Table, len(raw))
	for key, level := range raw {
		idx, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("risk table key %q is not a cluster index", key)
		}
		table[idx] = level
	}
	return table, nil
}

// BaseLevel returns the base risk for a cluster, 0 when absent.
func (t Table) BaseLevel(cluster int) float64 {
	return t[cluster]
}
