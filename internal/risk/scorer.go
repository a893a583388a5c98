// Andariego - Tourism Geo-Recommendation and Risk Analysis
// Copyright 2026 Andariego contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/andariego-ec/andariego

package risk

import (
	"errors"
	"time"

	"github.com/andariego-ec/andariego/internal/logging"
	"github.com/andariego-ec/andariego/internal/metrics"
)

// ErrUnavailable is returned by Assess when the model artifacts failed to
// load at startup. The scorer stays degraded for the process lifetime.
var ErrUnavailable = errors.New("risk model unavailable")

const (
	// nightFactor scales risk outside daytime hours.
	nightFactor = 1.2

	// maxLevel clamps the final risk level.
	maxLevel = 10.0
)

// Color hex codes for the three risk tiers, rendered directly by clients.
const (
	colorGreen  = "#28a745"
	colorYellow = "#ffc107"
	colorRed    = "#dc3545"
)

// Assessment is the result of scoring one coordinate at one time.
type Assessment struct {
	// Level is the final risk on the 0-10 scale, night-adjusted and clamped.
	Level float64

	// Category is "low", "moderate", or "high".
	Category string

	// Color is the tier's hex code.
	Color string

	// Night reports whether the nighttime multiplier applied.
	Night bool

	// Cluster is the risk zone index the coordinate mapped to.
	Cluster int
}

// Config holds the artifact paths for the scorer.
type Config struct {
	ModelPath string `koanf:"model_path"`
	TablePath string `koanf:"table_path"`
}

// Scorer maps coordinates to risk assessments. Immutable after construction;
// safe for concurrent use.
type Scorer struct {
	model *CentroidModel
	table Table

	// now is injectable for deterministic time-of-day tests.
	now func() time.Time
}

// NewScorer loads the model artifacts and returns a ready scorer. Load
// failures are logged and produce a degraded scorer whose Assess always
// returns ErrUnavailable, so the rest of the service keeps running.
func NewScorer(cfg Config) *Scorer {
	s := &Scorer{now: time.Now}

	model, err := LoadCentroids(cfg.ModelPath)
	if err != nil {
		logging.Warn().Err(err).Str("path", cfg.ModelPath).Msg("Risk centroid model unavailable")
		return s
	}

	table, err := LoadTable(cfg.TablePath)
	if err != nil {
		logging.Warn().Err(err).Str("path", cfg.TablePath).Msg("Risk table unavailable")
		return s
	}

	s.model = model
	s.table = table
	logging.Info().
		Int("clusters", model.Clusters()).
		Int("table_entries", len(table)).
		Msg("Risk model loaded")
	return s
}

// NewScorerWith builds a scorer from in-memory artifacts. Used by tests.
func NewScorerWith(model *CentroidModel, table Table, now func() time.Time) *Scorer {
	if now == nil {
		now = time.Now
	}
	return &Scorer{model: model, table: table, now: now}
}

// Ready reports whether the model artifacts loaded.
func (s *Scorer) Ready() bool {
	return s.model != nil && s.table != nil
}

// Assess scores a coordinate at the given time. A zero time means "now".
//
// The base risk of the coordinate's cluster is multiplied by the nighttime
// factor when the local hour falls outside [6, 19], then clamped to 10.
func (s *Scorer) Assess(lat, lon float64, at time.Time) (*Assessment, error) {
	if !s.Ready() {
		metrics.RecordRiskRequest("degraded", 0)
		return nil, ErrUnavailable
	}

	if at.IsZero() {
		at = s.now()
	}

	cluster := s.model.Predict(lat, lon)
	level := s.table.BaseLevel(cluster)

	night := isNight(at.Hour())
	if night {
		level *= nightFactor
	}
	if level > maxLevel {
		level = maxLevel
	}

	category, color := classify(level)
	metrics.RecordRiskRequest("success", level)

	return &Assessment{
		Level:    level,
		Category: category,
		Color:    color,
		Night:    night,
		Cluster:  cluster,
	}, nil
}

// isNight reports whether the hour is outside the daytime window [6, 19].
func isNight(hour int) bool {
	return hour < 6 || hour > 19
}

// classify maps a risk level to its tier. Boundaries are strict: a level of
// exactly 3 is still green, exactly 7 still yellow.
func classify(level float64) (category, color string) {
	switch {
	case level > 7:
		return "high", colorRed
	case level > 3:
		return "moderate", colorYellow
	default:
		return "low", colorGreen
	}
}
