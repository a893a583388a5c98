// Andariego - Tourism Geo-Recommendation and Risk Analysis
// Copyright 2026 Andariego contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/andariego-ec/andariego

package recommend

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"time"

	"github.com/andariego-ec/andariego/internal/catalog"
	"github.com/andariego-ec/andariego/internal/geo"
	"github.com/andariego-ec/andariego/internal/logging"
	"github.com/andariego-ec/andariego/internal/metrics"
	"github.com/andariego-ec/andariego/internal/vision"
)

// Config holds the tunable thresholds of the engine.
type Config struct {
	// MatchThreshold is the minimum similarity score for a confirmed visual
	// match. Calibrated empirically; false positives below it are expected.
	MatchThreshold float64

	// SearchRadiusKm bounds candidate gathering for photo identification.
	SearchRadiusKm float64

	// SuggestionRadiusKm is the distance under which an unmatched photo
	// still yields a suggestion naming the nearest site.
	SuggestionRadiusKm float64

	// MaxDistanceKm caps contextual recommendation and nearby listings.
	MaxDistanceKm float64

	// BiasFactor scales the ranking distance of category-matched sites.
	BiasFactor float64

	NearbyLimit  int
	RelatedLimit int

	// Region bounds valid site coordinates. Sites outside it are skipped.
	Region geo.Region

	// ImageDir resolves relative site reference-image paths.
	ImageDir string
}

// DefaultConfig returns the production thresholds.
func DefaultConfig() Config {
	return Config{
		MatchThreshold:     0.70,
		SearchRadiusKm:     10.0,
		SuggestionRadiusKm: 0.20,
		MaxDistanceKm:      50.0,
		BiasFactor:         0.6,
		NearbyLimit:        5,
		RelatedLimit:       4,
		Region:             geo.Ecuador,
	}
}

// VisitPublisher signals that a site was visually confirmed as visited.
// Implementations must tolerate concurrent calls.
type VisitPublisher interface {
	PublishVisit(ctx context.Context, siteID int64, siteName string) error
}

// Engine combines the candidate filter, category bias, and similarity oracle
// into the identification and recommendation decision policies.
//
// The engine is stateless across requests; the catalog and oracle are
// read-only collaborators injected at construction.
type Engine struct {
	store     catalog.Store
	oracle    vision.Oracle
	publisher VisitPublisher
	cfg       Config
}

// NewEngine creates an engine. publisher may be nil to disable the visit
// side effect.
func NewEngine(store catalog.Store, oracle vision.Oracle, publisher VisitPublisher, cfg Config) *Engine {
	if oracle == nil {
		oracle = vision.NoopOracle{}
	}
	return &Engine{
		store:     store,
		oracle:    oracle,
		publisher: publisher,
		cfg:       cfg,
	}
}

// IdentifyFromPhoto classifies an uploaded photo against the catalog.
//
// Decision policy:
//  1. Gather candidates within the search radius; empty list is not_found.
//  2. Score every candidate that has a reference image; the maximum wins,
//     ties keep the first found in distance-ascending order.
//  3. Best score at or above the match threshold is a confirmed success.
//  4. Otherwise, a nearest candidate within the suggestion radius becomes a
//     suggestion, without claiming visual confirmation.
//  5. Otherwise not_found, with the nearest candidate as auxiliary info.
//
// On success the visit side effect is published exactly once.
func (e *Engine) IdentifyFromPhoto(ctx context.Context, photoPath string, origin geo.Coordinate) (*IdentifyResult, error) {
	sites, err := e.store.ListActiveSites(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active sites: %w", err)
	}

	candidates, diag := filterCandidates(ctx, sites, origin, e.cfg.SearchRadiusKm, e.cfg.Region)
	if diag.Skipped > 0 {
		logging.Ctx(ctx).Debug().Int("skipped", diag.Skipped).Msg("Sites skipped during candidate filtering")
	}

	if len(candidates) == 0 {
		metrics.RecordIdentification(string(OutcomeNotFound), 0)
		return &IdentifyResult{
			Outcome: OutcomeNotFound,
			Message: fmt.Sprintf("no registered sites within %.0f km", e.cfg.SearchRadiusKm),
		}, nil
	}

	best, bestScore := e.scoreCandidates(ctx, photoPath, candidates)

	if best != nil && bestScore >= e.cfg.MatchThreshold {
		metrics.RecordIdentification(string(OutcomeSuccess), bestScore)
		e.publishVisit(ctx, best.Site)
		return &IdentifyResult{
			Outcome:    OutcomeSuccess,
			Site:       &best.Site,
			DistanceKm: geo.RoundKm(best.DistanceKm),
			Similarity: bestScore,
			Message:    fmt.Sprintf("identified as %s", best.Site.Name),
		}, nil
	}

	nearest := candidates[0]
	if nearest.DistanceKm <= e.cfg.SuggestionRadiusKm {
		metrics.RecordIdentification(string(OutcomeSuggestion), bestScore)
		return &IdentifyResult{
			Outcome:    OutcomeSuggestion,
			Site:       &nearest.Site,
			DistanceKm: geo.RoundKm(nearest.DistanceKm),
			Similarity: bestScore,
			Message:    fmt.Sprintf("no visual match, but you appear to be at %s", nearest.Site.Name),
		}, nil
	}

	metrics.RecordIdentification(string(OutcomeNotFound), bestScore)
	return &IdentifyResult{
		Outcome:    OutcomeNotFound,
		Similarity: bestScore,
		Nearest:    &nearest,
		Message:    fmt.Sprintf("no match; closest registered site is %s at %.2f km", nearest.Site.Name, nearest.DistanceKm),
	}, nil
}

// scoreCandidates runs the similarity oracle over every candidate with a
// reference image. Returns the best-scoring candidate, nil when none has a
// reference image. Iteration follows the distance-sorted list, so ties keep
// the closest site.
func (e *Engine) scoreCandidates(ctx context.Context, photoPath string, candidates []Candidate) (*Candidate, float64) {
	var best *Candidate
	bestScore := 0.0

	for i := range candidates {
		c := &candidates[i]
		if !c.Site.HasReferenceImage() {
			continue
		}

		start := time.Now()
		score := e.oracle.Similarity(ctx, photoPath, e.resolveImage(c.Site.ImagePath))
		metrics.SimilarityDuration.Observe(time.Since(start).Seconds())

		if best == nil || score > bestScore {
			best = c
			bestScore = score
		}
	}
	return best, bestScore
}

// RecommendByContext selects the best site for a position and an optional
// detection context, with no hard radius cutoff on the candidate pool.
//
// The detection context biases ranking toward its matching category: a
// category-matched site competes with its distance scaled by the bias
// factor. The reported distance is always the true distance. When the
// selected site's true distance exceeds the cap, nothing is recommended but
// that site is still named.
func (e *Engine) RecommendByContext(ctx context.Context, origin geo.Coordinate, labels map[string]int) (*ContextResult, error) {
	sites, err := e.store.ListActiveSites(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active sites: %w", err)
	}

	preferred, hasPreference := PreferredCategory(labels)

	// Unbounded radius: every valid site competes.
	candidates, _ := filterCandidates(ctx, sites, origin, math.Inf(1), e.cfg.Region)
	if len(candidates) == 0 {
		return &ContextResult{Message: "no sites available"}, nil
	}

	result := &ContextResult{}
	if hasPreference {
		result.PreferredCategory = preferred
	}

	// Selection runs before the cap: the cap applies to the true distance of
	// the biased winner, so a category-matched site beyond it is refused even
	// when a closer unmatched site exists.
	selected := &candidates[0]
	bestEffective := math.Inf(1)
	for i := range candidates {
		c := &candidates[i]
		eff := effectiveDistance(c.DistanceKm, c.Site.Category, result.PreferredCategory, e.cfg.BiasFactor)
		if eff < bestEffective {
			bestEffective = eff
			selected = c
		}
	}

	if selected.DistanceKm > e.cfg.MaxDistanceKm {
		result.Nearest = selected
		result.Message = fmt.Sprintf("no sites within %.0f km; closest is %s at %.2f km",
			e.cfg.MaxDistanceKm, selected.Site.Name, selected.DistanceKm)
		return result, nil
	}

	result.Nearest = &candidates[0]
	result.Recommended = &selected.Site
	result.DistanceKm = geo.RoundKm(selected.DistanceKm)
	result.Message = fmt.Sprintf("recommended %s at %.2f km", selected.Site.Name, selected.DistanceKm)
	return result, nil
}

// NearbySites lists the closest sites to a position within the wide radius,
// capped at the nearby limit.
func (e *Engine) NearbySites(ctx context.Context, origin geo.Coordinate) ([]Candidate, error) {
	sites, err := e.store.ListActiveSites(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active sites: %w", err)
	}

	candidates, _ := filterCandidates(ctx, sites, origin, e.cfg.MaxDistanceKm, e.cfg.Region)
	if len(candidates) > e.cfg.NearbyLimit {
		candidates = candidates[:e.cfg.NearbyLimit]
	}
	return candidates, nil
}

// RelatedSites lists sites related to a reference site: sites within the wide
// radius of it, ranked with the reference site's own category preferred, the
// site itself excluded.
func (e *Engine) RelatedSites(ctx context.Context, siteID int64) (*catalog.Site, []Candidate, error) {
	site, err := e.store.GetSite(ctx, siteID)
	if err != nil {
		return nil, nil, err
	}

	sites, err := e.store.ListActiveSites(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list active sites: %w", err)
	}

	candidates, _ := filterCandidates(ctx, sites, site.Coordinate(), e.cfg.MaxDistanceKm, e.cfg.Region)

	related := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Site.ID == site.ID {
			continue
		}
		related = append(related, c)
	}

	// Same-category sites rank first via the bias factor; order within each
	// group stays distance-ascending.
	sortByEffectiveDistance(related, site.Category, e.cfg.BiasFactor)

	if len(related) > e.cfg.RelatedLimit {
		related = related[:e.cfg.RelatedLimit]
	}
	return site, related, nil
}

// publishVisit signals the achievements collaborator once per confirmed
// identification. Failures are logged, never surfaced to the caller.
func (e *Engine) publishVisit(ctx context.Context, site catalog.Site) {
	if e.publisher == nil {
		return
	}
	if err := e.publisher.PublishVisit(ctx, site.ID, site.Name); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Int64("site_id", site.ID).Msg("Visit event publish failed")
	}
}

// resolveImage joins a relative reference-image path with the image dir.
func (e *Engine) resolveImage(path string) string {
	if path == "" || filepath.IsAbs(path) || e.cfg.ImageDir == "" {
		return path
	}
	return filepath.Join(e.cfg.ImageDir, path)
}
