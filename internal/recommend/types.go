// Andariego - Tourism Geo-Recommendation and Risk Analysis
// Copyright 2026 Andariego contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/andariego-ec/andariego

// Package recommend implements the geo-contextual recommendation engine:
// radius-bounded candidate search, category-biased ranking, and the decision
// policies for photo identification and contextual recommendation.
package recommend

import (
	"github.com/andariego-ec/andariego/internal/catalog"
)

// Outcome tags the result of a photo identification.
type Outcome string

const (
	// OutcomeSuccess means a candidate matched visually at or above the
	// match threshold.
	OutcomeSuccess Outcome = "success"

	// OutcomeSuggestion means no visual match, but the nearest candidate is
	// close enough to suggest without claiming visual confirmation.
	OutcomeSuggestion Outcome = "suggestion"

	// OutcomeNotFound means no candidate matched or was close enough.
	OutcomeNotFound Outcome = "not_found"
)

// Candidate pairs a catalog site with its distance from the query point.
// Candidates are request-scoped, derived, never persisted.
type Candidate struct {
	Site       catalog.Site
	DistanceKm float64
}

// IdentifyResult is the outcome of identifying a site from a photo.
type IdentifyResult struct {
	Outcome Outcome

	// Site is the matched or suggested site. Nil for not_found.
	Site *catalog.Site

	// DistanceKm is the true distance to Site, when Site is set.
	DistanceKm float64

	// Similarity is the best visual score observed, when an oracle ran.
	Similarity float64

	// Nearest names the closest candidate for not_found results, so the
	// caller can still show "closest registered site" context. Nil when the
	// candidate list was empty.
	Nearest *Candidate

	Message string
}

// ContextResult is the outcome of a contextual recommendation.
type ContextResult struct {
	// Recommended is the selected site. Nil when the true nearest site is
	// beyond the recommendation cap.
	Recommended *catalog.Site

	// DistanceKm is the true (unbiased) distance to Recommended.
	DistanceKm float64

	// Nearest always tracks the closest site by true distance, even when it
	// exceeds the cap and nothing is recommended.
	Nearest *Candidate

	// PreferredCategory is the category the detection context biased toward,
	// empty when no context was given or no label mapped.
	PreferredCategory catalog.Category

	Message string
}
