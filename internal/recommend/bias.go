// Andariego - Tourism Geo-Recommendation and Risk Analysis
// Copyright 2026 Andariego contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/andariego-ec/andariego

package recommend

import (
	"sort"

	"github.com/andariego-ec/andariego/internal/catalog"
)

// labelCategories maps object-detection labels to site categories. Labels
// absent from this table contribute to no category.
var labelCategories = map[string]catalog.Category{
	"restaurant": catalog.CategoryCity,
	"cafe":       catalog.CategoryCity,
	"bar":        catalog.CategoryCity,
	"bakery":     catalog.CategoryCity,
	"hotel":      catalog.CategoryCity,
	"shop":       catalog.CategoryCity,
	"market":     catalog.CategoryCity,
	"surfboard":  catalog.CategoryBeach,
	"beach":      catalog.CategoryBeach,
	"boat":       catalog.CategoryBeach,
	"park":       catalog.CategoryPark,
	"tree":       catalog.CategoryPark,
	"mountain":   catalog.CategoryPark,
	"waterfall":  catalog.CategoryWaterfall,
	"lake":       catalog.CategoryLagoon,
	"monument":   catalog.CategoryMonument,
}

// PreferredCategory aggregates detection counts per site category and returns
// the category with the highest total. The boolean is false when no detected
// label maps to any known category.
//
// Ties break lexicographically by category name, which keeps the result
// deterministic regardless of map iteration order.
func PreferredCategory(labels map[string]int) (catalog.Category, bool) {
	scores := make(map[catalog.Category]int)
	for label, count := range labels {
		if cat, ok := labelCategories[label]; ok && count > 0 {
			scores[cat] += count
		}
	}
	if len(scores) == 0 {
		return "", false
	}

	var best catalog.Category
	bestScore := -1
	for cat, score := range scores {
		if score > bestScore || (score == bestScore && cat < best) {
			best = cat
			bestScore = score
		}
	}
	return best, true
}

// effectiveDistance applies the category bias to a candidate's distance for
// ranking. A candidate matching the preferred category is treated as if it
// were closer by the bias factor; the true distance reported to callers is
// never altered.
func effectiveDistance(distanceKm float64, siteCategory, preferred catalog.Category, biasFactor float64) float64 {
	if preferred != "" && siteCategory == preferred {
		return distanceKm * biasFactor
	}
	return distanceKm
}

// sortByEffectiveDistance orders candidates by biased distance, keeping the
// original distance-ascending order within equal effective distances.
func sortByEffectiveDistance(cs []Candidate, preferred catalog.Category, biasFactor float64) {
	sort.SliceStable(cs, func(i, j int) bool {
		return effectiveDistance(cs[i].DistanceKm, cs[i].Site.Category, preferred, biasFactor) <
			effectiveDistance(cs[j].DistanceKm, cs[j].Site.Category, preferred, biasFactor)
	})
}
