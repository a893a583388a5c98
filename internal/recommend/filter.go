// Andariego - Tourism Geo-Recommendation and Risk Analysis
// Copyright 2026 Andariego contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/andariego-ec/andariego

package recommend

import (
	"context"
	"sort"

	"github.com/andariego-ec/andariego/internal/catalog"
	"github.com/andariego-ec/andariego/internal/geo"
	"github.com/andariego-ec/andariego/internal/logging"
	"github.com/andariego-ec/andariego/internal/metrics"
)

// FilterDiagnostics counts sites skipped while building a candidate list.
// Skips are diagnostic only, never per-item errors.
type FilterDiagnostics struct {
	OutOfRegion int
	Skipped     int
}

// filterCandidates returns the active sites within radiusKm of the query
// point, each paired with its distance, sorted ascending by distance.
//
// Sites with coordinates outside the configured region are skipped and
// logged; they stay in the catalog but never become candidates. An empty
// catalog yields an empty list, not an error.
func filterCandidates(ctx context.Context, sites []catalog.Site, origin geo.Coordinate, radiusKm float64, region geo.Region) ([]Candidate, FilterDiagnostics) {
	var diag FilterDiagnostics
	candidates := make([]Candidate, 0, len(sites))

	for _, site := range sites {
		if !site.Active {
			diag.Skipped++
			continue
		}
		if !region.Contains(site.Coordinate()) {
			diag.OutOfRegion++
			diag.Skipped++
			metrics.SitesSkippedTotal.WithLabelValues("out_of_region").Inc()
			logging.Ctx(ctx).Debug().
				Int64("site_id", site.ID).
				Float64("lat", site.Latitude).
				Float64("lon", site.Longitude).
				Msg("Site coordinate outside region, skipped")
			continue
		}

		dist := geo.DistanceBetween(origin, site.Coordinate())
		if dist > radiusKm {
			continue
		}
		candidates = append(candidates, Candidate{Site: site, DistanceKm: dist})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].DistanceKm < candidates[j].DistanceKm
	})

	metrics.CandidatesConsidered.Observe(float64(len(candidates)))
	return candidates, diag
}
