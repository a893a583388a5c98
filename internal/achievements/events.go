// Andariego - Tourism Geo-Recommendation and Risk Analysis
// Copyright 2026 Andariego contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/andariego-ec/andariego

// Package achievements tracks confirmed site visits. Identifications publish
// visit events on an in-process bus; a consumer persists per-site visit
// counters in Badger and signals milestone crossings.
package achievements

import (
	"time"
)

// TopicSiteVisited is the bus topic carrying visit events.
const TopicSiteVisited = "site.visited"

// VisitEvent records one visually confirmed identification of a site.
type VisitEvent struct {
	SiteID     int64     `json:"site_id"`
	SiteName   string    `json:"site_name"`
	OccurredAt time.Time `json:"occurred_at"`
}
