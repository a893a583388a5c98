// Andariego - Tourism Geo-Recommendation and Risk Analysis
// Copyright 2026 Andariego contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/andariego-ec/andariego

package vision

// ZoneType classifies the surroundings of a query image from the density of
// detected business-related objects.
type ZoneType string

const (
	// ZoneTourist indicates a dense commercial/touristic area (5+ businesses).
	ZoneTourist ZoneType = "tourist"
	// ZoneUrban indicates a built-up area (2-4 businesses).
	ZoneUrban ZoneType = "urban"
	// ZoneRural indicates few or no detected businesses.
	ZoneRural ZoneType = "rural"
)

// businessLabels are the detection classes counted as local businesses.
var businessLabels = map[string]struct{}{
	"restaurant": {},
	"cafe":       {},
	"bar":        {},
	"bakery":     {},
	"shop":       {},
	"market":     {},
	"hotel":      {},
}

// ClassifyZone derives the zone type and the business-label total from a
// detection count map.
func ClassifyZone(labels map[string]int) (ZoneType, int) {
	total := 0
	for label, count := range labels {
		if _, ok := businessLabels[label]; ok {
			total += count
		}
	}

	switch {
	case total >= 5:
		return ZoneTourist, total
	case total >= 2:
		return ZoneUrban, total
	default:
		return ZoneRural, total
	}
}
