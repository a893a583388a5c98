// Andariego - Tourism Geo-Recommendation and Risk Analysis
// Copyright 2026 Andariego contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/andariego-ec/andariego

package models

// SiteInfo is the API projection of a catalog site.
type SiteInfo struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Category   string  `json:"category"`
	Province   string  `json:"province,omitempty"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	DistanceKm float64 `json:"distance_km"`
}

// IdentifyResponse reports the outcome of a photo identification.
//
// Outcome values:
//   - "success": a site matched visually at or above the match threshold
//   - "suggestion": no visual match, but a site sits within suggestion range
//   - "not_found": nothing matched; Nearest may still name the closest site
type IdentifyResponse struct {
	Outcome    string    `json:"outcome"`
	Site       *SiteInfo `json:"site,omitempty"`
	Similarity float64   `json:"similarity,omitempty"`
	Nearest    *SiteInfo `json:"nearest,omitempty"`
	Message    string    `json:"message,omitempty"`
}

// RecommendResponse reports a contextual recommendation.
//
// When no site lies within the recommendation range, Recommended is nil and
// Message explains the empty result; Nearest still names the closest site.
type RecommendResponse struct {
	Recommended *SiteInfo  `json:"recommended,omitempty"`
	Zone        string     `json:"zone,omitempty"`
	Nearby      []SiteInfo `json:"nearby"`
	Nearest     *SiteInfo  `json:"nearest,omitempty"`
	Message     string     `json:"message,omitempty"`
}

// NearbyResponse lists the closest active sites to a position.
type NearbyResponse struct {
	Sites []SiteInfo `json:"sites"`
}

// RelatedResponse lists sites related to a reference site by proximity and
// category.
type RelatedResponse struct {
	Site    SiteInfo   `json:"site"`
	Related []SiteInfo `json:"related"`
}

// RecognizeResponse reports object-detection results for an uploaded image.
type RecognizeResponse struct {
	Labels     map[string]int `json:"labels"`
	Zone       string         `json:"zone"`
	Businesses int            `json:"businesses"`
}

// RiskResponse reports the risk assessment for a position and time.
//
// Color is a hex code for direct UI rendering:
// green (#28a745) for level <= 3, yellow (#ffc107) up to 7, red (#dc3545) above.
type RiskResponse struct {
	Level     float64 `json:"level"`
	Category  string  `json:"category"`
	Color     string  `json:"color"`
	Night     bool    `json:"night"`
	ZoneIndex int     `json:"zone_index"`
}

// HealthResponse reports service health for GET /api/v1/health.
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Catalog   string `json:"catalog"`
	RiskModel string `json:"risk_model"`
}
