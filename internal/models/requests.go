// Andariego - Tourism Geo-Recommendation and Risk Analysis
// Copyright 2026 Andariego contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/andariego-ec/andariego

package models

// IdentifyRequest carries the coordinates accompanying an uploaded photo on
// POST /api/v1/identify. The photo itself arrives as a multipart file part.
type IdentifyRequest struct {
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
}

// RecommendRequest asks for a contextual recommendation around a position.
// Labels optionally carries object-detection counts from a prior recognize
// call; when present they bias the ranking toward the matching site category.
type RecommendRequest struct {
	Latitude  float64        `json:"latitude" validate:"latitude"`
	Longitude float64        `json:"longitude" validate:"longitude"`
	Labels    map[string]int `json:"labels,omitempty"`
}

// NearbyQuery holds the parsed query parameters of GET /api/v1/sites/nearby.
type NearbyQuery struct {
	Latitude  float64 `validate:"latitude"`
	Longitude float64 `validate:"longitude"`
}

// RiskQuery holds the parsed query parameters of GET /api/v1/risk.
// At is an optional RFC3339 timestamp; empty means "now".
type RiskQuery struct {
	Latitude  float64 `validate:"latitude"`
	Longitude float64 `validate:"longitude"`
	At        string  `validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}
