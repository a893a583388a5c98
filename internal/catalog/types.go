// Andariego - Tourism Geo-Recommendation and Risk Analysis
// Copyright 2026 Andariego contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/andariego-ec/andariego

// Package catalog provides the read-mostly tourist site catalog backing the
// recommendation engine. Sites are curated offline and loaded at startup;
// request handling never mutates them.
package catalog

import (
	"time"

	"github.com/andariego-ec/andariego/internal/geo"
)

// Category is the enumerated site category tag used by the bias model.
type Category string

// Site categories. These mirror the curated catalog taxonomy.
const (
	CategoryCity      Category = "city"
	CategoryWaterfall Category = "waterfall"
	CategoryLagoon    Category = "lagoon"
	CategoryBeach     Category = "beach"
	CategoryPark      Category = "park"
	CategoryMonument  Category = "monument"
	CategoryCultural  Category = "cultural"
	CategoryOther     Category = "other"
)

// Site is a catalog entry for a tourist site.
type Site struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Category  Category  `json:"category"`
	Province  string    `json:"province"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Active    bool      `json:"active"`
	ImagePath string    `json:"image_path,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Coordinate returns the site location as a geo.Coordinate.
func (s *Site) Coordinate() geo.Coordinate {
	return geo.Coordinate{Lat: s.Latitude, Lon: s.Longitude}
}

// HasReferenceImage reports whether a reference image is registered for
// visual identification.
func (s *Site) HasReferenceImage() bool {
	return s.ImagePath != ""
}
