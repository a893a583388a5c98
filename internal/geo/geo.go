// Andariego - Tourism Geo-Recommendation and Risk Analysis
// Copyright 2026 Andariego contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/andariego-ec/andariego

// Package geo provides the great-circle distance kernel and the coordinate
// validation used by the candidate filter and the risk scorer.
package geo

import (
	"math"
	"strconv"
)

// EarthRadiusKm is the mean Earth radius used by the haversine formula.
const EarthRadiusKm = 6371.0

// Coordinate is a geographic point in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Region is a lat/lon bounding box. Sites whose coordinates fall outside
// the configured region are excluded from recommendation, not deleted.
type Region struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// Ecuador covers the continental and insular territory (Galápagos included).
var Ecuador = Region{
	MinLat: -6.0,
	MaxLat: 3.0,
	MinLon: -92.0,
	MaxLon: -75.0,
}

// Contains reports whether the coordinate lies within the region bounds.
func (r Region) Contains(c Coordinate) bool {
	return c.Lat >= r.MinLat && c.Lat <= r.MaxLat &&
		c.Lon >= r.MinLon && c.Lon <= r.MaxLon
}

// Distance calculates the great-circle distance in kilometers between two
// points using the haversine formula.
//
// Distance(a, b) == Distance(b, a) within floating-point tolerance, and
// Distance(p, p) == 0.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180.0
	lat2Rad := lat2 * math.Pi / 180.0
	dLat := (lat2 - lat1) * math.Pi / 180.0
	dLon := (lon2 - lon1) * math.Pi / 180.0

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// DistanceBetween is Distance over Coordinate values.
func DistanceBetween(a, b Coordinate) float64 {
	return Distance(a.Lat, a.Lon, b.Lat, b.Lon)
}

// ParseDistance computes the distance between two points given as strings.
// On any conversion failure it returns +Inf so the caller can treat the
// pair as never eligible instead of handling an error per item.
func ParseDistance(lat1, lon1, lat2, lon2 string) float64 {
	p1, err := ParseCoordinate(lat1, lon1)
	if err != nil {
		return math.Inf(1)
	}
	p2, err := ParseCoordinate(lat2, lon2)
	if err != nil {
		return math.Inf(1)
	}
	return DistanceBetween(p1, p2)
}

// ParseCoordinate converts string lat/lon values to a Coordinate.
func ParseCoordinate(lat, lon string) (Coordinate, error) {
	latF, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return Coordinate{}, err
	}
	lonF, err := strconv.ParseFloat(lon, 64)
	if err != nil {
		return Coordinate{}, err
	}
	return Coordinate{Lat: latF, Lon: lonF}, nil
}

// RoundKm rounds a distance to 2 decimal places for presentation.
func RoundKm(km float64) float64 {
	return math.Round(km*100) / 100
}
