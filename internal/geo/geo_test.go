// Andariego - Tourism Geo-Recommendation and Risk Analysis
// Copyright 2026 Andariego contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/andariego-ec/andariego

package geo

import (
	"math"
	"testing"
)

func TestDistanceIdentity(t *testing.T) {
	points := []Coordinate{
		{Lat: 0, Lon: 0},
		{Lat: -2.1894, Lon: -79.8891}, // Guayaquil
		{Lat: -0.1807, Lon: -78.4678}, // Quito
		{Lat: -0.7432, Lon: -90.3138}, // Puerto Ayora
	}

	for _, p := range points {
		if d := DistanceBetween(p, p); d != 0 {
			t.Errorf("Distance(p, p) = %f, want 0 for %+v", d, p)
		}
	}
}

func TestDistanceSymmetry(t *testing.T) {
	a := Coordinate{Lat: -2.1894, Lon: -79.8891}
	b := Coordinate{Lat: -0.1807, Lon: -78.4678}

	ab := DistanceBetween(a, b)
	ba := DistanceBetween(b, a)
	if math.Abs(ab-ba) > 1e-9 {
		t.Errorf("Distance not symmetric: %f vs %f", ab, ba)
	}
}

func TestDistanceKnownValue(t *testing.T) {
	// Guayaquil to Quito is roughly 270 km great-circle.
	d := Distance(-2.1894, -79.8891, -0.1807, -78.4678)
	if d < 250 || d > 290 {
		t.Errorf("Guayaquil-Quito distance = %f km, expected ~270 km", d)
	}
}

func TestParseDistanceInvalidInput(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 string
	}{
		{"empty first lat", "", "-79.9", "-2.2", "-79.9"},
		{"non-numeric", "abc", "-79.9", "-2.2", "-79.9"},
		{"non-numeric second pair", "-2.2", "-79.9", "x", "y"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := ParseDistance(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if !math.IsInf(d, 1) {
				t.Errorf("expected +Inf sentinel, got %f", d)
			}
		})
	}
}

func TestParseDistanceValid(t *testing.T) {
	d := ParseDistance("-2.1894", "-79.8891", "-2.1894", "-79.8891")
	if d != 0 {
		t.Errorf("expected 0 for identical points, got %f", d)
	}
}

func TestRegionContains(t *testing.T) {
	tests := []struct {
		name  string
		coord Coordinate
		want  bool
	}{
		{"Guayaquil", Coordinate{Lat: -2.1894, Lon: -79.8891}, true},
		{"Quito", Coordinate{Lat: -0.1807, Lon: -78.4678}, true},
		{"Galápagos", Coordinate{Lat: -0.7432, Lon: -90.3138}, true},
		{"Bogotá (out of bounds north)", Coordinate{Lat: 4.71, Lon: -74.07}, false},
		{"Lima (out of bounds south)", Coordinate{Lat: -12.04, Lon: -77.04}, false},
		{"mid-Pacific (out of bounds west)", Coordinate{Lat: 0, Lon: -100}, false},
		{"northern edge", Coordinate{Lat: 3.0, Lon: -78.0}, true},
		{"southern edge", Coordinate{Lat: -6.0, Lon: -78.0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Ecuador.Contains(tt.coord); got != tt.want {
				t.Errorf("Ecuador.Contains(%+v) = %v, want %v", tt.coord, got, tt.want)
			}
		})
	}
}

func TestRoundKm(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{1.005, 1.0}, // 1.005 is not exactly representable; rounds down
		{2.678, 2.68},
		{0, 0},
		{10.2, 10.2},
	}
	for _, tt := range tests {
		if got := RoundKm(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("RoundKm(%f) = %f, want %f", tt.in, got, tt.want)
		}
	}
}
