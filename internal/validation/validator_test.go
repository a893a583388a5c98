// Andariego - Tourism Geo-Recommendation and Risk Analysis
// Copyright 2026 Andariego contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/andariego-ec/andariego

package validation

import (
	"strings"
	"testing"
)

type coordinatePayload struct {
	Latitude  float64 `validate:"latitude"`
	Longitude float64 `validate:"longitude"`
}

type boundedPayload struct {
	Name  string `validate:"required,min=2,max=10"`
	Limit int    `validate:"gte=1,lte=50"`
	Kind  string `validate:"omitempty,oneof=tourist urban rural"`
}

func TestValidateStructCoordinates(t *testing.T) {
	tests := []struct {
		name    string
		payload coordinatePayload
		wantErr bool
	}{
		{"valid quito", coordinatePayload{Latitude: -0.1807, Longitude: -78.4678}, false},
		{"zero zero", coordinatePayload{}, false},
		{"latitude too high", coordinatePayload{Latitude: 91, Longitude: 0}, true},
		{"latitude too low", coordinatePayload{Latitude: -90.5, Longitude: 0}, true},
		{"longitude too high", coordinatePayload{Latitude: 0, Longitude: 180.1}, true},
		{"longitude too low", coordinatePayload{Latitude: 0, Longitude: -181}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.payload)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateStruct() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateStructBounds(t *testing.T) {
	tests := []struct {
		name      string
		payload   boundedPayload
		wantErr   bool
		wantField string
	}{
		{"valid", boundedPayload{Name: "Cuenca", Limit: 5, Kind: "urban"}, false, ""},
		{"missing name", boundedPayload{Limit: 5}, true, "Name"},
		{"name too long", boundedPayload{Name: "Banos de Agua Santa", Limit: 5}, true, "Name"},
		{"limit too high", boundedPayload{Name: "Loja", Limit: 100}, true, "Limit"},
		{"bad kind", boundedPayload{Name: "Loja", Limit: 1, Kind: "suburban"}, true, "Kind"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.payload)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateStruct() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				return
			}
			if got := err.Errors()[0].Field(); got != tt.wantField {
				t.Errorf("failed field = %s, want %s", got, tt.wantField)
			}
		})
	}
}

func TestToAPIErrorSingleField(t *testing.T) {
	err := ValidateStruct(&coordinatePayload{Latitude: 95, Longitude: 0})
	if err == nil {
		t.Fatal("expected validation error")
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("code = %s, want VALIDATION_ERROR", apiErr.Code)
	}
	if !strings.Contains(apiErr.Message, "Latitude") {
		t.Errorf("message %q does not name the failed field", apiErr.Message)
	}
	if apiErr.Details["field"] != "Latitude" {
		t.Errorf("details field = %v, want Latitude", apiErr.Details["field"])
	}
}

func TestToAPIErrorMultipleFields(t *testing.T) {
	err := ValidateStruct(&boundedPayload{Limit: 999, Kind: "suburban"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if len(err.Errors()) != 3 {
		t.Fatalf("got %d errors, want 3", len(err.Errors()))
	}

	apiErr := err.ToAPIError()
	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok {
		t.Fatalf("details fields has type %T", apiErr.Details["fields"])
	}
	if len(fields) != 3 {
		t.Errorf("details list = %d entries, want 3", len(fields))
	}
}

func TestGetValidatorSingleton(t *testing.T) {
	if GetValidator() != GetValidator() {
		t.Error("GetValidator returned different instances")
	}
}
