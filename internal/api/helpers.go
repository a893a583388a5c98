// Andariego - Tourism Geo-Recommendation and Risk Analysis
// Copyright 2026 Andariego contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/andariego-ec/andariego

package api

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/andariego-ec/andariego/internal/logging"
	"github.com/andariego-ec/andariego/internal/models"
	"github.com/andariego-ec/andariego/internal/validation"
)

// maxUploadBytes bounds uploaded photo size (16 MiB).
const maxUploadBytes = 16 << 20

// sanitizeLogValue replaces control characters so attacker-supplied strings
// cannot forge log entries.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// respondJSON sends a JSON response with proper headers.
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondSuccess wraps data in the success envelope.
func respondSuccess(w http.ResponseWriter, status int, data interface{}, started time.Time) {
	respondJSON(w, status, &models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(started).Milliseconds(),
		},
	})
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, code, message string, err error) {
	if err != nil {
		logging.Error().Str("code", sanitizeLogValue(code)).Str("error", sanitizeLogValue(err.Error())).Msg("API Error")
	}

	respondJSON(w, status, &models.APIResponse{
		Status: "error",
		Data:   nil,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
		Error: &models.APIError{
			Code:    code,
			Message: message,
		},
	})
}

// validateRequest validates a struct, returning a VALIDATION_ERROR payload on
// failure.
func validateRequest(v interface{}) *models.APIError {
	validationErr := validation.ValidateStruct(v)
	if validationErr == nil {
		return nil
	}

	apiErr := validationErr.ToAPIError()
	return &models.APIError{
		Code:    apiErr.Code,
		Message: apiErr.Message,
		Details: apiErr.Details,
	}
}

// parseCoordinateParams reads latitude/longitude query parameters. Accepts
// both lat/lon and lat/lng spellings.
func parseCoordinateParams(r *http.Request) (lat, lon float64, err error) {
	latStr := r.URL.Query().Get("lat")
	lonStr := r.URL.Query().Get("lon")
	if lonStr == "" {
		lonStr = r.URL.Query().Get("lng")
	}
	if latStr == "" || lonStr == "" {
		return 0, 0, fmt.Errorf("lat and lon query parameters are required")
	}

	lat, err = strconv.ParseFloat(latStr, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("lat is not numeric")
	}
	lon, err = strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("lon is not numeric")
	}
	return lat, lon, nil
}

// parseCoordinateForm reads latitude/longitude fields from a multipart form.
func parseCoordinateForm(r *http.Request) (lat, lon float64, err error) {
	latStr := r.FormValue("latitude")
	lonStr := r.FormValue("longitude")
	if latStr == "" || lonStr == "" {
		return 0, 0, fmt.Errorf("latitude and longitude form fields are required")
	}

	lat, err = strconv.ParseFloat(latStr, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("latitude is not numeric")
	}
	lon, err = strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("longitude is not numeric")
	}
	return lat, lon, nil
}

// saveUpload copies the "image" part of a multipart request to a temp file
// and returns its path. The caller removes the file when done.
func saveUpload(r *http.Request) (string, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return "", fmt.Errorf("parse multipart form: %w", err)
	}

	part, _, err := r.FormFile("image")
	if err != nil {
		return "", fmt.Errorf("image file part missing: %w", err)
	}
	defer func() {
		_ = part.Close()
	}()

	tmp, err := os.CreateTemp("", "andariego-upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	if _, err := io.Copy(tmp, io.LimitReader(part, maxUploadBytes)); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("store upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("close upload: %w", err)
	}
	return tmp.Name(), nil
}
