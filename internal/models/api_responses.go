// Andariego - Tourism Geo-Recommendation and Risk Analysis
// Copyright 2026 Andariego contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/andariego-ec/andariego

// Package models defines the request and response types of the HTTP API.
package models

import (
	"time"
)

// APIResponse is the standardized response wrapper used by all HTTP endpoints.
//
// Status field values:
//   - "success": Request completed successfully, see Data field
//   - "error": Request failed, see Error field for details
//
// Example successful response:
//
//	{
//	  "status": "success",
//	  "data": {"outcome": "success", "site": {...}},
//	  "metadata": {"timestamp": "2026-08-28T12:00:00Z", "query_time_ms": 12}
//	}
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "error": {
//	    "code": "VALIDATION_ERROR",
//	    "message": "Latitude must be a valid latitude (-90 to 90)",
//	    "details": {"field": "Latitude"}
//	  },
//	  "metadata": {"timestamp": "2026-08-28T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata for observability.
//
// Fields:
//   - Timestamp: Server time when the response was generated (RFC3339)
//   - QueryTimeMS: Request processing time in milliseconds
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
}

// APIError represents an error response with structured details.
//
// Common error codes:
//   - VALIDATION_ERROR: Invalid input parameters
//   - NOT_FOUND: Resource doesn't exist
//   - CATALOG_ERROR: Site catalog query failure
//   - RISK_UNAVAILABLE: Risk model artifacts missing or unreadable
//   - RATE_LIMIT_EXCEEDED: Too many requests
//   - INTERNAL_ERROR: Unexpected server failure
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
