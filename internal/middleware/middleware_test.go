// Andariego - Tourism Geo-Recommendation and Risk Analysis
// Copyright 2026 Andariego contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/andariego-ec/andariego

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequestIDGenerated(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if seen == "" {
		t.Error("request ID missing from context")
	}
	if got := rec.Header().Get("X-Request-ID"); got != seen {
		t.Errorf("header ID = %q, context ID = %q", got, seen)
	}
}

func TestRequestIDHonorsUpstream(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "upstream-123")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if seen != "upstream-123" {
		t.Errorf("request ID = %q, want upstream-123", seen)
	}
}

func TestPrometheusMetricsCapturesStatus(t *testing.T) {
	handler := PrometheusMetrics(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/whatever", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want passthrough 418", rec.Code)
	}
}
