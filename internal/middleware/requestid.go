// Andariego - Tourism Geo-Recommendation and Risk Analysis
// Copyright 2026 Andariego contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/andariego-ec/andariego

// Package middleware provides HTTP middleware shared by all API routes.
package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/andariego-ec/andariego/internal/logging"
)

type contextKey string

// RequestIDKey is the context key holding the request ID.
const RequestIDKey contextKey = "request_id"

// RequestID assigns each request a unique ID, honoring an upstream
// X-Request-ID header when present. The ID lands in the response header, the
// request context, and the logging context for request-scoped tracing.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		w.Header().Set("X-Request-ID", requestID)

		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		ctx = logging.ContextWithRequestID(ctx, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID extracts the request ID from context, empty when absent.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}
