// Andariego - Tourism Geo-Recommendation and Risk Analysis
// Copyright 2026 Andariego contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/andariego-ec/andariego

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey string

const requestIDKey contextKey = "request_id"

// GenerateRequestID creates a new unique request ID.
func GenerateRequestID() string {
	return uuid.New().String()
}

// ContextWithRequestID returns a new context carrying the given request ID.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext retrieves the request ID from context.
// Returns empty string if not present.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// Ctx returns a logger with the request ID from context automatically added.
// This is the recommended way to log inside handlers and engine methods.
//
//	logging.Ctx(ctx).Info().Msg("Identification complete")
func Ctx(ctx context.Context) *zerolog.Logger {
	logger := Logger()
	if id := RequestIDFromContext(ctx); id != "" {
		logger = logger.With().Str("request_id", id).Logger()
	}
	return &logger
}
