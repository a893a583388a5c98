// Andariego - Tourism Geo-Recommendation and Risk Analysis
// Copyright 2026 Andariego contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/andariego-ec/andariego

package logging

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/rs/zerolog"
)

// WatermillAdapter implements watermill.LoggerAdapter on top of zerolog so
// the achievements Pub/Sub logs through the same pipeline as everything else.
type WatermillAdapter struct {
	logger zerolog.Logger
}

// NewWatermillAdapter creates a watermill logger backed by the global logger.
func NewWatermillAdapter() *WatermillAdapter {
	return &WatermillAdapter{logger: Logger()}
}

// Error logs an error message with fields.
func (a *WatermillAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.event(a.logger.Error().Err(err), fields).Msg(msg)
}

// Info logs an info message with fields.
func (a *WatermillAdapter) Info(msg string, fields watermill.LogFields) {
	a.event(a.logger.Info(), fields).Msg(msg)
}

// Debug logs a debug message with fields.
func (a *WatermillAdapter) Debug(msg string, fields watermill.LogFields) {
	a.event(a.logger.Debug(), fields).Msg(msg)
}

// Trace logs a trace message with fields.
func (a *WatermillAdapter) Trace(msg string, fields watermill.LogFields) {
	a.event(a.logger.Trace(), fields).Msg(msg)
}

// With returns a child adapter with the fields attached to every message.
func (a *WatermillAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	ctx := a.logger.With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	return &WatermillAdapter{logger: ctx.Logger()}
}

func (a *WatermillAdapter) event(e *zerolog.Event, fields watermill.LogFields) *zerolog.Event {
	for k, v := range fields {
		e = e.Interface(k, v)
	}
	return e
}
