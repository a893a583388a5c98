// Andariego - Tourism Geo-Recommendation and Risk Analysis
// Copyright 2026 Andariego contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/andariego-ec/andariego

package supervisor

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/andariego-ec/andariego/internal/achievements"
	"github.com/andariego-ec/andariego/internal/logging"
)

// HTTPService runs an http.Server under supervision. Serve blocks until the
// context is canceled, then shuts the server down gracefully.
type HTTPService struct {
	server          *http.Server
	shutdownTimeout time.Duration
}

// NewHTTPService wraps an http.Server for the supervisor tree.
func NewHTTPService(server *http.Server, shutdownTimeout time.Duration) *HTTPService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &HTTPService{server: server, shutdownTimeout: shutdownTimeout}
}

// Serve implements suture.Service.
func (s *HTTPService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		logging.Info().Str("addr", s.server.Addr).Msg("HTTP server listening")
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			logging.Warn().Err(err).Msg("HTTP server shutdown incomplete")
			return err
		}
		logging.Info().Msg("HTTP server stopped")
		return ctx.Err()
	}
}

func (s *HTTPService) String() string { return "http-server" }

// TrackerService runs the achievements consumer under supervision.
type TrackerService struct {
	tracker *achievements.Tracker
}

// NewTrackerService wraps a tracker for the supervisor tree.
func NewTrackerService(tracker *achievements.Tracker) *TrackerService {
	return &TrackerService{tracker: tracker}
}

// Serve implements suture.Service.
func (s *TrackerService) Serve(ctx context.Context) error {
	return s.tracker.Run(ctx)
}

func (s *TrackerService) String() string { return "achievements-tracker" }
