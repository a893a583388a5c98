// Andariego - Tourism Geo-Recommendation and Risk Analysis
// Copyright 2026 Andariego contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/andariego-ec/andariego

// Package supervisor provides Suture-based process supervision. The tree has
// two layers: events (achievements consumer) and api (HTTP server), so a
// crash in event handling never takes down request serving.
package supervisor

import (
	"context"
	"log/slog"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"
)

// TreeConfig holds supervisor tree configuration.
type TreeConfig struct {
	// FailureThreshold is the number of failures before entering backoff.
	FailureThreshold float64

	// FailureDecay is the rate at which failures decay in seconds.
	FailureDecay float64

	// FailureBackoff is the duration to wait when the threshold is exceeded.
	FailureBackoff time.Duration

	// ShutdownTimeout is the maximum wait for graceful shutdown.
	ShutdownTimeout time.Duration
}

// DefaultTreeConfig matches suture's built-in defaults.
func DefaultTreeConfig() TreeConfig {
	return TreeConfig{
		FailureThreshold: 5.0,
		FailureDecay:     30.0,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	}
}

// Tree manages the service hierarchy.
type Tree struct {
	root   *suture.Supervisor
	events *suture.Supervisor
	api    *suture.Supervisor
	config TreeConfig
}

// NewTree creates the supervisor tree. Events are logged through slog via
// sutureslog.
func NewTree(logger *slog.Logger, config TreeConfig) *Tree {
	if config.FailureThreshold == 0 {
		config.FailureThreshold = 5.0
	}
	if config.FailureDecay == 0 {
		config.FailureDecay = 30.0
	}
	if config.FailureBackoff == 0 {
		config.FailureBackoff = 15 * time.Second
	}
	if config.ShutdownTimeout == 0 {
		config.ShutdownTimeout = 10 * time.Second
	}

	// sutureslog's Handler has a pointer-receiver MustHook.
	handler := &sutureslog.Handler{Logger: logger}
	eventHook := handler.MustHook()

	rootSpec := suture.Spec{
		EventHook:        eventHook,
		FailureThreshold: config.FailureThreshold,
		FailureDecay:     config.FailureDecay,
		FailureBackoff:   config.FailureBackoff,
		Timeout:          config.ShutdownTimeout,
	}
	childSpec := suture.Spec{
		FailureThreshold: config.FailureThreshold,
		FailureDecay:     config.FailureDecay,
		FailureBackoff:   config.FailureBackoff,
		Timeout:          config.ShutdownTimeout,
	}

	root := suture.New("andariego", rootSpec)
	events := suture.New("events-layer", childSpec)
	api := suture.New("api-layer", childSpec)

	root.Add(events)
	root.Add(api)

	return &Tree{
		root:   root,
		events: events,
		api:    api,
		config: config,
	}
}

// AddEventService adds a service to the events layer.
func (t *Tree) AddEventService(svc suture.Service) suture.ServiceToken {
	return t.events.Add(svc)
}

// AddAPIService adds a service to the API layer.
func (t *Tree) AddAPIService(svc suture.Service) suture.ServiceToken {
	return t.api.Add(svc)
}

// Serve starts the tree and blocks until the context is canceled.
func (t *Tree) Serve(ctx context.Context) error {
	return t.root.Serve(ctx)
}

// UnstoppedServiceReport lists services that missed the shutdown timeout.
func (t *Tree) UnstoppedServiceReport() ([]suture.UnstoppedService, error) {
	return t.root.UnstoppedServiceReport()
}
