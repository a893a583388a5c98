// Andariego - Tourism Geo-Recommendation and Risk Analysis
// Copyright 2026 Andariego contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/andariego-ec/andariego

package vision

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/andariego-ec/andariego/internal/logging"
	"github.com/andariego-ec/andariego/internal/metrics"
)

// Detector counts labeled objects in an image. The result maps detected
// label names to occurrence counts.
type Detector interface {
	Detect(ctx context.Context, imagePath string) (map[string]int, error)
}

// DetectorConfig holds the external object-detection service settings.
type DetectorConfig struct {
	// URL is the detection endpoint. Empty disables detection.
	URL string `koanf:"url"`

	// Timeout bounds a single detection call.
	Timeout time.Duration `koanf:"timeout"`
}

// HTTPDetector calls an external object-detection service over HTTP.
// The call is wrapped in a circuit breaker so a degraded detection service
// cannot slow every identification request to its timeout.
type HTTPDetector struct {
	cfg    DetectorConfig
	client *http.Client
	cb     *gobreaker.CircuitBreaker[map[string]int]
}

// NewHTTPDetector creates a detector client with circuit breaker protection.
// The breaker opens after a 60% failure rate across at least 10 requests and
// probes recovery after 2 minutes.
func NewHTTPDetector(cfg DetectorConfig) *HTTPDetector {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	cb := gobreaker.NewCircuitBreaker[map[string]int](gobreaker.Settings{
		Name:        "object-detector",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
			logging.Info().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state transition")
		},
	})

	metrics.CircuitBreakerState.WithLabelValues(cb.Name()).Set(float64(cb.State()))

	return &HTTPDetector{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		cb:     cb,
	}
}

// Detect uploads the image and returns label counts.
func (d *HTTPDetector) Detect(ctx context.Context, imagePath string) (map[string]int, error) {
	if d.cfg.URL == "" {
		return map[string]int{}, nil
	}

	return d.cb.Execute(func() (map[string]int, error) {
		return d.detect(ctx, imagePath)
	})
}

func (d *HTTPDetector) detect(ctx context.Context, imagePath string) (map[string]int, error) {
	f, err := os.Open(imagePath) //nolint:gosec // path is a request temp file
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", filepath.Base(imagePath))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("copy image: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.cfg.URL, &body)
	if err != nil {
		return nil, fmt.Errorf("build detection request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("detection request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("detection service returned status %d", resp.StatusCode)
	}

	var result struct {
		Labels map[string]int `json:"labels"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode detection response: %w", err)
	}
	if result.Labels == nil {
		result.Labels = map[string]int{}
	}
	return result.Labels, nil
}

// NoopDetector returns no detections. Used when no detection service is
// configured.
type NoopDetector struct{}

// Detect returns an empty label map.
func (NoopDetector) Detect(_ context.Context, _ string) (map[string]int, error) {
	return map[string]int{}, nil
}
