// Andariego - Tourism Geo-Recommendation and Risk Analysis
// Copyright 2026 Andariego contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/andariego-ec/andariego

package vision

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/andariego-ec/andariego/internal/metrics"
)

// writeTestImage writes a small synthetic PNG with a horizontal gradient
// offset, so different offsets produce perceptually different images.
func writeTestImage(t *testing.T, dir, name string, offset uint8) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			v := uint8(x*4) + offset
			if offset > 128 && (x+y)%2 == 0 {
				// Break up the gradient so high offsets differ structurally.
				v = uint8(y * 4)
			}
			img.Set(x, y, color.RGBA{R: v, G: v / 2, B: 255 - v, A: 255})
		}
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path) //nolint:gosec // test temp dir
	if err != nil {
		t.Fatalf("create test image: %v", err)
	}
	defer func() {
		_ = f.Close()
	}()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return path
}

func TestPerceptualOracleIdenticalImages(t *testing.T) {
	dir := t.TempDir()
	a := writeTestImage(t, dir, "a.png", 0)
	b := writeTestImage(t, dir, "b.png", 0)

	oracle := NewPerceptualOracle(16, time.Minute)
	score := oracle.Similarity(context.Background(), a, b)
	if score < 0.99 {
		t.Errorf("identical images scored %f, want ~1.0", score)
	}
}

func TestPerceptualOracleDifferentImages(t *testing.T) {
	dir := t.TempDir()
	a := writeTestImage(t, dir, "a.png", 0)
	b := writeTestImage(t, dir, "b.png", 200)

	oracle := NewPerceptualOracle(16, time.Minute)
	same := oracle.Similarity(context.Background(), a, a)
	diff := oracle.Similarity(context.Background(), a, b)
	if diff > same {
		t.Errorf("dissimilar pair scored %f above identical pair %f", diff, same)
	}
}

func TestPerceptualOracleScoreBounds(t *testing.T) {
	dir := t.TempDir()
	a := writeTestImage(t, dir, "a.png", 0)
	b := writeTestImage(t, dir, "b.png", 200)

	oracle := NewPerceptualOracle(16, time.Minute)
	for _, pair := range [][2]string{{a, a}, {a, b}, {b, a}} {
		score := oracle.Similarity(context.Background(), pair[0], pair[1])
		if score < 0.0 || score > 1.0 {
			t.Errorf("score %f out of [0,1]", score)
		}
	}
}

func TestPerceptualOracleMissingFileDegradesToZero(t *testing.T) {
	dir := t.TempDir()
	a := writeTestImage(t, dir, "a.png", 0)

	oracle := NewPerceptualOracle(16, time.Minute)

	if score := oracle.Similarity(context.Background(), "/nonexistent.png", a); score != 0.0 {
		t.Errorf("missing query image: score = %f, want 0.0", score)
	}
	if score := oracle.Similarity(context.Background(), a, "/nonexistent.png"); score != 0.0 {
		t.Errorf("missing reference image: score = %f, want 0.0", score)
	}
}

func TestPerceptualOracleCachesReferenceHashes(t *testing.T) {
	dir := t.TempDir()
	a := writeTestImage(t, dir, "a.png", 0)
	ref := writeTestImage(t, dir, "ref.png", 0)

	oracle := NewPerceptualOracle(16, time.Minute)
	oracle.Similarity(context.Background(), a, ref)
	oracle.Similarity(context.Background(), a, ref)

	hits, _, size := oracle.refCache.Stats()
	if size != 1 {
		t.Errorf("reference cache size = %d, want 1", size)
	}
	if hits < 1 {
		t.Errorf("reference cache hits = %d, want >= 1", hits)
	}
}

func TestNoopOracle(t *testing.T) {
	if score := (NoopOracle{}).Similarity(context.Background(), "a", "b"); score != 0.0 {
		t.Errorf("NoopOracle score = %f, want 0.0", score)
	}
}

func TestClassifyZone(t *testing.T) {
	tests := []struct {
		name      string
		labels    map[string]int
		wantZone  ZoneType
		wantTotal int
	}{
		{"empty", map[string]int{}, ZoneRural, 0},
		{"nil", nil, ZoneRural, 0},
		{"non-business labels only", map[string]int{"tree": 4, "dog": 2}, ZoneRural, 0},
		{"one business", map[string]int{"cafe": 1}, ZoneRural, 1},
		{"urban threshold", map[string]int{"cafe": 1, "shop": 1}, ZoneUrban, 2},
		{"tourist threshold", map[string]int{"restaurant": 3, "hotel": 2}, ZoneTourist, 5},
		{"mixed labels", map[string]int{"restaurant": 2, "tree": 10, "bar": 1}, ZoneUrban, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			zone, total := ClassifyZone(tt.labels)
			if zone != tt.wantZone || total != tt.wantTotal {
				t.Errorf("ClassifyZone() = (%s, %d), want (%s, %d)", zone, total, tt.wantZone, tt.wantTotal)
			}
		})
	}
}

func TestHTTPDetectorDetect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"labels": {"restaurant": 2, "tree": 1}}`))
	}))
	defer srv.Close()

	dir := t.TempDir()
	img := writeTestImage(t, dir, "a.png", 0)

	detector := NewHTTPDetector(DetectorConfig{URL: srv.URL, Timeout: 5 * time.Second})
	labels, err := detector.Detect(context.Background(), img)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if labels["restaurant"] != 2 || labels["tree"] != 1 {
		t.Errorf("labels = %v", labels)
	}
}

func TestHTTPDetectorUnconfigured(t *testing.T) {
	detector := NewHTTPDetector(DetectorConfig{})
	labels, err := detector.Detect(context.Background(), "whatever.png")
	if err != nil {
		t.Fatalf("Detect with empty URL: %v", err)
	}
	if len(labels) != 0 {
		t.Errorf("expected empty labels, got %v", labels)
	}
}

func TestHTTPDetectorServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	dir := t.TempDir()
	img := writeTestImage(t, dir, "a.png", 0)

	detector := NewHTTPDetector(DetectorConfig{URL: srv.URL, Timeout: 5 * time.Second})
	if _, err := detector.Detect(context.Background(), img); err == nil {
		t.Error("expected error from failing detection service")
	}
}

func TestHTTPDetectorBreakerOpensAndRecordsState(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	dir := t.TempDir()
	img := writeTestImage(t, dir, "a.png", 0)

	detector := NewHTTPDetector(DetectorConfig{URL: srv.URL, Timeout: 5 * time.Second})
	gauge := metrics.CircuitBreakerState.WithLabelValues("object-detector")
	if state := testutil.ToFloat64(gauge); state != 0 {
		t.Fatalf("initial breaker state = %v, want 0 (closed)", state)
	}

	// The breaker trips after 10 requests at a 60% failure rate; every call
	// here fails.
	for i := 0; i < 10; i++ {
		if _, err := detector.Detect(context.Background(), img); err == nil {
			t.Fatalf("call %d: expected error from failing detection service", i)
		}
	}

	if state := testutil.ToFloat64(gauge); state != 2 {
		t.Errorf("breaker state after repeated failures = %v, want 2 (open)", state)
	}
	if _, err := detector.Detect(context.Background(), img); err == nil {
		t.Error("expected open breaker to reject the call")
	}
}
