// Andariego - Tourism Geo-Recommendation and Risk Analysis
// Copyright 2026 Andariego contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/andariego-ec/andariego

package api

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/andariego-ec/andariego/internal/catalog"
	"github.com/andariego-ec/andariego/internal/models"
	"github.com/andariego-ec/andariego/internal/recommend"
	"github.com/andariego-ec/andariego/internal/risk"
)

// stubOracle returns a fixed similarity for every comparison.
type stubOracle struct {
	score float64
}

func (o stubOracle) Similarity(_ context.Context, _, _ string) float64 {
	return o.score
}

// stubDetector returns fixed labels.
type stubDetector struct {
	labels map[string]int
	err    error
}

func (d stubDetector) Detect(_ context.Context, _ string) (map[string]int, error) {
	return d.labels, d.err
}

func testScorer() *risk.Scorer {
	model := risk.NewCentroidModel([][2]float64{{-2.19, -79.89}})
	return risk.NewScorerWith(model, risk.Table{0: 6.0}, nil)
}

func testServer(t *testing.T, score float64, detector stubDetector, scorer *risk.Scorer) *httptest.Server {
	t.Helper()

	store := catalog.NewMemoryStore()
	err := store.SeedSites(context.Background(), []catalog.Site{
		{ID: 1, Name: "Malecon 2000", Category: catalog.CategoryCultural, Province: "Guayas",
			Latitude: -2.19, Longitude: -79.89, Active: true, ImagePath: "malecon.jpg"},
		{ID: 2, Name: "Parque Historico", Category: catalog.CategoryPark, Province: "Guayas",
			Latitude: -2.14, Longitude: -79.85, Active: true},
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	engine := recommend.NewEngine(store, stubOracle{score: score}, nil, recommend.DefaultConfig())
	handler := NewHandler(engine, detector, scorer, "test")
	srv := httptest.NewServer(NewRouter(handler, RouterConfig{
		RateLimitDisabled: true,
		CORSOrigins:       []string{"*"},
	}))
	t.Cleanup(srv.Close)
	return srv
}

// decodeEnvelope asserts the standard envelope and unmarshals data into out.
func decodeEnvelope(t *testing.T, resp *http.Response, wantStatus string, out interface{}) {
	t.Helper()

	var envelope struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
		Error  *models.APIError
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if envelope.Status != wantStatus {
		t.Fatalf("status = %s, want %s (error: %+v)", envelope.Status, wantStatus, envelope.Error)
	}
	if out != nil && wantStatus == "success" {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			t.Fatalf("decode data: %v", err)
		}
	}
}

func multipartImage(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", "photo.jpg")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write([]byte("not-a-real-jpeg")); err != nil {
		t.Fatal(err)
	}
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatal(err)
	}
	return &body, writer.FormDataContentType()
}

func TestHealthEndpoint(t *testing.T) {
	srv := testServer(t, 0, stubDetector{}, testScorer())

	resp, err := http.Get(srv.URL + "/api/v1/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var health models.HealthResponse
	decodeEnvelope(t, resp, "success", &health)
	if health.Status != "ok" || health.RiskModel != "ready" {
		t.Errorf("health = %+v", health)
	}
}

func TestProbeEndpoints(t *testing.T) {
	srv := testServer(t, 0, stubDetector{}, testScorer())

	for _, path := range []string{"/api/v1/live", "/api/v1/ready"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s: status = %d, want 200", path, resp.StatusCode)
		}
	}
}

func TestNearbyEndpoint(t *testing.T) {
	srv := testServer(t, 0, stubDetector{}, testScorer())

	resp, err := http.Get(srv.URL + "/api/v1/sites/nearby?lat=-2.19&lon=-79.89")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var nearby models.NearbyResponse
	decodeEnvelope(t, resp, "success", &nearby)
	if len(nearby.Sites) != 2 {
		t.Fatalf("sites = %d, want 2", len(nearby.Sites))
	}
	if nearby.Sites[0].ID != 1 {
		t.Errorf("closest site = %d, want 1", nearby.Sites[0].ID)
	}
}

func TestNearbyEndpointValidation(t *testing.T) {
	srv := testServer(t, 0, stubDetector{}, testScorer())

	tests := []string{
		"/api/v1/sites/nearby",
		"/api/v1/sites/nearby?lat=abc&lon=-79",
		"/api/v1/sites/nearby?lat=95&lon=-79",
	}
	for _, path := range tests {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", path, resp.StatusCode)
		}
	}
}

func TestRelatedEndpoint(t *testing.T) {
	srv := testServer(t, 0, stubDetector{}, testScorer())

	resp, err := http.Get(srv.URL + "/api/v1/sites/1/related")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var related models.RelatedResponse
	decodeEnvelope(t, resp, "success", &related)
	if related.Site.ID != 1 {
		t.Errorf("reference site = %d, want 1", related.Site.ID)
	}
	if len(related.Related) != 1 || related.Related[0].ID != 2 {
		t.Errorf("related = %+v, want only site 2", related.Related)
	}
}

func TestRelatedEndpointNotFound(t *testing.T) {
	srv := testServer(t, 0, stubDetector{}, testScorer())

	resp, err := http.Get(srv.URL + "/api/v1/sites/404/related")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestIdentifyEndpointSuccess(t *testing.T) {
	srv := testServer(t, 0.9, stubDetector{}, testScorer())

	body, contentType := multipartImage(t, map[string]string{
		"latitude":  "-2.19",
		"longitude": "-79.89",
	})
	resp, err := http.Post(srv.URL+"/api/v1/identify", contentType, body)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var identify models.IdentifyResponse
	decodeEnvelope(t, resp, "success", &identify)
	if identify.Outcome != "success" {
		t.Fatalf("outcome = %s, want success", identify.Outcome)
	}
	if identify.Site == nil || identify.Site.ID != 1 {
		t.Errorf("site = %+v, want site 1", identify.Site)
	}
	if identify.Similarity != 0.9 {
		t.Errorf("similarity = %f, want 0.9", identify.Similarity)
	}
}

func TestIdentifyEndpointMissingCoordinates(t *testing.T) {
	srv := testServer(t, 0.9, stubDetector{}, testScorer())

	body, contentType := multipartImage(t, nil)
	resp, err := http.Post(srv.URL+"/api/v1/identify", contentType, body)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestRecognizeEndpoint(t *testing.T) {
	srv := testServer(t, 0, stubDetector{labels: map[string]int{"restaurant": 3, "hotel": 2}}, testScorer())

	body, contentType := multipartImage(t, nil)
	resp, err := http.Post(srv.URL+"/api/v1/recognize", contentType, body)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var recognize models.RecognizeResponse
	decodeEnvelope(t, resp, "success", &recognize)
	if recognize.Zone != "tourist" || recognize.Businesses != 5 {
		t.Errorf("zone = %s businesses = %d, want tourist/5", recognize.Zone, recognize.Businesses)
	}
}

func TestRecommendEndpoint(t *testing.T) {
	srv := testServer(t, 0, stubDetector{}, testScorer())

	// Cultural site at ~2.9 km, park at ~4.1 km: the park can only win
	// through the category bias (4.1 * 0.6 = 2.4 effective km).
	payload := `{"latitude": -2.17, "longitude": -79.874, "labels": {"tree": 4}}`
	resp, err := http.Post(srv.URL+"/api/v1/recommend", "application/json", strings.NewReader(payload))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var rec models.RecommendResponse
	decodeEnvelope(t, resp, "success", &rec)
	if rec.Recommended == nil {
		t.Fatal("no recommendation returned")
	}
	// "tree" maps to the park category, so the park site wins via bias.
	if rec.Recommended.ID != 2 {
		t.Errorf("recommended site = %d, want park site 2", rec.Recommended.ID)
	}
	if len(rec.Nearby) == 0 {
		t.Error("nearby listing empty")
	}
}

func TestRecommendEndpointBadBody(t *testing.T) {
	srv := testServer(t, 0, stubDetector{}, testScorer())

	resp, err := http.Post(srv.URL+"/api/v1/recommend", "application/json", strings.NewReader("{not json"))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestRiskEndpointNight(t *testing.T) {
	srv := testServer(t, 0, stubDetector{}, testScorer())

	at := time.Date(2026, 8, 28, 22, 0, 0, 0, time.UTC).Format(time.RFC3339)
	resp, err := http.Get(srv.URL + "/api/v1/risk?lat=-2.19&lng=-79.89&at=" + at)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var riskResp models.RiskResponse
	decodeEnvelope(t, resp, "success", &riskResp)
	if riskResp.Level != 7.2 || riskResp.Color != "#dc3545" || !riskResp.Night {
		t.Errorf("risk = %+v, want 7.2 red night", riskResp)
	}
}

func TestRiskEndpointDegraded(t *testing.T) {
	degraded := risk.NewScorer(risk.Config{ModelPath: "/nonexistent", TablePath: "/nonexistent"})
	srv := testServer(t, 0, stubDetector{}, degraded)

	resp, err := http.Get(srv.URL + "/api/v1/risk?lat=-2.19&lng=-79.89")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
}

func TestMetricsEndpointExposed(t *testing.T) {
	srv := testServer(t, 0, stubDetector{}, testScorer())

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}
