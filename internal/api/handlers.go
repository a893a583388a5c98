// Andariego - Tourism Geo-Recommendation and Risk Analysis
// Copyright 2026 Andariego contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/andariego-ec/andariego

// Package api exposes the recommendation and risk engines over HTTP.
package api

import (
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/andariego-ec/andariego/internal/catalog"
	"github.com/andariego-ec/andariego/internal/geo"
	"github.com/andariego-ec/andariego/internal/logging"
	"github.com/andariego-ec/andariego/internal/models"
	"github.com/andariego-ec/andariego/internal/recommend"
	"github.com/andariego-ec/andariego/internal/risk"
	"github.com/andariego-ec/andariego/internal/vision"
)

// Handler holds the collaborators behind the HTTP endpoints.
type Handler struct {
	engine   *recommend.Engine
	detector vision.Detector
	scorer   *risk.Scorer
	version  string
}

// NewHandler wires the endpoint collaborators.
func NewHandler(engine *recommend.Engine, detector vision.Detector, scorer *risk.Scorer, version string) *Handler {
	if detector == nil {
		detector = vision.NoopDetector{}
	}
	return &Handler{
		engine:   engine,
		detector: detector,
		scorer:   scorer,
		version:  version,
	}
}

// Health reports service and model availability.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	started := time.Now()

	riskStatus := "ready"
	if h.scorer == nil || !h.scorer.Ready() {
		riskStatus = "degraded"
	}

	respondSuccess(w, http.StatusOK, models.HealthResponse{
		Status:    "ok",
		Version:   h.version,
		Catalog:   "ready",
		RiskModel: riskStatus,
	}, started)
}

// Live is the liveness probe. It answers as long as the process serves.
func (h *Handler) Live(w http.ResponseWriter, _ *http.Request) {
	started := time.Now()
	respondSuccess(w, http.StatusOK, map[string]string{"status": "alive"}, started)
}

// Ready is the readiness probe. The service is ready once the catalog is
// queryable; a degraded risk model does not block readiness.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	if _, err := h.engine.NearbySites(r.Context(), geo.Coordinate{Lat: 0, Lon: -78}); err != nil {
		respondError(w, http.StatusServiceUnavailable, "CATALOG_ERROR", "site catalog is not ready", err)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]string{"status": "ready"}, started)
}

// Nearby lists the closest active sites to a position.
// GET /api/v1/sites/nearby?lat=..&lon=..
func (h *Handler) Nearby(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	lat, lon, err := parseCoordinateParams(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	if apiErr := validateRequest(&models.NearbyQuery{Latitude: lat, Longitude: lon}); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	nearby, err := h.engine.NearbySites(r.Context(), geo.Coordinate{Lat: lat, Lon: lon})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "CATALOG_ERROR", "failed to query the site catalog", err)
		return
	}

	respondSuccess(w, http.StatusOK, models.NearbyResponse{Sites: candidatesToInfo(nearby)}, started)
}

// Related lists sites related to a reference site.
// GET /api/v1/sites/{id}/related
func (h *Handler) Related(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "site id must be an integer", nil)
		return
	}

	site, related, err := h.engine.RelatedSites(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrSiteNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "site does not exist", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "CATALOG_ERROR", "failed to query the site catalog", err)
		return
	}

	respondSuccess(w, http.StatusOK, models.RelatedResponse{
		Site:    siteToInfo(*site, 0),
		Related: candidatesToInfo(related),
	}, started)
}

// Identify classifies an uploaded photo against the catalog.
// POST /api/v1/identify, multipart: image, latitude, longitude.
func (h *Handler) Identify(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	lat, lon, err := parseCoordinateForm(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	if apiErr := validateRequest(&models.IdentifyRequest{Latitude: lat, Longitude: lon}); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	photoPath, err := saveUpload(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "image upload is required", err)
		return
	}
	defer func() {
		_ = os.Remove(photoPath)
	}()

	result, err := h.engine.IdentifyFromPhoto(r.Context(), photoPath, geo.Coordinate{Lat: lat, Lon: lon})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "CATALOG_ERROR", "identification failed", err)
		return
	}

	resp := models.IdentifyResponse{
		Outcome:    string(result.Outcome),
		Similarity: result.Similarity,
		Message:    result.Message,
	}
	if result.Site != nil {
		info := siteToInfo(*result.Site, result.DistanceKm)
		resp.Site = &info
	}
	if result.Nearest != nil {
		info := siteToInfo(result.Nearest.Site, geo.RoundKm(result.Nearest.DistanceKm))
		resp.Nearest = &info
	}

	respondSuccess(w, http.StatusOK, resp, started)
}

// Recognize runs object detection over an uploaded image and classifies the
// surrounding zone.
// POST /api/v1/recognize, multipart: image.
func (h *Handler) Recognize(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	photoPath, err := saveUpload(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "image upload is required", err)
		return
	}
	defer func() {
		_ = os.Remove(photoPath)
	}()

	labels, err := h.detector.Detect(r.Context(), photoPath)
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "DETECTOR_UNAVAILABLE", "object detection is unavailable", err)
		return
	}

	zone, businesses := vision.ClassifyZone(labels)
	respondSuccess(w, http.StatusOK, models.RecognizeResponse{
		Labels:     labels,
		Zone:       string(zone),
		Businesses: businesses,
	}, started)
}

// Recommend selects a site for a position and optional detection context.
// POST /api/v1/recommend, JSON body.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	var req models.RecommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "request body must be valid JSON", nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	origin := geo.Coordinate{Lat: req.Latitude, Lon: req.Longitude}

	result, err := h.engine.RecommendByContext(r.Context(), origin, req.Labels)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "CATALOG_ERROR", "recommendation failed", err)
		return
	}

	nearby, err := h.engine.NearbySites(r.Context(), origin)
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Nearby listing failed during recommendation")
		nearby = nil
	}

	zone, _ := vision.ClassifyZone(req.Labels)
	resp := models.RecommendResponse{
		Zone:    string(zone),
		Nearby:  candidatesToInfo(nearby),
		Message: result.Message,
	}
	if result.Recommended != nil {
		info := siteToInfo(*result.Recommended, result.DistanceKm)
		resp.Recommended = &info
	}
	if result.Nearest != nil {
		info := siteToInfo(result.Nearest.Site, geo.RoundKm(result.Nearest.DistanceKm))
		resp.Nearest = &info
	}

	respondSuccess(w, http.StatusOK, resp, started)
}

// Risk scores a coordinate for crime risk.
// GET /api/v1/risk?lat=..&lng=..[&at=RFC3339]
func (h *Handler) Risk(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	lat, lon, err := parseCoordinateParams(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	query := models.RiskQuery{Latitude: lat, Longitude: lon, At: r.URL.Query().Get("at")}
	if apiErr := validateRequest(&query); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	var at time.Time
	if query.At != "" {
		at, _ = time.Parse(time.RFC3339, query.At)
	}

	assessment, err := h.scorer.Assess(lat, lon, at)
	if err != nil {
		if errors.Is(err, risk.ErrUnavailable) {
			respondError(w, http.StatusServiceUnavailable, "RISK_UNAVAILABLE", "risk model is not loaded", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "risk assessment failed", err)
		return
	}

	respondSuccess(w, http.StatusOK, models.RiskResponse{
		Level:     assessment.Level,
		Category:  assessment.Category,
		Color:     assessment.Color,
		Night:     assessment.Night,
		ZoneIndex: assessment.Cluster,
	}, started)
}

func siteToInfo(s catalog.Site, distanceKm float64) models.SiteInfo {
	return models.SiteInfo{
		ID:         s.ID,
		Name:       s.Name,
		Category:   string(s.Category),
		Province:   s.Province,
		Latitude:   s.Latitude,
		Longitude:  s.Longitude,
		DistanceKm: distanceKm,
	}
}

func candidatesToInfo(cs []recommend.Candidate) []models.SiteInfo {
	infos := make([]models.SiteInfo, 0, len(cs))
	for _, c := range cs {
		infos = append(infos, siteToInfo(c.Site, geo.RoundKm(c.DistanceKm)))
	}
	return infos
}
