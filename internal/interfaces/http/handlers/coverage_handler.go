package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/turtacn/coverage-intelligence/internal/application/coverage"
	"github.com/turtacn/coverage-intelligence/internal/infrastructure/monitoring/logging"
)

// Route parameters.
const (
	ParamPlatformID = "platformID"
	ParamCountryID  = "countryID"
)

// CoverageHandler exposes the coverage service.
type CoverageHandler struct {
	svc    coverage.Service
	logger logging.Logger
}

// NewCoverageHandler creates a new CoverageHandler.
func NewCoverageHandler(svc coverage.Service, logger logging.Logger) *CoverageHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &CoverageHandler{svc: svc, logger: logger}
}

// InvalidateResponse acknowledges a cache invalidation.
type InvalidateResponse struct {
	Status     string `json:"status"`
	PlatformID string `json:"platform_id,omitempty"`
	CountryID  string `json:"country_id,omitempty"`
}

// ListPlatforms handles GET /api/v1/platforms.
func (h *CoverageHandler) ListPlatforms(w http.ResponseWriter, r *http.Request) {
	platforms, err := h.svc.ListPlatforms(r.Context())
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, platforms)
}

// GetGlobalCoverage handles GET /api/v1/platforms/{platformID}/coverage.
func (h *CoverageHandler) GetGlobalCoverage(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.GetGlobalCoverage(r.Context(), chi.URLParam(r, ParamPlatformID))
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// GetCountryScore handles
// GET /api/v1/platforms/{platformID}/countries/{countryID}/score.
func (h *CoverageHandler) GetCountryScore(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.GetCountryScore(r.Context(), chi.URLParam(r, ParamPlatformID), chi.URLParam(r, ParamCountryID))
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// GetCountryDetails handles
// GET /api/v1/platforms/{platformID}/countries/{countryID}.
func (h *CoverageHandler) GetCountryDetails(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.GetCountryDetails(r.Context(), chi.URLParam(r, ParamPlatformID), chi.URLParam(r, ParamCountryID))
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// ListCountries handles GET /api/v1/platforms/{platformID}/countries.
func (h *CoverageHandler) ListCountries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := coverage.CountryFilter{
		Region:    q.Get("region"),
		Status:    q.Get("status"),
		Search:    q.Get("search"),
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
	}
	out, err := h.svc.ListCountriesWithScores(r.Context(), chi.URLParam(r, ParamPlatformID), filter)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// GetLanguageStats handles GET /api/v1/platforms/{platformID}/languages.
func (h *CoverageHandler) GetLanguageStats(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.GetLanguageStats(r.Context(), chi.URLParam(r, ParamPlatformID))
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// GetRecommendations handles
// GET /api/v1/platforms/{platformID}/recommendations?limit=.
func (h *CoverageHandler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	out, err := h.svc.GetGlobalRecommendations(r.Context(), chi.URLParam(r, ParamPlatformID), limit)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// InvalidatePlatformCache handles
// DELETE /api/v1/platforms/{platformID}/cache[?country_id=].
func (h *CoverageHandler) InvalidatePlatformCache(w http.ResponseWriter, r *http.Request) {
	platformID := chi.URLParam(r, ParamPlatformID)
	countryID := r.URL.Query().Get("country_id")
	if err := h.svc.InvalidateCache(r.Context(), platformID, countryID); err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, InvalidateResponse{Status: "invalidated", PlatformID: platformID, CountryID: countryID})
}

// InvalidateAllCache handles DELETE /api/v1/cache.
func (h *CoverageHandler) InvalidateAllCache(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.InvalidateAllCache(r.Context()); err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, InvalidateResponse{Status: "invalidated"})
}
