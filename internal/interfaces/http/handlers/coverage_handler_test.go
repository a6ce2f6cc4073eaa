package handlers

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/coverage-intelligence/internal/application/coverage"
	domain "github.com/turtacn/coverage-intelligence/internal/domain/coverage"
	"github.com/turtacn/coverage-intelligence/internal/testutil"
	"github.com/turtacn/coverage-intelligence/pkg/errors"
)

type CoverageHandlerSuite struct {
	suite.Suite
	svc    *testutil.StubCoverageService
	logger *testutil.MockLogger
	router chi.Router
}

func (s *CoverageHandlerSuite) SetupTest() {
	s.svc = &testutil.StubCoverageService{}
	s.logger = testutil.NewMockLogger()
	h := NewCoverageHandler(s.svc, s.logger)

	r := chi.NewRouter()
	r.Get("/platforms", h.ListPlatforms)
	r.Get("/platforms/{platformID}/coverage", h.GetGlobalCoverage)
	r.Get("/platforms/{platformID}/countries", h.ListCountries)
	r.Get("/platforms/{platformID}/countries/{countryID}", h.GetCountryDetails)
	r.Get("/platforms/{platformID}/countries/{countryID}/score", h.GetCountryScore)
	r.Get("/platforms/{platformID}/languages", h.GetLanguageStats)
	r.Get("/platforms/{platformID}/recommendations", h.GetRecommendations)
	r.Delete("/platforms/{platformID}/cache", h.InvalidatePlatformCache)
	r.Delete("/cache", h.InvalidateAllCache)
	s.router = r
}

func TestCoverageHandlerSuite(t *testing.T) {
	suite.Run(t, new(CoverageHandlerSuite))
}

func (s *CoverageHandlerSuite) do(method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *CoverageHandlerSuite) decode(w *httptest.ResponseRecorder, v interface{}) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), v))
}

func (s *CoverageHandlerSuite) TestListPlatforms() {
	s.svc.PlatformsFn = func(context.Context) ([]domain.Platform, error) {
		return []domain.Platform{{ID: "lawyers", Code: "LAW", Name: "Lawyers"}}, nil
	}
	w := s.do(http.MethodGet, "/platforms")

	s.Equal(http.StatusOK, w.Code)
	s.Equal("application/json", w.Header().Get("Content-Type"))
	var out []domain.Platform
	s.decode(w, &out)
	s.Require().Len(out, 1)
	s.Equal("lawyers", out[0].ID)
}

func (s *CoverageHandlerSuite) TestGetGlobalCoverage() {
	var gotPlatform string
	s.svc.GlobalFn = func(_ context.Context, p string) (*coverage.GlobalCoverage, error) {
		gotPlatform = p
		return &coverage.GlobalCoverage{PlatformID: p, TotalCountries: 3}, nil
	}
	w := s.do(http.MethodGet, "/platforms/lawyers/coverage")

	s.Equal(http.StatusOK, w.Code)
	s.Equal("lawyers", gotPlatform)
	var out coverage.GlobalCoverage
	s.decode(w, &out)
	s.Equal(3, out.TotalCountries)
}

func (s *CoverageHandlerSuite) TestGetCountryScore_UnknownCountryIsOK() {
	s.svc.CountryFn = func(_ context.Context, p, c string) (*coverage.CountryCoverage, error) {
		return &coverage.CountryCoverage{PlatformID: p, Country: coverage.CountryRef{ID: c}, Found: false}, nil
	}
	w := s.do(http.MethodGet, "/platforms/lawyers/countries/zz/score")

	s.Equal(http.StatusOK, w.Code)
	var out coverage.CountryCoverage
	s.decode(w, &out)
	s.False(out.Found)
	s.Equal("zz", out.Country.ID)
	s.Equal(0, out.Priority)
}

func (s *CoverageHandlerSuite) TestGetCountryDetails() {
	s.svc.DetailsFn = func(_ context.Context, p, c string) (*coverage.CountryDetails, error) {
		return &coverage.CountryDetails{
			CountryCoverage: &coverage.CountryCoverage{PlatformID: p, Country: coverage.CountryRef{ID: c}, Found: true},
			RecentItems:     []domain.ContentItem{{ID: "c1"}},
		}, nil
	}
	w := s.do(http.MethodGet, "/platforms/lawyers/countries/vn")

	s.Equal(http.StatusOK, w.Code)
	var out struct {
		Found       bool                 `json:"found"`
		RecentItems []domain.ContentItem `json:"recent_items"`
	}
	s.decode(w, &out)
	s.True(out.Found)
	s.Len(out.RecentItems, 1)
}

func (s *CoverageHandlerSuite) TestListCountries_PassesFilter() {
	var got coverage.CountryFilter
	s.svc.CountriesFn = func(_ context.Context, _ string, f coverage.CountryFilter) ([]coverage.CountrySummary, error) {
		got = f
		return []coverage.CountrySummary{}, nil
	}
	w := s.do(http.MethodGet, "/platforms/lawyers/countries?region=Asia&status=poor&search=vi&sort_by=name&sort_order=asc")

	s.Equal(http.StatusOK, w.Code)
	s.Equal(coverage.CountryFilter{Region: "Asia", Status: "poor", Search: "vi", SortBy: "name", SortOrder: "asc"}, got)
	s.JSONEq("[]", w.Body.String())
}

func (s *CoverageHandlerSuite) TestListCountries_InvalidFilterIs400() {
	s.svc.CountriesFn = func(context.Context, string, coverage.CountryFilter) ([]coverage.CountrySummary, error) {
		return nil, errors.New(errors.ErrCodeInvalidFilter, "unknown sort field")
	}
	w := s.do(http.MethodGet, "/platforms/lawyers/countries?sort_by=bogus")

	s.Equal(http.StatusBadRequest, w.Code)
	var out ErrorResponse
	s.decode(w, &out)
	s.Equal(string(errors.ErrCodeInvalidFilter), out.Code)
	s.Contains(out.Message, "unknown sort field")
}

func (s *CoverageHandlerSuite) TestGetLanguageStats() {
	s.svc.LanguagesFn = func(context.Context, string) ([]coverage.LanguageStats, error) {
		return []coverage.LanguageStats{{Code: "fr", Primary: true, Coverage: 36}}, nil
	}
	w := s.do(http.MethodGet, "/platforms/lawyers/languages")

	s.Equal(http.StatusOK, w.Code)
	var out []coverage.LanguageStats
	s.decode(w, &out)
	s.Require().Len(out, 1)
	s.Equal(36.0, out[0].Coverage)
}

func (s *CoverageHandlerSuite) TestGetRecommendations_Limit() {
	var gotLimit int
	s.svc.RecommendationsFn = func(_ context.Context, _ string, limit int) ([]coverage.GlobalRecommendation, error) {
		gotLimit = limit
		return []coverage.GlobalRecommendation{}, nil
	}

	w := s.do(http.MethodGet, "/platforms/lawyers/recommendations?limit=5")
	s.Equal(http.StatusOK, w.Code)
	s.Equal(5, gotLimit)

	w = s.do(http.MethodGet, "/platforms/lawyers/recommendations")
	s.Equal(http.StatusOK, w.Code)
	s.Equal(0, gotLimit)
}

func (s *CoverageHandlerSuite) TestGetRecommendations_BadLimit() {
	w := s.do(http.MethodGet, "/platforms/lawyers/recommendations?limit=ten")

	s.Equal(http.StatusBadRequest, w.Code)
	s.NotContains(s.svc.Calls(), "GetGlobalRecommendations")
}

func (s *CoverageHandlerSuite) TestUnknownPlatformIs404() {
	s.svc.GlobalFn = func(_ context.Context, p string) (*coverage.GlobalCoverage, error) {
		return nil, errors.Newf(errors.ErrCodePlatformNotFound, "platform %q not found", p)
	}
	w := s.do(http.MethodGet, "/platforms/ghost/coverage")

	s.Equal(http.StatusNotFound, w.Code)
}

func (s *CoverageHandlerSuite) TestStoreFailureIsMasked() {
	s.svc.GlobalFn = func(context.Context, string) (*coverage.GlobalCoverage, error) {
		return nil, errors.Wrap(stderrors.New("pq: password authentication failed"), errors.ErrCodeDatabaseError, "list_platforms")
	}
	w := s.do(http.MethodGet, "/platforms/lawyers/coverage")

	s.Equal(http.StatusInternalServerError, w.Code)
	s.NotContains(w.Body.String(), "password")
	s.True(s.logger.HasMessage("error", "request failed"))
}

func (s *CoverageHandlerSuite) TestInvalidatePlatformCache() {
	var gotPlatform, gotCountry string
	s.svc.InvalidateFn = func(_ context.Context, p, c string) error {
		gotPlatform, gotCountry = p, c
		return nil
	}
	w := s.do(http.MethodDelete, "/platforms/lawyers/cache?country_id=vn")

	s.Equal(http.StatusOK, w.Code)
	s.Equal("lawyers", gotPlatform)
	s.Equal("vn", gotCountry)
	var out InvalidateResponse
	s.decode(w, &out)
	s.Equal("invalidated", out.Status)
}

func (s *CoverageHandlerSuite) TestInvalidateAllCache() {
	w := s.do(http.MethodDelete, "/cache")

	s.Equal(http.StatusOK, w.Code)
	s.Equal([]string{"InvalidateAllCache"}, s.svc.Calls())
}

func (s *CoverageHandlerSuite) TestInvalidateAllCache_Error() {
	s.svc.InvalidateAllFn = func(context.Context) error {
		return errors.Wrap(stderrors.New("redis down"), errors.ErrCodeCacheError, "scan cache keys")
	}
	w := s.do(http.MethodDelete, "/cache")

	s.Equal(http.StatusInternalServerError, w.Code)
}
