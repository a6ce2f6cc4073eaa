package testutil

import (
	"context"
	"sync"

	"github.com/turtacn/coverage-intelligence/internal/application/coverage"
	domain "github.com/turtacn/coverage-intelligence/internal/domain/coverage"
)

// StubCoverageService is a coverage.Service whose answers are set per
// field.  A nil func answers with zero values.  Calls are recorded by
// method name.
type StubCoverageService struct {
	GlobalFn          func(ctx context.Context, platformID string) (*coverage.GlobalCoverage, error)
	RefreshFn         func(ctx context.Context, platformID string) (*coverage.GlobalCoverage, error)
	CountryFn         func(ctx context.Context, platformID, countryID string) (*coverage.CountryCoverage, error)
	DetailsFn         func(ctx context.Context, platformID, countryID string) (*coverage.CountryDetails, error)
	CountriesFn       func(ctx context.Context, platformID string, f coverage.CountryFilter) ([]coverage.CountrySummary, error)
	LanguagesFn       func(ctx context.Context, platformID string) ([]coverage.LanguageStats, error)
	RecommendationsFn func(ctx context.Context, platformID string, limit int) ([]coverage.GlobalRecommendation, error)
	InvalidateFn      func(ctx context.Context, platformID, countryID string) error
	InvalidateAllFn   func(ctx context.Context) error
	PlatformsFn       func(ctx context.Context) ([]domain.Platform, error)

	mu    sync.Mutex
	calls []string
}

var _ coverage.Service = (*StubCoverageService)(nil)

func (s *StubCoverageService) record(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, name)
}

// Calls returns the invoked method names in order.
func (s *StubCoverageService) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *StubCoverageService) GetGlobalCoverage(ctx context.Context, platformID string) (*coverage.GlobalCoverage, error) {
	s.record("GetGlobalCoverage")
	if s.GlobalFn == nil {
		return &coverage.GlobalCoverage{}, nil
	}
	return s.GlobalFn(ctx, platformID)
}

func (s *StubCoverageService) RefreshGlobalCoverage(ctx context.Context, platformID string) (*coverage.GlobalCoverage, error) {
	s.record("RefreshGlobalCoverage")
	if s.RefreshFn == nil {
		return &coverage.GlobalCoverage{}, nil
	}
	return s.RefreshFn(ctx, platformID)
}

func (s *StubCoverageService) GetCountryScore(ctx context.Context, platformID, countryID string) (*coverage.CountryCoverage, error) {
	s.record("GetCountryScore")
	if s.CountryFn == nil {
		return &coverage.CountryCoverage{}, nil
	}
	return s.CountryFn(ctx, platformID, countryID)
}

func (s *StubCoverageService) GetCountryDetails(ctx context.Context, platformID, countryID string) (*coverage.CountryDetails, error) {
	s.record("GetCountryDetails")
	if s.DetailsFn == nil {
		return &coverage.CountryDetails{CountryCoverage: &coverage.CountryCoverage{}}, nil
	}
	return s.DetailsFn(ctx, platformID, countryID)
}

func (s *StubCoverageService) ListCountriesWithScores(ctx context.Context, platformID string, f coverage.CountryFilter) ([]coverage.CountrySummary, error) {
	s.record("ListCountriesWithScores")
	if s.CountriesFn == nil {
		return []coverage.CountrySummary{}, nil
	}
	return s.CountriesFn(ctx, platformID, f)
}

func (s *StubCoverageService) GetLanguageStats(ctx context.Context, platformID string) ([]coverage.LanguageStats, error) {
	s.record("GetLanguageStats")
	if s.LanguagesFn == nil {
		return []coverage.LanguageStats{}, nil
	}
	return s.LanguagesFn(ctx, platformID)
}

func (s *StubCoverageService) GetGlobalRecommendations(ctx context.Context, platformID string, limit int) ([]coverage.GlobalRecommendation, error) {
	s.record("GetGlobalRecommendations")
	if s.RecommendationsFn == nil {
		return []coverage.GlobalRecommendation{}, nil
	}
	return s.RecommendationsFn(ctx, platformID, limit)
}

func (s *StubCoverageService) InvalidateCache(ctx context.Context, platformID, countryID string) error {
	s.record("InvalidateCache")
	if s.InvalidateFn == nil {
		return nil
	}
	return s.InvalidateFn(ctx, platformID, countryID)
}

func (s *StubCoverageService) InvalidateAllCache(ctx context.Context) error {
	s.record("InvalidateAllCache")
	if s.InvalidateAllFn == nil {
		return nil
	}
	return s.InvalidateAllFn(ctx)
}

func (s *StubCoverageService) ListPlatforms(ctx context.Context) ([]domain.Platform, error) {
	s.record("ListPlatforms")
	if s.PlatformsFn == nil {
		return []domain.Platform{}, nil
	}
	return s.PlatformsFn(ctx)
}
