package coverage

import (
	"context"
	"encoding/json"
	"time"

	"golang.org/x/sync/errgroup"

	domain "github.com/turtacn/coverage-intelligence/internal/domain/coverage"
	"github.com/turtacn/coverage-intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/coverage-intelligence/pkg/errors"
)

// -----------------------------------------------------------------------
// Service Interface
// -----------------------------------------------------------------------

// Service is the caller-facing coverage API used by the HTTP handlers, the
// CLI and the snapshot worker.
type Service interface {
	// GetGlobalCoverage returns the platform roll-up.
	GetGlobalCoverage(ctx context.Context, platformID string) (*GlobalCoverage, error)
	// RefreshGlobalCoverage drops the cached roll-up and recomputes it.
	// Cached country results are reused.
	RefreshGlobalCoverage(ctx context.Context, platformID string) (*GlobalCoverage, error)
	// GetCountryScore returns the full result of one country.
	GetCountryScore(ctx context.Context, platformID, countryID string) (*CountryCoverage, error)
	// GetCountryDetails adds the most recently updated content of the pair.
	GetCountryDetails(ctx context.Context, platformID, countryID string) (*CountryDetails, error)
	// ListCountriesWithScores filters and orders the country summaries.
	ListCountriesWithScores(ctx context.Context, platformID string, filter CountryFilter) ([]CountrySummary, error)
	// GetLanguageStats totals every country's language breakdown.
	GetLanguageStats(ctx context.Context, platformID string) ([]LanguageStats, error)
	// GetGlobalRecommendations ranks the recommendations of the priority
	// countries platform-wide.  limit 0 selects the default.
	GetGlobalRecommendations(ctx context.Context, platformID string, limit int) ([]GlobalRecommendation, error)
	// InvalidateCache drops one country (and the roll-up embedding it), or
	// every entry of the platform when countryID is empty.
	InvalidateCache(ctx context.Context, platformID, countryID string) error
	// InvalidateAllCache drops every cached result.
	InvalidateAllCache(ctx context.Context) error
	// ListPlatforms returns the platforms in registry order.
	ListPlatforms(ctx context.Context) ([]domain.Platform, error)
}

// LanguageStats is the platform-wide completion of one language.
type LanguageStats struct {
	Code             string  `json:"code"`
	Name             string  `json:"name"`
	Primary          bool    `json:"primary"`
	TotalTargets     int     `json:"total_targets"`
	CompletedTargets int     `json:"completed_targets"`
	PublishedItems   int     `json:"published_items"`
	Coverage         float64 `json:"coverage"`
}

// -----------------------------------------------------------------------
// Service Implementation
// -----------------------------------------------------------------------

// ServiceConfig holds the dependencies of the coverage service.
type ServiceConfig struct {
	Engine *Engine
	// Cache defaults to a MemoryScoreCache.
	Cache            ScoreCache
	CacheTTL         time.Duration
	RecentItemsLimit int
	// Concurrency bounds parallel country computations of a roll-up.
	Concurrency int
	Logger      logging.Logger
	Metrics     Metrics
}

type serviceImpl struct {
	engine      *Engine
	cache       ScoreCache
	ttl         time.Duration
	recentLimit int
	concurrency int
	logger      logging.Logger
	metrics     Metrics
}

// NewService wires the engine behind the score cache.
func NewService(cfg ServiceConfig) (Service, error) {
	if cfg.Engine == nil {
		return nil, errors.InvalidParam("coverage service requires an engine")
	}
	s := &serviceImpl{
		engine:      cfg.Engine,
		cache:       cfg.Cache,
		ttl:         cfg.CacheTTL,
		recentLimit: cfg.RecentItemsLimit,
		concurrency: cfg.Concurrency,
		logger:      cfg.Logger,
		metrics:     cfg.Metrics,
	}
	if s.cache == nil {
		s.cache = NewMemoryScoreCache(nil)
	}
	if s.ttl <= 0 {
		s.ttl = DefaultScoreTTL
	}
	if s.recentLimit <= 0 {
		s.recentLimit = 10
	}
	if s.concurrency <= 0 {
		s.concurrency = 4
	}
	if s.logger == nil {
		s.logger = logging.NewNopLogger()
	}
	if s.metrics == nil {
		s.metrics = NopMetrics{}
	}
	return s, nil
}

// cached runs compute behind the score cache and decodes the stored bytes
// into dest.
func (s *serviceImpl) cached(ctx context.Context, key string, dest interface{}, compute func(ctx context.Context) (interface{}, error)) error {
	data, hit, err := s.cache.GetOrCompute(ctx, key, s.ttl, func(ctx context.Context) ([]byte, error) {
		v, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(v)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeSerialization, "encode coverage result")
		}
		return data, nil
	})
	if err != nil {
		return err
	}
	if hit {
		s.metrics.CacheRequest(cacheHit)
	} else {
		s.metrics.CacheRequest(cacheMiss)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "decode cached coverage result")
	}
	return nil
}

func (s *serviceImpl) GetCountryScore(ctx context.Context, platformID, countryID string) (*CountryCoverage, error) {
	return s.countryScore(ctx, s.engine.NewTaxonomyCache(), platformID, countryID)
}

func (s *serviceImpl) countryScore(ctx context.Context, tax *TaxonomyCache, platformID, countryID string) (*CountryCoverage, error) {
	if platformID == "" {
		return nil, errors.InvalidParam("platform id is required")
	}
	if countryID == "" {
		return nil, errors.InvalidParam("country id is required")
	}
	var out CountryCoverage
	err := s.cached(ctx, CountryKey(platformID, countryID), &out, func(ctx context.Context) (interface{}, error) {
		return s.engine.ComputeCountry(ctx, tax, platformID, countryID)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *serviceImpl) GetGlobalCoverage(ctx context.Context, platformID string) (*GlobalCoverage, error) {
	if platformID == "" {
		return nil, errors.InvalidParam("platform id is required")
	}
	var out GlobalCoverage
	err := s.cached(ctx, GlobalKey(platformID), &out, func(ctx context.Context) (interface{}, error) {
		return s.computeGlobal(ctx, platformID)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *serviceImpl) RefreshGlobalCoverage(ctx context.Context, platformID string) (*GlobalCoverage, error) {
	if platformID == "" {
		return nil, errors.InvalidParam("platform id is required")
	}
	if err := s.cache.Invalidate(ctx, GlobalKey(platformID)); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCacheError, "invalidate global coverage")
	}
	return s.GetGlobalCoverage(ctx, platformID)
}

func (s *serviceImpl) computeGlobal(ctx context.Context, platformID string) (result *GlobalCoverage, err error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveComputation("global", statusLabel(err), time.Since(start))
	}()

	tax := s.engine.NewTaxonomyCache()
	if _, err := s.engine.Platform(ctx, tax, platformID); err != nil {
		return nil, err
	}
	countries, err := s.engine.reference.ListCountries(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeUnknown, "list countries")
	}

	results := make([]*CountryCoverage, len(countries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, c := range countries {
		i, id := i, c.ID
		g.Go(func() error {
			r, err := s.countryScore(gctx, tax, platformID, id)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result = aggregateGlobal(platformID, results, globalOptions{
		topN:              s.engine.topN,
		priorityN:         s.engine.priorityN,
		priorityThreshold: s.engine.priorityThreshold,
	}, s.engine.clock())

	s.logger.Info("global coverage computed",
		logging.String("platform_id", platformID),
		logging.Int("countries", result.TotalCountries),
		logging.Float64("average_overall", result.Averages.Overall),
		logging.Duration("duration", time.Since(start)),
	)
	return result, nil
}

func (s *serviceImpl) GetCountryDetails(ctx context.Context, platformID, countryID string) (*CountryDetails, error) {
	score, err := s.GetCountryScore(ctx, platformID, countryID)
	if err != nil {
		return nil, err
	}
	details := &CountryDetails{CountryCoverage: score, RecentItems: []domain.ContentItem{}}
	if !score.Found {
		return details, nil
	}
	recent, err := s.engine.content.ListRecent(ctx, platformID, countryID, s.recentLimit)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeUnknown, "list recent content")
	}
	if recent != nil {
		details.RecentItems = recent
	}
	return details, nil
}

func (s *serviceImpl) ListCountriesWithScores(ctx context.Context, platformID string, filter CountryFilter) ([]CountrySummary, error) {
	f, err := filter.Normalize()
	if err != nil {
		return nil, err
	}
	global, err := s.GetGlobalCoverage(ctx, platformID)
	if err != nil {
		return nil, err
	}
	return filterCountries(global.Countries, f), nil
}

func (s *serviceImpl) GetLanguageStats(ctx context.Context, platformID string) ([]LanguageStats, error) {
	global, err := s.GetGlobalCoverage(ctx, platformID)
	if err != nil {
		return nil, err
	}
	stats := make([]LanguageStats, 0, len(global.Languages))
	for _, l := range global.Languages {
		stats = append(stats, LanguageStats{
			Code:             l.Code,
			Name:             l.Name,
			Primary:          l.Primary,
			TotalTargets:     l.TotalTargets,
			CompletedTargets: l.CompletedTargets,
			PublishedItems:   l.PublishedItems,
			Coverage:         round2(percent(l.CompletedTargets, l.TotalTargets)),
		})
	}
	return stats, nil
}

func (s *serviceImpl) GetGlobalRecommendations(ctx context.Context, platformID string, limit int) ([]GlobalRecommendation, error) {
	if limit == 0 {
		limit = DefaultGlobalRecommendations
	}
	if limit < 1 || limit > MaxGlobalRecommendations {
		return nil, errors.Newf(errors.ErrCodeInvalidParam, "limit must be in [1, %d], got %d", MaxGlobalRecommendations, limit)
	}
	global, err := s.GetGlobalCoverage(ctx, platformID)
	if err != nil {
		return nil, err
	}

	tax := s.engine.NewTaxonomyCache()
	results := make([]*CountryCoverage, 0, len(global.PriorityCountries))
	for _, c := range global.PriorityCountries {
		r, err := s.countryScore(ctx, tax, platformID, c.ID)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return rankGlobalRecommendations(results, limit), nil
}

// InvalidateCache drops the cached results of one platform, or of one of its
// countries.  Founder coverage is shared by every platform, so a founder
// article change also leaves the other platforms' results stale until their
// TTL runs out; callers reacting to founder content use InvalidateAllCache.
func (s *serviceImpl) InvalidateCache(ctx context.Context, platformID, countryID string) error {
	if platformID == "" {
		return errors.InvalidParam("platform id is required")
	}
	if countryID != "" {
		if err := s.cache.Invalidate(ctx, CountryKey(platformID, countryID), GlobalKey(platformID)); err != nil {
			return errors.Wrap(err, errors.ErrCodeCacheError, "invalidate country")
		}
		s.metrics.CacheInvalidation(scopeCountry)
		s.logger.Info("coverage cache invalidated",
			logging.String("platform_id", platformID), logging.String("country_id", countryID))
		return nil
	}

	if err := s.cache.Invalidate(ctx, GlobalKey(platformID)); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "invalidate platform")
	}
	if err := s.cache.InvalidatePrefix(ctx, countryPrefix(platformID)); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "invalidate platform")
	}
	s.metrics.CacheInvalidation(scopePlatform)
	s.logger.Info("coverage cache invalidated", logging.String("platform_id", platformID))
	return nil
}

func (s *serviceImpl) InvalidateAllCache(ctx context.Context) error {
	if err := s.cache.InvalidatePrefix(ctx, cacheRoot); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "invalidate all")
	}
	s.metrics.CacheInvalidation(scopeAll)
	s.logger.Info("coverage cache invalidated", logging.String("scope", scopeAll))
	return nil
}

func (s *serviceImpl) ListPlatforms(ctx context.Context) ([]domain.Platform, error) {
	platforms, err := s.engine.reference.ListPlatforms(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeUnknown, "list platforms")
	}
	if platforms == nil {
		platforms = []domain.Platform{}
	}
	return platforms, nil
}
