// Package coverage is the coverage and gap-analysis scoring engine.  It
// turns content existence facts into weighted completeness scores, priority
// rankings and production recommendations.  Scoring is a pure function of
// the stores' current state; caching lives in Service, around it.
package coverage

import (
	"context"
	"time"

	domain "github.com/turtacn/coverage-intelligence/internal/domain/coverage"
	"github.com/turtacn/coverage-intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/coverage-intelligence/pkg/errors"
)

// -----------------------------------------------------------------------
// Configuration
// -----------------------------------------------------------------------

// EngineConfig holds the dependencies and tunables of an Engine.
type EngineConfig struct {
	Reference domain.ReferenceRepository
	Taxonomy  domain.TaxonomyRepository
	Content   domain.ContentRepository

	PrimaryLanguages     []string
	HighValueCountries   []string
	FounderTitleFallback bool
	MaxRecommendations   int
	TopCountries         int
	PriorityCountries    int
	PriorityThreshold    float64

	// Oracle defaults to NewIndexedOracle.
	Oracle  OracleFactory
	Metrics Metrics
	Logger  logging.Logger
	Clock   func() time.Time
}

// Engine computes coverage results.  It holds no per-request state.
type Engine struct {
	reference domain.ReferenceRepository
	taxonomy  domain.TaxonomyRepository
	content   domain.ContentRepository

	primary           []string
	highValue         highValueSet
	titleFallback     bool
	maxRecs           int
	topN              int
	priorityN         int
	priorityThreshold float64

	oracle  OracleFactory
	metrics Metrics
	logger  logging.Logger
	clock   func() time.Time
}

// NewEngine validates cfg and returns an Engine.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if cfg.Reference == nil {
		return nil, errors.InvalidParam("coverage engine requires a reference repository")
	}
	if cfg.Taxonomy == nil {
		return nil, errors.InvalidParam("coverage engine requires a taxonomy repository")
	}
	if cfg.Content == nil {
		return nil, errors.InvalidParam("coverage engine requires a content repository")
	}

	e := &Engine{
		reference:         cfg.Reference,
		taxonomy:          cfg.Taxonomy,
		content:           cfg.Content,
		primary:           append([]string(nil), cfg.PrimaryLanguages...),
		highValue:         newHighValueSet(cfg.HighValueCountries),
		titleFallback:     cfg.FounderTitleFallback,
		maxRecs:           cfg.MaxRecommendations,
		topN:              cfg.TopCountries,
		priorityN:         cfg.PriorityCountries,
		priorityThreshold: cfg.PriorityThreshold,
		oracle:            cfg.Oracle,
		metrics:           cfg.Metrics,
		logger:            cfg.Logger,
		clock:             cfg.Clock,
	}
	if e.maxRecs <= 0 {
		e.maxRecs = 10
	}
	if e.topN <= 0 {
		e.topN = 10
	}
	if e.priorityN <= 0 {
		e.priorityN = 20
	}
	if e.priorityThreshold <= 0 {
		e.priorityThreshold = 60
	}
	if e.oracle == nil {
		e.oracle = NewIndexedOracle
	}
	if e.metrics == nil {
		e.metrics = NopMetrics{}
	}
	if e.logger == nil {
		e.logger = logging.NewNopLogger()
	}
	if e.clock == nil {
		e.clock = time.Now
	}
	return e, nil
}

// NewTaxonomyCache returns a fresh read-through cache over the engine's
// repositories, for one request or batch.
func (e *Engine) NewTaxonomyCache() *TaxonomyCache {
	return NewTaxonomyCache(e.taxonomy, e.reference)
}

// Platform resolves a platform id.
func (e *Engine) Platform(ctx context.Context, tax *TaxonomyCache, platformID string) (domain.Platform, error) {
	if platformID == "" {
		return domain.Platform{}, errors.InvalidParam("platform id is required")
	}
	platforms, err := tax.Platforms(ctx)
	if err != nil {
		return domain.Platform{}, errors.Wrap(err, errors.ErrCodeUnknown, "list platforms")
	}
	for _, p := range platforms {
		if p.ID == platformID {
			return p, nil
		}
	}
	return domain.Platform{}, errors.Newf(errors.ErrCodePlatformNotFound, "platform %s not found", platformID)
}

// -----------------------------------------------------------------------
// Country scoring
// -----------------------------------------------------------------------

// ComputeCountry scores one (platform, country) pair.  An unknown country
// yields a zero result; store failures are returned.
func (e *Engine) ComputeCountry(ctx context.Context, tax *TaxonomyCache, platformID, countryID string) (result *CountryCoverage, err error) {
	start := time.Now()
	defer func() {
		e.metrics.ObserveComputation("country", statusLabel(err), time.Since(start))
	}()

	platform, err := e.Platform(ctx, tax, platformID)
	if err != nil {
		return nil, err
	}
	if countryID == "" {
		return nil, errors.InvalidParam("country id is required")
	}

	country, err := e.reference.GetCountry(ctx, countryID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeUnknown, "load country")
	}
	if country == nil {
		return e.zeroCoverage(platform.ID, countryID), nil
	}

	matrix, err := BuildTargetMatrix(ctx, platform, tax)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeUnknown, "build target matrix")
	}

	platformIDs := make([]string, 0, len(matrix.FounderPlatforms))
	for _, p := range matrix.FounderPlatforms {
		platformIDs = append(platformIDs, p.ID)
	}
	oracle, err := e.oracle(ctx, e.content, country.ID, platformIDs, e.founderMatcher(country.ID))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeUnknown, "fetch country content")
	}

	result, err = e.score(ctx, matrix, oracle, *country)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeUnknown, "score country")
	}

	e.logger.Debug("country coverage computed",
		logging.String("platform_id", platform.ID),
		logging.String("country_id", country.ID),
		logging.Float64("overall", result.OverallScore),
		logging.Int("priority", result.Priority),
		logging.Int("queries", oracle.Queries()),
		logging.Duration("duration", time.Since(start)),
	)
	return result, nil
}

func (e *Engine) score(ctx context.Context, m *TargetMatrix, o CompletionOracle, country domain.Country) (*CountryCoverage, error) {
	primary := make(map[string]bool, len(e.primary))
	for _, p := range e.primary {
		primary[p] = true
	}
	tally := newLanguageTally(m.Languages, primary)

	recruitment, err := scoreRecruitment(ctx, m, o, tally)
	if err != nil {
		return nil, err
	}
	awareness, err := scoreAwareness(ctx, m, o, tally)
	if err != nil {
		return nil, err
	}
	founder, err := scoreFounder(ctx, m, o, tally)
	if err != nil {
		return nil, err
	}

	counts, err := o.Counts(ctx, m.Platform.ID, "")
	if err != nil {
		return nil, err
	}
	for _, l := range m.Languages {
		lc, err := o.Counts(ctx, m.Platform.ID, l.Code)
		if err != nil {
			return nil, err
		}
		tally.addItems(l.Code, lc.Published)
	}

	c := &CountryCoverage{
		PlatformID:       m.Platform.ID,
		Country:          CountryRef{ID: country.ID, Code: country.Code, Name: country.Name, Region: country.Region},
		Found:            true,
		RecruitmentScore: recruitment.Score,
		AwarenessScore:   awareness.Score,
		FounderScore:     founder.Score,
		OverallScore:     overallScore(recruitment.Score, awareness.Score, founder.Score),
		Recruitment:      recruitment,
		Awareness:        awareness,
		Founder:          founder,
		Languages:        tally.result(),
		TotalItems:       counts.Total,
		PublishedItems:   counts.Published,
		ComputedAt:       e.clock().UTC(),
	}
	c.Status = domain.StatusForScore(c.OverallScore)
	c.TotalTargets = recruitment.TotalTargets + awareness.TotalTargets + founder.TotalTargets
	c.CompletedTargets = recruitment.CompletedTargets + awareness.CompletedTargets + founder.CompletedTargets
	c.UnpublishedTargets = recruitment.UnpublishedTargets + founder.UnpublishedTargets
	c.MissingTargets = c.TotalTargets - c.CompletedTargets

	c.Priority = computePriority(priorityInput{
		coverage:  c,
		languages: c.Languages,
		highValue: e.highValue.contains(country.Code),
	})
	c.Recommendations = generateRecommendations(recommendationInput{
		coverage:  c,
		languages: c.Languages,
		primary:   e.primary,
	}, e.maxRecs)
	return c, nil
}

// zeroCoverage is the renderable result of a country the registry does not
// know.
func (e *Engine) zeroCoverage(platformID, countryID string) *CountryCoverage {
	return &CountryCoverage{
		PlatformID:      platformID,
		Country:         CountryRef{ID: countryID},
		Status:          domain.StatusMissing,
		Recruitment:     RecruitmentBreakdown{Components: []ComponentBreakdown{}},
		Awareness:       AwarenessBreakdown{Quotas: []QuotaBreakdown{}},
		Languages:       []LanguageCoverage{},
		Recommendations: []Recommendation{},
		ComputedAt:      e.clock().UTC(),
	}
}

func (e *Engine) founderMatcher(countryID string) *FounderMatcher {
	return NewFounderMatcher(e.titleFallback, func(item domain.ContentItem) {
		e.metrics.FounderFallbackHit()
		e.logger.Debug("founder matched by legacy title",
			logging.String("platform_id", item.PlatformID),
			logging.String("country_id", countryID),
			logging.String("item_id", item.ID),
			logging.String("language", item.Language),
		)
	})
}
