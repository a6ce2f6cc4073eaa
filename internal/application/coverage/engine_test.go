package coverage

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/turtacn/coverage-intelligence/internal/domain/coverage"
	"github.com/turtacn/coverage-intelligence/internal/infrastructure/dataset"
	"github.com/turtacn/coverage-intelligence/pkg/errors"
)

func TestComputeCountry_NoContent(t *testing.T) {
	e := newTestEngine(dataset.New(baseDataset()))

	res, err := computeCountry(e, "lawyers", "vn")
	require.NoError(t, err)

	assert.True(t, res.Found)
	assert.Equal(t, 0.0, res.RecruitmentScore)
	assert.Equal(t, 0.0, res.AwarenessScore)
	assert.Equal(t, 0.0, res.FounderScore)
	assert.Equal(t, 0.0, res.OverallScore)
	assert.Equal(t, domain.StatusMissing, res.Status)
	// 50 + 30 + 15 + 10 + 10, clamped.
	assert.Equal(t, 100, res.Priority)

	assert.Equal(t, 36, res.Recruitment.TotalTargets)
	assert.Equal(t, 54, res.Awareness.TotalTargets)
	assert.Equal(t, 18, res.Founder.TotalTargets)
	assert.Equal(t, 108, res.TotalTargets)
	assert.Equal(t, 108, res.MissingTargets)

	require.Len(t, res.Languages, 9)
	for _, l := range res.Languages {
		assert.Equal(t, 12, l.TotalTargets, l.Code)
		assert.Equal(t, 0.0, l.Score)
	}
	assert.True(t, res.Languages[0].Primary)
	assert.False(t, res.Languages[2].Primary)

	var got []string
	for _, r := range res.Recommendations {
		got = append(got, string(r.Type)+":"+r.Language+r.TopicID)
	}
	assert.Equal(t, []string{
		"base_content:fr",
		"base_content:en",
		"recruitment:",
		"founder:",
		"taxonomy_gap:s-civil",
		"taxonomy_gap:s-family",
		"taxonomy_gap:d-housing",
		"taxonomy_gap:d-tax",
		"awareness:",
		"translation:es",
	}, got)
	assert.Equal(t, domain.LevelCritical, res.Recommendations[0].Level)
	assert.Equal(t, domain.LevelCritical, res.Recommendations[1].Level)
}

func TestComputeCountry_OneSpecialtyFullyCovered(t *testing.T) {
	d := baseDataset()
	for _, l := range testLanguages {
		d.Content = append(d.Content, item("lawyers", "vn", l.Code, topic(domain.TaxonomySpecialty, "s-civil")))
	}
	e := newTestEngine(dataset.New(d))

	res, err := computeCountry(e, "lawyers", "vn")
	require.NoError(t, err)

	require.Len(t, res.Recruitment.Components, 2)
	assert.Equal(t, 50.0, res.Recruitment.Components[0].Score)
	assert.Equal(t, 0.0, res.Recruitment.Components[1].Score)
	assert.Equal(t, 25.0, res.RecruitmentScore)
	assert.Equal(t, 13.75, res.OverallScore)
	assert.Equal(t, domain.StatusMissing, res.Status)
	// 50 + 86.25*0.3 + 10 (founder) = 85.875
	assert.Equal(t, 86, res.Priority)

	civil := res.Recruitment.Components[0].Topics[0]
	assert.Equal(t, "s-civil", civil.TopicID)
	assert.Equal(t, 100.0, civil.Progress)
	assert.Empty(t, civil.MissingLanguages)

	require.Len(t, res.Recommendations, 10)
	for i := 1; i < len(res.Recommendations); i++ {
		assert.GreaterOrEqual(t, res.Recommendations[i-1].Priority, res.Recommendations[i].Priority)
	}
	for _, r := range res.Recommendations {
		assert.NotEqual(t, domain.RecommendRecruitment, r.Type)
		assert.NotEqual(t, "s-civil", r.TopicID)
	}
}

func TestComputeCountry_FounderSpansPlatforms(t *testing.T) {
	d := baseDataset()
	d.Content = append(d.Content, item("expats", "vn", "fr", ofType(domain.ContentFounder)))
	e := newTestEngine(dataset.New(d))

	for _, platform := range []string{"lawyers", "expats"} {
		res, err := computeCountry(e, platform, "vn")
		require.NoError(t, err)
		assert.Equal(t, 18, res.Founder.TotalTargets, platform)
		assert.Equal(t, 1, res.Founder.CompletedTargets, platform)
		assert.Equal(t, 5.56, res.FounderScore, platform)
		assert.Len(t, res.Founder.Open, 17)
	}
}

func TestComputeCountry_AwarenessQuotaIsCapped(t *testing.T) {
	score := func(pillars int) *CountryCoverage {
		d := baseDataset()
		for i := 0; i < pillars; i++ {
			d.Content = append(d.Content, item("lawyers", "vn", "fr", ofType(domain.ContentPillar)))
		}
		res, err := computeCountry(newTestEngine(dataset.New(d)), "lawyers", "vn")
		require.NoError(t, err)
		return res
	}

	exact, over := score(3), score(5)
	assert.Equal(t, exact.AwarenessScore, over.AwarenessScore)
	assert.Equal(t, 4.44, exact.AwarenessScore)
	assert.Equal(t, exact.Awareness.Quotas[0].CompletedTargets, over.Awareness.Quotas[0].CompletedTargets)
	assert.Equal(t, 5, over.Awareness.Quotas[0].PublishedItems)
	for _, q := range over.Awareness.Quotas {
		assert.LessOrEqual(t, q.Score, 100.0)
		assert.LessOrEqual(t, q.CompletedTargets, q.TotalTargets)
	}
}

func TestComputeCountry_UnpublishedIsNotCompleted(t *testing.T) {
	d := baseDataset()
	d.Content = append(d.Content, item("lawyers", "vn", "fr", topic(domain.TaxonomySpecialty, "s-civil"), withStatus("draft")))
	e := newTestEngine(dataset.New(d))

	res, err := computeCountry(e, "lawyers", "vn")
	require.NoError(t, err)
	civil := res.Recruitment.Components[0].Topics[0]
	assert.Equal(t, 0, civil.CompletedTargets)
	assert.Equal(t, 1, civil.UnpublishedTargets)
	assert.Contains(t, civil.MissingLanguages, "fr")
	assert.Equal(t, 1, res.TotalItems)
	assert.Equal(t, 0, res.PublishedItems)
}

func TestComputeCountry_OnlyLeafServicesCount(t *testing.T) {
	d := baseDataset()
	for _, l := range testLanguages {
		d.Content = append(d.Content,
			item("expats", "vn", l.Code, topic(domain.TaxonomyService, "visa")),
			item("expats", "vn", l.Code, topic(domain.TaxonomyService, "retired")),
		)
	}
	store := dataset.New(d)
	res, err := computeCountry(newTestEngine(store), "expats", "vn")
	require.NoError(t, err)
	require.Len(t, res.Recruitment.Components, 1)
	assert.Equal(t, 27, res.Recruitment.TotalTargets)
	assert.Equal(t, 0.0, res.RecruitmentScore)

	for _, l := range testLanguages {
		store.AddContent(item("expats", "vn", l.Code, topic(domain.TaxonomyService, "visa-work")))
	}
	res, err = computeCountry(newTestEngine(store), "expats", "vn")
	require.NoError(t, err)
	assert.Equal(t, 33.33, res.RecruitmentScore)
}

type countingMetrics struct {
	NopMetrics
	mu        sync.Mutex
	fallbacks int
	cache     map[string]int
	snapshots map[string]int
}

func (m *countingMetrics) FounderFallbackHit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallbacks++
}

func (m *countingMetrics) CacheRequest(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cache == nil {
		m.cache = map[string]int{}
	}
	m.cache[result]++
}

func (m *countingMetrics) SnapshotPublished(sink, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snapshots == nil {
		m.snapshots = map[string]int{}
	}
	m.snapshots[sink+":"+status]++
}

func TestComputeCountry_FounderTitleFallback(t *testing.T) {
	d := baseDataset()
	d.Content = append(d.Content, item("lawyers", "vn", "fr", titled("Rencontre avec le Fondateur")))

	metrics := &countingMetrics{}
	on := newTestEngine(dataset.New(d), func(c *EngineConfig) { c.Metrics = metrics })
	res, err := computeCountry(on, "lawyers", "vn")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Founder.CompletedTargets)
	assert.Equal(t, 1, metrics.fallbacks)

	off := newTestEngine(dataset.New(d), func(c *EngineConfig) { c.FounderTitleFallback = false })
	res, err = computeCountry(off, "lawyers", "vn")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Founder.CompletedTargets)
}

func TestComputeCountry_UnknownCountry(t *testing.T) {
	e := newTestEngine(dataset.New(baseDataset()))

	res, err := computeCountry(e, "lawyers", "atlantis")
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.Equal(t, "atlantis", res.Country.ID)
	assert.Equal(t, domain.StatusMissing, res.Status)
	assert.Equal(t, 0.0, res.OverallScore)
	assert.Empty(t, res.Recommendations)
	assert.NotNil(t, res.Recommendations)
	assert.Empty(t, res.Recruitment.Components)
}

func TestComputeCountry_UnknownPlatform(t *testing.T) {
	e := newTestEngine(dataset.New(baseDataset()))

	_, err := computeCountry(e, "dentists", "vn")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodePlatformNotFound))
	assert.True(t, errors.IsNotFound(err))

	_, err = computeCountry(e, "", "vn")
	assert.True(t, errors.IsValidation(err))
}

func TestComputeCountry_StoreFailurePropagates(t *testing.T) {
	store := dataset.New(baseDataset())
	for _, factory := range []OracleFactory{NewIndexedOracle, NewNaiveOracle} {
		e := newTestEngine(store, func(c *EngineConfig) {
			c.Content = failingContent{err: errStoreDown}
			c.Oracle = factory
		})
		_, err := computeCountry(e, "lawyers", "vn")
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrCodeDatabaseError), err.Error())
	}
}

func TestComputeCountry_EmptyTaxonomyScoresZero(t *testing.T) {
	d := baseDataset()
	d.Topics = nil
	for _, l := range testLanguages {
		d.Content = append(d.Content,
			item("lawyers", "vn", l.Code, ofType(domain.ContentFounder)),
			item("expats", "vn", l.Code, ofType(domain.ContentFounder)),
		)
	}
	e := newTestEngine(dataset.New(d))

	res, err := computeCountry(e, "lawyers", "vn")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Recruitment.TotalTargets)
	assert.Equal(t, 0.0, res.RecruitmentScore)
	assert.Equal(t, 100.0, res.FounderScore)
	assert.Equal(t, 10.0, res.OverallScore)
	// 50 + 27 + 15; with no topics the first-topic rule stays silent.
	assert.Equal(t, 92, res.Priority)
}

func TestComputeCountry_HighValueBonus(t *testing.T) {
	d := baseDataset()
	for _, l := range testLanguages {
		d.Content = append(d.Content,
			item("lawyers", "fr", l.Code, topic(domain.TaxonomySpecialty, "s-civil")),
			item("lawyers", "pe", l.Code, topic(domain.TaxonomySpecialty, "s-civil")),
		)
	}
	e := newTestEngine(dataset.New(d))

	fr, err := computeCountry(e, "lawyers", "fr")
	require.NoError(t, err)
	pe, err := computeCountry(e, "lawyers", "pe")
	require.NoError(t, err)
	assert.Equal(t, pe.OverallScore, fr.OverallScore)
	assert.Equal(t, 100, fr.Priority)
	assert.Equal(t, 86, pe.Priority)
}

func TestComputeCountry_Bounds(t *testing.T) {
	for seed := int64(1); seed <= 6; seed++ {
		store := dataset.New(randomDataset(seed, 400))
		e := newTestEngine(store)
		for _, p := range []string{"lawyers", "expats"} {
			for _, c := range []string{"vn", "th", "fr", "pe"} {
				res, err := computeCountry(e, p, c)
				require.NoError(t, err)
				for name, v := range map[string]float64{
					"recruitment": res.RecruitmentScore,
					"awareness":   res.AwarenessScore,
					"founder":     res.FounderScore,
					"overall":     res.OverallScore,
				} {
					assert.GreaterOrEqual(t, v, 0.0, name)
					assert.LessOrEqual(t, v, 100.0, name)
				}
				assert.GreaterOrEqual(t, res.Priority, 0)
				assert.LessOrEqual(t, res.Priority, 100)
				assert.LessOrEqual(t, res.CompletedTargets, res.TotalTargets)
				assert.LessOrEqual(t, len(res.Recommendations), 10)
				for _, comp := range res.Recruitment.Components {
					assert.LessOrEqual(t, comp.CompletedTargets, comp.TotalTargets)
				}
				for _, l := range res.Languages {
					assert.LessOrEqual(t, l.CompletedTargets, l.TotalTargets)
				}
			}
		}
	}
}

func TestComputeCountry_PublishingNeverLowersScore(t *testing.T) {
	ctx := context.Background()
	for seed := int64(10); seed < 14; seed++ {
		store := dataset.New(randomDataset(seed, 150))
		e := newTestEngine(store)

		before, err := computeCountry(e, "lawyers", "th")
		require.NoError(t, err)

		// Fill one missing cell of every dimension, one at a time.
		var missing []domain.ContentItem
		for _, comp := range before.Recruitment.Components {
			for _, tp := range comp.Topics {
				for _, l := range tp.MissingLanguages {
					missing = append(missing, item("lawyers", "th", l, topic(comp.Kind, tp.TopicID)))
				}
			}
		}
		for _, slot := range before.Founder.Open {
			missing = append(missing, item(slot.PlatformID, "th", slot.Language, ofType(domain.ContentFounder)))
		}
		missing = append(missing, item("lawyers", "th", "de", ofType(domain.ContentLanding)))

		prev := before.OverallScore
		for _, it := range missing {
			store.AddContent(it)
			next, err := e.ComputeCountry(ctx, e.NewTaxonomyCache(), "lawyers", "th")
			require.NoError(t, err)
			assert.GreaterOrEqual(t, next.OverallScore, prev, "after adding %s", it.ID)
			prev = next.OverallScore
		}
	}
}

func TestComputeCountry_BatchedMatchesNaive(t *testing.T) {
	for seed := int64(20); seed < 26; seed++ {
		store := dataset.New(randomDataset(seed, 300))
		indexed := newTestEngine(store)
		naive := newTestEngine(store, func(c *EngineConfig) { c.Oracle = NewNaiveOracle })

		for _, p := range []string{"lawyers", "expats"} {
			for _, c := range []string{"vn", "th", "fr", "pe", "zz"} {
				before := store.Queries()
				a, err := computeCountry(indexed, p, c)
				require.NoError(t, err)
				batched := store.Queries() - before

				before = store.Queries()
				b, err := computeCountry(naive, p, c)
				require.NoError(t, err)
				perCell := store.Queries() - before

				assert.Equal(t, b, a, "seed %d %s/%s", seed, p, c)
				if a.Found {
					assert.Equal(t, 1, batched)
					assert.Greater(t, perCell, a.TotalTargets/6)
				}
			}
		}
	}
}

func TestComputeCountry_ItemWithoutLanguageCountedOnce(t *testing.T) {
	d := baseDataset()
	d.Content = append(d.Content, item("lawyers", "vn", "", topic(domain.TaxonomySpecialty, "s-civil")))
	store := dataset.New(d)

	a, err := computeCountry(newTestEngine(store), "lawyers", "vn")
	require.NoError(t, err)
	b, err := computeCountry(newTestEngine(store, func(c *EngineConfig) { c.Oracle = NewNaiveOracle }), "lawyers", "vn")
	require.NoError(t, err)

	assert.Equal(t, 1, a.TotalItems)
	assert.Equal(t, 1, a.PublishedItems)
	assert.Equal(t, b, a)
}

func TestTargetMatrix_CellsAreUnique(t *testing.T) {
	d := baseDataset()
	// Duplicate topic and language rows must not double count.
	d.Topics = append(d.Topics, d.Topics[0])
	d.Languages = append(d.Languages, domain.Language{Code: "fr", Name: "French", Position: 10})
	e := newTestEngine(dataset.New(d))
	ctx := context.Background()

	for _, p := range []string{"lawyers", "expats"} {
		tax := e.NewTaxonomyCache()
		platform, err := e.Platform(ctx, tax, p)
		require.NoError(t, err)
		m, err := BuildTargetMatrix(ctx, platform, tax)
		require.NoError(t, err)

		seen := map[string]bool{}
		for _, c := range m.Cells() {
			require.False(t, seen[c.Key()], c.Key())
			seen[c.Key()] = true
		}
		total := m.TotalTargets(DimensionRecruitment) + m.TotalTargets(DimensionAwareness) + m.TotalTargets(DimensionFounder)
		assert.Equal(t, total, len(seen))
		// 9 languages: 2 founder slots and 6 awareness slots each
		assert.Equal(t, 18, m.TotalTargets(DimensionFounder))
		assert.Equal(t, 54, m.TotalTargets(DimensionAwareness))
	}
}

func TestTaxonomyCache_LanguagesKeepLowestPosition(t *testing.T) {
	d := baseDataset()
	d.Languages = append([]domain.Language{{Code: "en", Name: "English (dup)", Position: 20}}, d.Languages...)
	e := newTestEngine(dataset.New(d))

	langs, err := e.NewTaxonomyCache().Languages(context.Background())
	require.NoError(t, err)
	require.Len(t, langs, len(testLanguages))
	assert.Equal(t, "en", langs[1].Code)
	assert.Equal(t, "English", langs[1].Name)
}

func TestTaxonomyCache_ReadsOnce(t *testing.T) {
	e := newTestEngine(dataset.New(baseDataset()))
	tax := e.NewTaxonomyCache()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := e.ComputeCountry(ctx, tax, "lawyers", "vn")
		require.NoError(t, err)
	}
	// languages, platforms, specialties, domains
	assert.Equal(t, 4, tax.Loads())
}

func TestWeightsSumToOne(t *testing.T) {
	assert.InDelta(t, 1.0, WeightRecruitment+WeightAwareness+WeightFounder, 1e-9)
	sum := 0.0
	for _, q := range AwarenessQuotas {
		sum += q.Weight
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestOverallScore(t *testing.T) {
	assert.Equal(t, 100.0, overallScore(100, 100, 100))
	assert.Equal(t, 0.0, overallScore(0, 0, 0))
	assert.Equal(t, 55.0, overallScore(100, 0, 0))
	assert.Equal(t, 35.0, overallScore(0, 100, 0))
	assert.Equal(t, 10.0, overallScore(0, 0, 100))
	assert.Equal(t, 0.56, overallScore(0, 0, 5.56))
}

func TestComputeCountry_ComputedAtUsesClock(t *testing.T) {
	e := newTestEngine(dataset.New(baseDataset()))
	res, err := computeCountry(e, "expats", "pe")
	require.NoError(t, err)
	assert.True(t, res.ComputedAt.Equal(fixedNow))
	assert.Equal(t, time.UTC, res.ComputedAt.Location())
}
