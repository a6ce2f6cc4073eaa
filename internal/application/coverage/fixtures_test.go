package coverage

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	domain "github.com/turtacn/coverage-intelligence/internal/domain/coverage"
	"github.com/turtacn/coverage-intelligence/internal/infrastructure/dataset"
	"github.com/turtacn/coverage-intelligence/pkg/errors"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

var testLanguages = []domain.Language{
	{Code: "fr", Name: "French", Position: 1},
	{Code: "en", Name: "English", Position: 2},
	{Code: "es", Name: "Spanish", Position: 3},
	{Code: "de", Name: "German", Position: 4},
	{Code: "pt", Name: "Portuguese", Position: 5},
	{Code: "ru", Name: "Russian", Position: 6},
	{Code: "zh", Name: "Chinese", Position: 7},
	{Code: "ar", Name: "Arabic", Position: 8},
	{Code: "hi", Name: "Hindi", Position: 9},
}

// baseDataset has two platforms, four countries and no content.
//
//	lawyers: specialties s-civil, s-family; domains d-housing, d-tax
//	expats:  services with one tree (visa -> visa-work, visa-student) and
//	         one flat leaf (banking); "retired" is inactive
func baseDataset() dataset.Dataset {
	return dataset.Dataset{
		Platforms: []domain.Platform{
			{ID: "lawyers", Code: "LAW", Name: "Lawyers", RecruitmentModel: domain.RecruitmentSpecialtiesDomains},
			{ID: "expats", Code: "EXP", Name: "Expats", RecruitmentModel: domain.RecruitmentServices},
		},
		Countries: []domain.Country{
			{ID: "vn", Code: "VN", Name: "Vietnam", Region: "asia"},
			{ID: "th", Code: "TH", Name: "Thailand", Region: "asia"},
			{ID: "fr", Code: "FR", Name: "France", Region: "europe"},
			{ID: "pe", Code: "PE", Name: "Peru", Region: "americas"},
		},
		Languages: append([]domain.Language(nil), testLanguages...),
		Topics: []domain.Topic{
			{ID: "s-civil", Kind: domain.TaxonomySpecialty, Code: "a-civil", Name: "Civil law", Active: true},
			{ID: "s-family", Kind: domain.TaxonomySpecialty, Code: "b-family", Name: "Family law", Active: true},
			{ID: "s-old", Kind: domain.TaxonomySpecialty, Code: "c-old", Name: "Old", Active: false},
			{ID: "d-housing", Kind: domain.TaxonomyDomain, Code: "a-housing", Name: "Housing", Active: true},
			{ID: "d-tax", Kind: domain.TaxonomyDomain, Code: "b-tax", Name: "Tax", Active: true},
			{ID: "visa", Kind: domain.TaxonomyService, Code: "a-visa", Name: "Visa", Active: true},
			{ID: "visa-work", Kind: domain.TaxonomyService, Code: "b-visa-work", Name: "Work visa", ParentID: "visa", Active: true},
			{ID: "visa-student", Kind: domain.TaxonomyService, Code: "c-visa-student", Name: "Student visa", ParentID: "visa", Active: true},
			{ID: "banking", Kind: domain.TaxonomyService, Code: "d-banking", Name: "Banking", Active: true},
			{ID: "retired", Kind: domain.TaxonomyService, Code: "e-retired", Name: "Retired", Active: false},
		},
	}
}

var itemSeq int

func item(platform, country, lang string, mutate ...func(*domain.ContentItem)) domain.ContentItem {
	itemSeq++
	it := domain.ContentItem{
		ID:         fmt.Sprintf("item-%d", itemSeq),
		PlatformID: platform,
		CountryID:  country,
		Language:   lang,
		Type:       domain.ContentArticle,
		Status:     domain.StatusPublished,
		Title:      "Untitled",
		UpdatedAt:  fixedNow.Add(time.Duration(itemSeq) * time.Minute),
	}
	for _, m := range mutate {
		m(&it)
	}
	return it
}

func topic(kind domain.TaxonomyKind, id string) func(*domain.ContentItem) {
	return func(it *domain.ContentItem) { it.ThemeType, it.ThemeID = kind, id }
}

func ofType(ct domain.ContentType) func(*domain.ContentItem) {
	return func(it *domain.ContentItem) { it.Type = ct }
}

func withStatus(status string) func(*domain.ContentItem) {
	return func(it *domain.ContentItem) { it.Status = status }
}

func titled(title string) func(*domain.ContentItem) {
	return func(it *domain.ContentItem) { it.Title = title }
}

func newTestEngine(store *dataset.Store, mutate ...func(*EngineConfig)) *Engine {
	cfg := EngineConfig{
		Reference:            store,
		Taxonomy:             store,
		Content:              store,
		PrimaryLanguages:     []string{"fr", "en"},
		HighValueCountries:   []string{"FR", "TH"},
		FounderTitleFallback: true,
		Clock:                fixedClock,
	}
	for _, m := range mutate {
		m(&cfg)
	}
	e, err := NewEngine(cfg)
	if err != nil {
		panic(err)
	}
	return e
}

func computeCountry(e *Engine, platformID, countryID string) (*CountryCoverage, error) {
	return e.ComputeCountry(context.Background(), e.NewTaxonomyCache(), platformID, countryID)
}

// randomDataset sprinkles content of every shape over the base dataset.
func randomDataset(seed int64, n int) dataset.Dataset {
	r := rand.New(rand.NewSource(seed))
	d := baseDataset()
	platforms := []string{"lawyers", "expats"}
	countries := []string{"vn", "th", "fr", "pe", "zz"}
	langs := []string{"fr", "en", "es", "de", "pt", "ru", "zh", "ar", "hi", "xx", ""}
	themes := []struct {
		kind domain.TaxonomyKind
		id   string
	}{
		{domain.TaxonomySpecialty, "s-civil"}, {domain.TaxonomySpecialty, "s-family"},
		{domain.TaxonomySpecialty, "s-old"}, {domain.TaxonomyDomain, "d-housing"},
		{domain.TaxonomyDomain, "d-tax"}, {domain.TaxonomyService, "visa"},
		{domain.TaxonomyService, "visa-work"}, {domain.TaxonomyService, "visa-student"},
		{domain.TaxonomyService, "banking"},
	}
	types := []domain.ContentType{
		domain.ContentPillar, domain.ContentComparative, domain.ContentLanding,
		domain.ContentFounder, domain.ContentArticle,
	}
	titles := []string{"Guide", "Meet our Founder", "Notre fondatrice", "Costs", "El fundador"}
	statuses := []string{domain.StatusPublished, domain.StatusPublished, "draft", "review"}

	for i := 0; i < n; i++ {
		it := domain.ContentItem{
			ID:         fmt.Sprintf("rand-%d-%d", seed, i),
			PlatformID: platforms[r.Intn(len(platforms))],
			CountryID:  countries[r.Intn(len(countries))],
			Language:   langs[r.Intn(len(langs))],
			Type:       types[r.Intn(len(types))],
			Status:     statuses[r.Intn(len(statuses))],
			Title:      titles[r.Intn(len(titles))],
			UpdatedAt:  fixedNow.Add(time.Duration(i) * time.Second),
		}
		if r.Intn(2) == 0 {
			th := themes[r.Intn(len(themes))]
			it.ThemeType, it.ThemeID = th.kind, th.id
		}
		d.Content = append(d.Content, it)
	}
	return d
}

// failingContent fails every content query.
type failingContent struct{ err error }

func (f failingContent) FetchCountryContent(context.Context, domain.ContentQuery) ([]domain.ContentItem, error) {
	return nil, f.err
}

func (f failingContent) ListCellItems(context.Context, domain.CellQuery) ([]domain.ContentItem, error) {
	return nil, f.err
}

func (f failingContent) ListRecent(context.Context, string, string, int) ([]domain.ContentItem, error) {
	return nil, f.err
}

var errStoreDown = errors.New(errors.ErrCodeDatabaseError, "connection refused")
