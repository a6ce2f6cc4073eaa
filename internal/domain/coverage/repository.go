package coverage

import (
	"context"
)

// ReferenceRepository reads platforms, countries and languages.
type ReferenceRepository interface {
	// ListPlatforms returns every platform in registry order.
	ListPlatforms(ctx context.Context) ([]Platform, error)
	ListCountries(ctx context.Context) ([]Country, error)
	// GetCountry returns (nil, nil) for unknown ids; an unknown country is a
	// valid business outcome for the engine, not a failure.
	GetCountry(ctx context.Context, id string) (*Country, error)
	// ListLanguages returns the supported languages ordered by position.
	ListLanguages(ctx context.Context) ([]Language, error)
}

// TaxonomyRepository reads topic taxonomies.
type TaxonomyRepository interface {
	// ListActiveTopics returns the active topics of kind ordered by code.
	ListActiveTopics(ctx context.Context, kind TaxonomyKind) ([]Topic, error)
}

// ContentQuery selects every content item of one country across platforms.
type ContentQuery struct {
	CountryID   string
	PlatformIDs []string
}

// CellQuery selects the content items of one target cell.  Empty optional
// fields are not filtered on.
type CellQuery struct {
	PlatformID string
	CountryID  string
	Language   string
	ThemeType  TaxonomyKind
	ThemeID    string
	Type       ContentType
}

// ContentRepository reads content existence facts.
type ContentRepository interface {
	// FetchCountryContent returns every item matching q in one round trip.
	FetchCountryContent(ctx context.Context, q ContentQuery) ([]ContentItem, error)
	// ListCellItems returns the items of a single cell.  It backs the
	// per-cell oracle that the batched path is checked against.
	ListCellItems(ctx context.Context, q CellQuery) ([]ContentItem, error)
	// ListRecent returns the most recently updated items of a pair.
	ListRecent(ctx context.Context, platformID, countryID string, limit int) ([]ContentItem, error)
}
