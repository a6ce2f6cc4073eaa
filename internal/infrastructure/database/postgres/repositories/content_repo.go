package repositories

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"

	domain "github.com/turtacn/coverage-intelligence/internal/domain/coverage"
	"github.com/turtacn/coverage-intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/coverage-intelligence/internal/infrastructure/monitoring/logging"
)

var contentColumns = []string{
	"id", "platform_id", "country_id", "language", "theme_type", "theme_id",
	"type", "status", "title", "updated_at",
}

type postgresContentRepo struct {
	base
}

// NewContentRepository serves content items.
func NewContentRepository(conn *postgres.Connection, log logging.Logger, obs QueryObserver) domain.ContentRepository {
	return &postgresContentRepo{base: newBase(conn, log, obs)}
}

// FetchCountryContent is the batched fetch behind the indexed oracle: one
// round trip per country, served by content_items_country_platform_idx.
func (r *postgresContentRepo) FetchCountryContent(ctx context.Context, q domain.ContentQuery) ([]domain.ContentItem, error) {
	stmt := psql.Select(contentColumns...).
		From("content_items").
		Where(sq.Eq{"country_id": q.CountryID})
	if len(q.PlatformIDs) > 0 {
		stmt = stmt.Where(sq.Eq{"platform_id": q.PlatformIDs})
	}
	return r.items(ctx, "fetch_country_content", stmt.OrderBy("id"))
}

func (r *postgresContentRepo) ListCellItems(ctx context.Context, q domain.CellQuery) ([]domain.ContentItem, error) {
	eq := sq.Eq{}
	set := func(col, v string) {
		if v != "" {
			eq[col] = v
		}
	}
	set("platform_id", q.PlatformID)
	set("country_id", q.CountryID)
	set("language", q.Language)
	set("theme_type", string(q.ThemeType))
	set("theme_id", q.ThemeID)
	set("type", string(q.Type))

	stmt := psql.Select(contentColumns...).From("content_items")
	if len(eq) > 0 {
		stmt = stmt.Where(eq)
	}
	return r.items(ctx, "list_cell_items", stmt.OrderBy("id"))
}

func (r *postgresContentRepo) ListRecent(ctx context.Context, platformID, countryID string, limit int) ([]domain.ContentItem, error) {
	stmt := psql.Select(contentColumns...).
		From("content_items").
		Where(sq.Eq{"platform_id": platformID, "country_id": countryID}).
		OrderBy("updated_at DESC", "id")
	if limit > 0 {
		stmt = stmt.Limit(uint64(limit))
	}
	return r.items(ctx, "list_recent", stmt)
}

func (r *postgresContentRepo) items(ctx context.Context, op string, stmt sq.SelectBuilder) ([]domain.ContentItem, error) {
	out := []domain.ContentItem{}
	err := r.query(ctx, op, stmt, func(s scanner) error {
		it, err := scanContentItem(s)
		if err != nil {
			return err
		}
		out = append(out, it)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func scanContentItem(s scanner) (domain.ContentItem, error) {
	var (
		it                 domain.ContentItem
		themeType, themeID sql.NullString
		title              sql.NullString
	)
	err := s.Scan(&it.ID, &it.PlatformID, &it.CountryID, &it.Language, &themeType, &themeID,
		&it.Type, &it.Status, &title, &it.UpdatedAt)
	if err != nil {
		return it, err
	}
	it.ThemeType = domain.TaxonomyKind(themeType.String)
	it.ThemeID = themeID.String
	it.Title = title.String
	return it, nil
}
