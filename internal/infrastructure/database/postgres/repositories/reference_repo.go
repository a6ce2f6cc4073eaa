package repositories

import (
	"context"

	domain "github.com/turtacn/coverage-intelligence/internal/domain/coverage"
	"github.com/turtacn/coverage-intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/coverage-intelligence/internal/infrastructure/monitoring/logging"
)

type postgresReferenceRepo struct {
	base
}

// NewReferenceRepository serves platforms, countries and languages.
func NewReferenceRepository(conn *postgres.Connection, log logging.Logger, obs QueryObserver) domain.ReferenceRepository {
	return &postgresReferenceRepo{base: newBase(conn, log, obs)}
}

func (r *postgresReferenceRepo) ListPlatforms(ctx context.Context) ([]domain.Platform, error) {
	stmt := psql.Select("id", "code", "name", "recruitment_model").
		From("platforms").
		OrderBy("position", "id")

	out := []domain.Platform{}
	err := r.query(ctx, "list_platforms", stmt, func(s scanner) error {
		var p domain.Platform
		if err := s.Scan(&p.ID, &p.Code, &p.Name, &p.RecruitmentModel); err != nil {
			return err
		}
		out = append(out, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *postgresReferenceRepo) ListCountries(ctx context.Context) ([]domain.Country, error) {
	return r.countries(ctx, "list_countries", "")
}

func (r *postgresReferenceRepo) GetCountry(ctx context.Context, id string) (*domain.Country, error) {
	list, err := r.countries(ctx, "get_country", id)
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return &list[0], nil
}

func (r *postgresReferenceRepo) countries(ctx context.Context, op, id string) ([]domain.Country, error) {
	stmt := psql.Select("id", "code", "name", "region").From("countries")
	if id != "" {
		stmt = stmt.Where("id = ?", id)
	}
	stmt = stmt.OrderBy("name", "id")

	out := []domain.Country{}
	err := r.query(ctx, op, stmt, func(s scanner) error {
		var c domain.Country
		if err := s.Scan(&c.ID, &c.Code, &c.Name, &c.Region); err != nil {
			return err
		}
		out = append(out, c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *postgresReferenceRepo) ListLanguages(ctx context.Context) ([]domain.Language, error) {
	stmt := psql.Select("code", "name", "position").
		From("languages").
		Where("supported = ?", true).
		OrderBy("position", "code")

	out := []domain.Language{}
	err := r.query(ctx, "list_languages", stmt, func(s scanner) error {
		var l domain.Language
		if err := s.Scan(&l.Code, &l.Name, &l.Position); err != nil {
			return err
		}
		out = append(out, l)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
