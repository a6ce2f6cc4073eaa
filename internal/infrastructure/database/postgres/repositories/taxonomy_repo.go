package repositories

import (
	"context"
	"database/sql"

	domain "github.com/turtacn/coverage-intelligence/internal/domain/coverage"
	"github.com/turtacn/coverage-intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/coverage-intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/coverage-intelligence/pkg/errors"
)

type postgresTaxonomyRepo struct {
	base
}

// NewTaxonomyRepository serves the active topics of each taxonomy.
func NewTaxonomyRepository(conn *postgres.Connection, log logging.Logger, obs QueryObserver) domain.TaxonomyRepository {
	return &postgresTaxonomyRepo{base: newBase(conn, log, obs)}
}

func (r *postgresTaxonomyRepo) ListActiveTopics(ctx context.Context, kind domain.TaxonomyKind) ([]domain.Topic, error) {
	if !kind.IsValid() {
		return nil, errors.Newf(errors.ErrCodeInvalidParam, "unknown taxonomy %q", kind)
	}
	stmt := psql.Select("id", "kind", "code", "name", "parent_id", "active").
		From("topics").
		Where("kind = ? AND active", string(kind)).
		OrderBy("code", "id")

	out := []domain.Topic{}
	err := r.query(ctx, "list_active_topics", stmt, func(s scanner) error {
		var (
			t      domain.Topic
			parent sql.NullString
		)
		if err := s.Scan(&t.ID, &t.Kind, &t.Code, &t.Name, &parent, &t.Active); err != nil {
			return err
		}
		t.ParentID = parent.String
		out = append(out, t)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
