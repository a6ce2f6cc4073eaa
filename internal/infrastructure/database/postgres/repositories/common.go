// Package repositories implements the coverage repository ports on the
// postgres content store.
package repositories

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/turtacn/coverage-intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/coverage-intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/coverage-intelligence/pkg/errors"
)

// queryExecutor abstracts sql.DB and sql.Tx
type queryExecutor interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// scanner abstracts sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

// QueryObserver receives the outcome of every store query.
type QueryObserver interface {
	ObserveQuery(operation, status string, d time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveQuery(string, string, time.Duration) {}

// psql renders $n placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// base carries what every repository needs.
type base struct {
	conn     *postgres.Connection
	log      logging.Logger
	observer QueryObserver
}

func newBase(conn *postgres.Connection, log logging.Logger, obs QueryObserver) base {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if obs == nil {
		obs = nopObserver{}
	}
	return base{conn: conn, log: log, observer: obs}
}

func (b base) executor() queryExecutor {
	return b.conn.DB()
}

// query runs a built statement and hands every row to scan.
func (b base) query(ctx context.Context, op string, stmt sq.Sqlizer, scan func(scanner) error) (err error) {
	start := time.Now()
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
		}
		b.observer.ObserveQuery(op, status, time.Since(start))
	}()

	query, args, err := stmt.ToSql()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "build "+op+" query")
	}
	rows, err := b.executor().QueryContext(ctx, query, args...)
	if err != nil {
		b.log.Error("store query failed", logging.String("operation", op), logging.Err(err))
		return errors.Wrap(err, errors.ErrCodeDatabaseError, op)
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return errors.Wrap(err, errors.ErrCodeDatabaseError, "scan "+op)
		}
	}
	if err := rows.Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, op)
	}
	return nil
}
