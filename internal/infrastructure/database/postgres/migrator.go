package postgres

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file" // file:// source driver

	"github.com/turtacn/coverage-intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/coverage-intelligence/pkg/errors"
)

// MigrationState is the schema version recorded by golang-migrate.
type MigrationState struct {
	Version uint `json:"version"`
	Dirty   bool `json:"dirty"`
}

// migrationRunner is the subset of *migrate.Migrate the Migrator drives.
type migrationRunner interface {
	Up() error
	Steps(n int) error
	Force(version int) error
	Version() (uint, bool, error)
	Close() (error, error)
}

// Migrator applies the SQL files of the migrations directory to the
// content store.
type Migrator struct {
	runner migrationRunner
	logger logging.Logger
}

// NewMigrator binds the migrations in dir to the connection's pool.  The
// pool is owned by the Migrator from then on.
func NewMigrator(conn *Connection, dir string, log logging.Logger) (*Migrator, error) {
	driver, err := migratepg.WithInstance(conn.DB(), &migratepg.Config{})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeMigration, "create migration driver")
	}
	m, err := migrate.NewWithDatabaseInstance(sourceURL(dir), "postgres", driver)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeMigration, "load migrations")
	}
	return &Migrator{runner: m, logger: log}, nil
}

func sourceURL(dir string) string {
	if strings.Contains(dir, "://") {
		return dir
	}
	return "file://" + dir
}

// Up applies every pending migration.  An up-to-date schema is not an error.
func (m *Migrator) Up() (MigrationState, error) {
	if err := m.runner.Up(); err != nil && !stderrors.Is(err, migrate.ErrNoChange) {
		return m.state(), errors.Wrap(err, errors.ErrCodeMigration, "apply migrations")
	}
	st := m.state()
	m.logger.Info("migrations applied", logging.Int64("version", int64(st.Version)), logging.Bool("dirty", st.Dirty))
	return st, nil
}

// Down rolls back steps migrations.
func (m *Migrator) Down(steps int) (MigrationState, error) {
	if steps <= 0 {
		return MigrationState{}, errors.Newf(errors.ErrCodeInvalidParam, "steps must be positive, got %d", steps)
	}
	if err := m.runner.Steps(-steps); err != nil {
		if stderrors.Is(err, migrate.ErrNoChange) {
			return m.state(), errors.New(errors.ErrCodeMigration, "no migrations to roll back")
		}
		return m.state(), errors.Wrap(err, errors.ErrCodeMigration, fmt.Sprintf("roll back %d step(s)", steps))
	}
	st := m.state()
	m.logger.Info("migrations rolled back", logging.Int("steps", steps), logging.Int64("version", int64(st.Version)))
	return st, nil
}

// Status reports the recorded version.  A fresh database is version 0.
func (m *Migrator) Status() (MigrationState, error) {
	v, dirty, err := m.runner.Version()
	if err != nil {
		if stderrors.Is(err, migrate.ErrNilVersion) {
			return MigrationState{}, nil
		}
		return MigrationState{}, errors.Wrap(err, errors.ErrCodeMigration, "read migration version")
	}
	return MigrationState{Version: v, Dirty: dirty}, nil
}

// Force records version without running anything; it clears a dirty flag
// left by a failed migration.
func (m *Migrator) Force(version int) error {
	if err := m.runner.Force(version); err != nil {
		return errors.Wrap(err, errors.ErrCodeMigration, fmt.Sprintf("force version %d", version))
	}
	m.logger.Warn("migration version forced", logging.Int("version", version))
	return nil
}

// Close releases the source and database handles of the runner.  The
// postgres driver closes the pool it was built on, so callers hand
// NewMigrator a dedicated Connection.
func (m *Migrator) Close() error {
	srcErr, dbErr := m.runner.Close()
	if srcErr != nil {
		return errors.Wrap(srcErr, errors.ErrCodeMigration, "close migration source")
	}
	if dbErr != nil {
		return errors.Wrap(dbErr, errors.ErrCodeMigration, "close migration driver")
	}
	return nil
}

func (m *Migrator) state() MigrationState {
	st, _ := m.Status()
	return st
}
