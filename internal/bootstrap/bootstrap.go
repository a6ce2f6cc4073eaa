// Package bootstrap assembles the coverage service from configuration.  It
// is shared by apiserver, worker and coverctl so the three binaries build the
// same engine over the same stores.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/turtacn/coverage-intelligence/internal/application/coverage"
	"github.com/turtacn/coverage-intelligence/internal/config"
	domain "github.com/turtacn/coverage-intelligence/internal/domain/coverage"
	"github.com/turtacn/coverage-intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/coverage-intelligence/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/coverage-intelligence/internal/infrastructure/database/redis"
	"github.com/turtacn/coverage-intelligence/internal/infrastructure/dataset"
	"github.com/turtacn/coverage-intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/coverage-intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/coverage-intelligence/internal/interfaces/http/handlers"
	"github.com/turtacn/coverage-intelligence/pkg/errors"
)

// Options select the stores a Runtime is built on.
type Options struct {
	// DatasetPath, when set, serves every repository from a YAML dataset
	// instead of postgres.
	DatasetPath string
	// Component is added to every metric as the "component" label.
	Component string
}

// Runtime holds the wired service and everything that has to be closed
// with it.
type Runtime struct {
	Config  *config.Config
	Logger  logging.Logger
	Engine  *coverage.Engine
	Service coverage.Service

	// Metrics is nil when metrics.enabled is false.
	Metrics   *prometheus.AppMetrics
	collector prometheus.MetricsCollector

	// DB is nil when running on a dataset.
	DB     *postgres.Connection
	Cache  coverage.ScoreCache
	checks []handlers.HealthChecker

	mu      sync.Mutex
	closers []func() error
}

// LoadConfig reads path, or COVERAGE_* variables and defaults when path is
// empty.
func LoadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.LoadFromEnv()
	}
	return config.Load(path)
}

// NewLogger builds the process logger from the log section.
func NewLogger(cfg config.LogConfig) (logging.Logger, error) {
	return logging.NewLogger(logging.LogConfig{
		Level:       cfg.Level,
		Format:      cfg.Format,
		OutputPaths: cfg.OutputPaths,
	})
}

// New connects the configured stores and wires the engine and service.
// On error everything opened so far is closed again.
func New(cfg *config.Config, logger logging.Logger, opts Options) (*Runtime, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	rt := &Runtime{Config: cfg, Logger: logger}
	ready := false
	defer func() {
		if !ready {
			_ = rt.Close()
		}
	}()

	var err error
	var metrics coverage.Metrics = coverage.NopMetrics{}
	var observer repositories.QueryObserver
	if cfg.Metrics.Enabled {
		labels := map[string]string(nil)
		if opts.Component != "" {
			labels = map[string]string{"component": opts.Component}
		}
		rt.collector, err = prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:            cfg.Metrics.Namespace,
			EnableProcessMetrics: true,
			EnableGoMetrics:      true,
			ConstLabels:          labels,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("metrics: %w", err)
		}
		rt.Metrics = prometheus.NewAppMetrics(rt.collector)
		metrics = rt.Metrics
		observer = rt.Metrics
	}

	var (
		reference domain.ReferenceRepository
		taxonomy  domain.TaxonomyRepository
		content   domain.ContentRepository
	)
	if opts.DatasetPath != "" {
		store, err := dataset.Load(opts.DatasetPath)
		if err != nil {
			return nil, fmt.Errorf("dataset: %w", err)
		}
		reference, taxonomy, content = store, store, store
		logger.Info("serving coverage from dataset", logging.String("path", opts.DatasetPath))
	} else {
		conn, err := postgres.NewConnection(cfg.Database, logger.Named("postgres"))
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		rt.DB = conn
		rt.addCloser(conn.Close)
		rt.checks = append(rt.checks, handlers.NewCheck("postgres", conn.HealthCheck))
		reference = repositories.NewReferenceRepository(conn, logger, observer)
		taxonomy = repositories.NewTaxonomyRepository(conn, logger, observer)
		content = repositories.NewContentRepository(conn, logger, observer)
	}

	cache, err := rt.newCache()
	if err != nil {
		return nil, err
	}
	rt.Cache = cache

	cc := cfg.Coverage
	rt.Engine, err = coverage.NewEngine(coverage.EngineConfig{
		Reference:            reference,
		Taxonomy:             taxonomy,
		Content:              content,
		PrimaryLanguages:     cc.PrimaryLanguages,
		HighValueCountries:   cc.HighValueCountries,
		FounderTitleFallback: !cc.DisableFounderTitleFallback,
		MaxRecommendations:   cc.MaxRecommendations,
		TopCountries:         cc.TopCountries,
		PriorityCountries:    cc.PriorityCountries,
		PriorityThreshold:    cc.PriorityThreshold,
		Metrics:              metrics,
		Logger:               logger.Named("engine"),
	})
	if err != nil {
		return nil, err
	}
	rt.Service, err = coverage.NewService(coverage.ServiceConfig{
		Engine:           rt.Engine,
		Cache:            cache,
		CacheTTL:         cc.CacheTTL,
		RecentItemsLimit: cc.RecentItemsLimit,
		Logger:           logger.Named("coverage"),
		Metrics:          metrics,
	})
	if err != nil {
		return nil, err
	}
	ready = true
	return rt, nil
}

func (rt *Runtime) newCache() (coverage.ScoreCache, error) {
	switch rt.Config.Coverage.CacheBackend {
	case "redis":
		client, err := redis.NewClient(rt.Config.Redis, rt.Logger.Named("redis"))
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		rt.addCloser(client.Close)
		rt.checks = append(rt.checks, handlers.NewCheck("redis", client.Ping))
		return redis.NewScoreCache(client, rt.Logger.Named("cache"),
			redis.WithPrefix(rt.Config.Redis.KeyPrefix),
			redis.WithDefaultTTL(rt.Config.Coverage.CacheTTL)), nil
	default:
		return coverage.NewMemoryScoreCache(nil), nil
	}
}

// CoverageMetrics returns the runtime metrics as the engine contract, or a
// no-op when metrics are disabled.
func (rt *Runtime) CoverageMetrics() coverage.Metrics {
	if rt.Metrics == nil {
		return coverage.NopMetrics{}
	}
	return rt.Metrics
}

// MetricsHandler serves the registry, or nil when metrics are disabled.
func (rt *Runtime) MetricsHandler() http.Handler {
	if rt.collector == nil {
		return nil
	}
	return rt.collector.Handler()
}

// HealthCheckers lists the connected stores for the readiness probe.
func (rt *Runtime) HealthCheckers() []handlers.HealthChecker {
	return append([]handlers.HealthChecker(nil), rt.checks...)
}

func (rt *Runtime) addCloser(fn func() error) {
	rt.mu.Lock()
	rt.closers = append(rt.closers, fn)
	rt.mu.Unlock()
}

// Close releases resources in reverse order of acquisition and returns the
// joined failures.
func (rt *Runtime) Close() error {
	rt.mu.Lock()
	closers := rt.closers
	rt.closers = nil
	rt.mu.Unlock()

	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	if rt.Logger != nil {
		_ = rt.Logger.Sync()
	}
	return errors.Join(errs...)
}

// Migrate applies pending migrations on a connection of its own; the
// migration driver closes the pool it was given.
func Migrate(ctx context.Context, cfg *config.Config, logger logging.Logger) (postgres.MigrationState, error) {
	m, err := OpenMigrator(cfg, logger)
	if err != nil {
		return postgres.MigrationState{}, err
	}
	defer m.Close()
	if err := ctx.Err(); err != nil {
		return postgres.MigrationState{}, err
	}
	return m.Up()
}

// OpenMigrator returns a Migrator over a dedicated connection.  Closing the
// Migrator closes that connection.
func OpenMigrator(cfg *config.Config, logger logging.Logger) (*postgres.Migrator, error) {
	conn, err := postgres.NewConnection(cfg.Database, logger.Named("migrate"))
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	m, err := postgres.NewMigrator(conn, cfg.Database.MigrationPath, logger.Named("migrate"))
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return m, nil
}
