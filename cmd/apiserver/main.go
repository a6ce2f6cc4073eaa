// Command apiserver serves the coverage API over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/turtacn/coverage-intelligence/internal/bootstrap"
	"github.com/turtacn/coverage-intelligence/internal/config"
	"github.com/turtacn/coverage-intelligence/internal/infrastructure/monitoring/logging"
	httpserver "github.com/turtacn/coverage-intelligence/internal/interfaces/http"
	"github.com/turtacn/coverage-intelligence/internal/interfaces/http/handlers"
	"github.com/turtacn/coverage-intelligence/internal/interfaces/http/middleware"
)

// Build-time variables injected via ldflags.
var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: COVERAGE_* environment)")
	datasetPath := flag.String("dataset", "", "serve a YAML dataset instead of the content store")
	httpPort := flag.Int("http-port", 0, "HTTP server port (overrides config)")
	migrateOnStart := flag.Bool("migrate", false, "apply pending migrations before serving")
	flag.Parse()

	if err := run(*configPath, *datasetPath, *httpPort, *migrateOnStart); err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, datasetPath string, httpPort int, migrateOnStart bool) error {
	cfg, err := bootstrap.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if httpPort > 0 {
		cfg.Server.Port = httpPort
	}

	logger, err := bootstrap.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	logger = logger.Named("apiserver")
	logging.SetDefault(logger)
	logger.Info("starting coverage API server",
		logging.String("version", version),
		logging.Int("http_port", cfg.Server.Port),
		logging.String("cache_backend", cfg.Coverage.CacheBackend),
		logging.Bool("dataset", datasetPath != ""),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if migrateOnStart && datasetPath == "" {
		st, err := bootstrap.Migrate(ctx, cfg, logger)
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info("schema ready", logging.Int64("version", int64(st.Version)))
	}

	rt, err := bootstrap.New(cfg, logger, bootstrap.Options{DatasetPath: datasetPath, Component: "apiserver"})
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			logger.Error("shutdown", logging.Err(err))
		}
	}()

	if configPath != "" {
		config.Watch(configPath, func(next *config.Config) {
			logger.Warn("configuration file changed; restart to apply",
				logging.String("path", configPath),
				logging.String("log_level", next.Log.Level),
				logging.Duration("cache_ttl", next.Coverage.CacheTTL))
		})
	}

	routerCfg := httpserver.RouterConfig{
		CoverageHandler: handlers.NewCoverageHandler(rt.Service, logger.Named("http")),
		HealthHandler:   handlers.NewHealthHandler(version, rt.HealthCheckers()...),
		Logger:          logger.Named("access"),
		Logging:         middleware.DefaultLoggingConfig(),
		CORSOrigins:     cfg.Server.CORSAllowedOrigins,
		RateLimit:       cfg.Server.RateLimitRequests,
		RateLimitEvery:  cfg.Server.RateLimitWindow,
		MetricsHandler:  rt.MetricsHandler(),
		MetricsPath:     cfg.Metrics.Path,
	}
	if rt.Metrics != nil {
		routerCfg.Recorder = rt.Metrics
	}

	srv := httpserver.NewServer(cfg.Server, httpserver.NewRouter(routerCfg), logger)
	if err := srv.Run(ctx); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
