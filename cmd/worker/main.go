// Command worker refreshes coverage roll-ups on a schedule and ships
// snapshots to the configured sinks.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/turtacn/coverage-intelligence/internal/bootstrap"
	"github.com/turtacn/coverage-intelligence/internal/config"
	"github.com/turtacn/coverage-intelligence/internal/infrastructure/monitoring/logging"
	httpserver "github.com/turtacn/coverage-intelligence/internal/interfaces/http"
	"github.com/turtacn/coverage-intelligence/internal/interfaces/http/handlers"
	"github.com/turtacn/coverage-intelligence/internal/interfaces/scheduler"
)

// Build-time variables injected via ldflags.
var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: COVERAGE_* environment)")
	datasetPath := flag.String("dataset", "", "snapshot a YAML dataset instead of the content store")
	once := flag.Bool("once", false, "run a single snapshot pass and exit")
	flag.Parse()

	if err := run(*configPath, *datasetPath, *once); err != nil {
		fmt.Fprintf(os.Stderr, "worker: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, datasetPath string, once bool) error {
	cfg, err := bootstrap.LoadConfig(configPath)
	if err != nil {
		return err
	}

	logger, err := bootstrap.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	logger = logger.Named("worker")
	logging.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap.New(cfg, logger, bootstrap.Options{DatasetPath: datasetPath, Component: "worker"})
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			logger.Error("shutdown", logging.Err(err))
		}
	}()

	job, err := rt.NewSnapshotJob()
	if err != nil {
		return err
	}
	sched := scheduler.New(job, logger.Named("scheduler"))

	if once {
		return sched.RunOnce(ctx)
	}

	logger.Info("starting snapshot worker",
		logging.String("version", version),
		logging.String("schedule", cfg.Worker.SnapshotCron),
		logging.Bool("kafka", cfg.Kafka.Enabled),
		logging.Bool("minio", cfg.MinIO.Enabled),
	)

	if err := sched.Schedule(cfg.Worker.SnapshotCron); err != nil {
		return err
	}
	if cfg.Worker.RunOnStart {
		if err := sched.RunOnce(ctx); err != nil {
			logger.Warn("initial snapshot run failed", logging.Err(err))
		}
	}
	sched.Start()
	logger.Info("next snapshot run", logging.Any("at", sched.Next()))

	health := httpserver.NewRouter(httpserver.RouterConfig{
		HealthHandler:  handlers.NewHealthHandler(version, rt.HealthCheckers()...),
		Logger:         logger.Named("access"),
		MetricsHandler: rt.MetricsHandler(),
		MetricsPath:    cfg.Metrics.Path,
	})
	srvCfg := config.ServerConfig{
		Port:            cfg.Worker.HealthPort,
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    10 * time.Second,
		ShutdownTimeout: 5 * time.Second,
	}
	srvErr := httpserver.NewServer(srvCfg, health, logger).Run(ctx)

	stopCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := sched.Stop(stopCtx); err != nil {
		logger.Warn("snapshot run still in progress at shutdown", logging.Err(err))
	}
	logger.Info("worker stopped")
	return srvErr
}
