// Command coverctl is the operator CLI of the coverage engine.
package main

import (
	"context"
	"os"

	"github.com/turtacn/coverage-intelligence/internal/application/coverage"
	"github.com/turtacn/coverage-intelligence/internal/bootstrap"
	"github.com/turtacn/coverage-intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/coverage-intelligence/internal/interfaces/cli"
)

// Build-time variables injected via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func init() {
	cli.Version = version
	cli.GitCommit = commit
	cli.BuildDate = buildDate
}

func main() {
	deps := cli.CommandDependencies{
		Backend:  openBackend,
		Migrator: openMigrator,
	}
	if err := cli.Execute(deps); err != nil {
		os.Exit(1)
	}
}

// runtimeBackend adapts a bootstrap.Runtime to the CLI.
type runtimeBackend struct {
	rt *bootstrap.Runtime
}

func openBackend(_ context.Context, opts cli.RootOptions, logger logging.Logger) (cli.Backend, error) {
	cfg, err := bootstrap.LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	rt, err := bootstrap.New(cfg, logger, bootstrap.Options{
		DatasetPath: opts.DatasetPath,
		Component:   "coverctl",
	})
	if err != nil {
		return nil, err
	}
	return &runtimeBackend{rt: rt}, nil
}

func (b *runtimeBackend) Service() coverage.Service { return b.rt.Service }

func (b *runtimeBackend) SnapshotJob() (*coverage.SnapshotJob, error) {
	return b.rt.NewSnapshotJob()
}

func (b *runtimeBackend) SnapshotLister() (cli.SnapshotLister, error) {
	archive, err := b.rt.SnapshotArchive()
	if err != nil || archive == nil {
		return nil, err
	}
	return archive, nil
}

func (b *runtimeBackend) Close() error { return b.rt.Close() }

func openMigrator(_ context.Context, opts cli.RootOptions, logger logging.Logger) (cli.Migrator, error) {
	cfg, err := bootstrap.LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	m, err := bootstrap.OpenMigrator(cfg, logger)
	if err != nil {
		return nil, err
	}
	return m, nil
}
