package bootstrap

import (
	"fmt"

	"github.com/turtacn/coverage-intelligence/internal/application/coverage"
	"github.com/turtacn/coverage-intelligence/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/coverage-intelligence/internal/infrastructure/storage/minio"
	"github.com/turtacn/coverage-intelligence/internal/interfaces/http/handlers"
)

// SnapshotArchive connects the minio archive.  It returns nil, nil when
// minio is disabled.
func (rt *Runtime) SnapshotArchive() (*minio.SnapshotArchive, error) {
	if !rt.Config.MinIO.Enabled {
		return nil, nil
	}
	client, err := minio.NewClient(rt.Config.MinIO, rt.Logger.Named("minio"))
	if err != nil {
		return nil, fmt.Errorf("minio: %w", err)
	}
	rt.addCloser(client.Close)
	rt.checks = append(rt.checks, handlers.NewCheck("minio", client.HealthCheck))
	return minio.NewSnapshotArchive(client, rt.Config.MinIO.ArchivePrefix, rt.Logger.Named("archive")), nil
}

// NewSnapshotJob builds the snapshot job with every enabled sink.
func (rt *Runtime) NewSnapshotJob() (*coverage.SnapshotJob, error) {
	cfg := coverage.SnapshotJobConfig{
		Service: rt.Service,
		Logger:  rt.Logger.Named("snapshot"),
		Metrics: rt.CoverageMetrics(),
	}

	if rt.Config.Kafka.Enabled {
		producer, err := kafka.NewSnapshotProducer(rt.Config.Kafka, rt.Logger.Named("kafka"),
			kafka.WithEventType(coverage.SnapshotEventType))
		if err != nil {
			return nil, fmt.Errorf("kafka: %w", err)
		}
		rt.addCloser(producer.Close)
		cfg.Publisher = producer
	}

	archive, err := rt.SnapshotArchive()
	if err != nil {
		return nil, err
	}
	if archive != nil {
		cfg.Archiver = archive
	}

	return coverage.NewSnapshotJob(cfg)
}
