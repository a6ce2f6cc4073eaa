package coverage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/coverage-intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/coverage-intelligence/pkg/errors"
)

// SnapshotEventType tags snapshot events on the wire.
const SnapshotEventType = "coverage.snapshot.v1"

// CoverageSnapshot is the published form of a platform roll-up.
type CoverageSnapshot struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	PlatformID  string          `json:"platform_id"`
	GeneratedAt time.Time       `json:"generated_at"`
	Summary     *GlobalCoverage `json:"summary"`
}

// SnapshotPublisher emits a snapshot event keyed by platform.
type SnapshotPublisher interface {
	PublishSnapshot(ctx context.Context, key string, payload []byte) error
}

// SnapshotArchiver stores a snapshot document.
type SnapshotArchiver interface {
	ArchiveSnapshot(ctx context.Context, snap *CoverageSnapshot, payload []byte) (string, error)
}

// SnapshotJobConfig holds the dependencies of a SnapshotJob.  Nil sinks are
// skipped.
type SnapshotJobConfig struct {
	Service   Service
	Publisher SnapshotPublisher
	Archiver  SnapshotArchiver
	Logger    logging.Logger
	Metrics   Metrics
	Clock     func() time.Time
}

// SnapshotJob refreshes every platform roll-up and ships it to the sinks.
type SnapshotJob struct {
	svc       Service
	publisher SnapshotPublisher
	archiver  SnapshotArchiver
	logger    logging.Logger
	metrics   Metrics
	clock     func() time.Time
}

// NewSnapshotJob validates cfg and returns a job.
func NewSnapshotJob(cfg SnapshotJobConfig) (*SnapshotJob, error) {
	if cfg.Service == nil {
		return nil, errors.InvalidParam("snapshot job requires a coverage service")
	}
	j := &SnapshotJob{
		svc:       cfg.Service,
		publisher: cfg.Publisher,
		archiver:  cfg.Archiver,
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
		clock:     cfg.Clock,
	}
	if j.logger == nil {
		j.logger = logging.NewNopLogger()
	}
	if j.metrics == nil {
		j.metrics = NopMetrics{}
	}
	if j.clock == nil {
		j.clock = time.Now
	}
	return j, nil
}

// Run snapshots every platform.  A platform that cannot be computed, or a
// sink that fails, does not stop the others; all failures are returned
// joined.
func (j *SnapshotJob) Run(ctx context.Context) ([]*CoverageSnapshot, error) {
	platforms, err := j.svc.ListPlatforms(ctx)
	if err != nil {
		return nil, err
	}

	var (
		snaps []*CoverageSnapshot
		errs  []error
	)
	for _, p := range platforms {
		snap, err := j.RunPlatform(ctx, p.ID)
		if snap != nil {
			snaps = append(snaps, snap)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return snaps, errors.Join(errs...)
}

// RunPlatform snapshots one platform.  The snapshot is returned whenever it
// was computed, even if a sink failed.
func (j *SnapshotJob) RunPlatform(ctx context.Context, platformID string) (*CoverageSnapshot, error) {
	summary, err := j.svc.RefreshGlobalCoverage(ctx, platformID)
	if err != nil {
		j.logger.Error("snapshot computation failed", logging.String("platform_id", platformID), logging.Err(err))
		return nil, errors.Wrap(err, errors.ErrCodeSnapshotFailed, "compute snapshot")
	}

	snap := &CoverageSnapshot{
		ID:          uuid.NewString(),
		Type:        SnapshotEventType,
		PlatformID:  platformID,
		GeneratedAt: j.clock().UTC(),
		Summary:     summary,
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return snap, errors.Wrap(err, errors.ErrCodeSerialization, "encode snapshot")
	}

	var errs []error
	if j.publisher != nil {
		err := j.publisher.PublishSnapshot(ctx, platformID, payload)
		j.record("kafka", snap, err)
		if err != nil {
			errs = append(errs, errors.Wrap(err, errors.ErrCodeSnapshotFailed, "publish snapshot"))
		}
	}
	if j.archiver != nil {
		object, err := j.archiver.ArchiveSnapshot(ctx, snap, payload)
		j.record("minio", snap, err, logging.String("object", object))
		if err != nil {
			errs = append(errs, errors.Wrap(err, errors.ErrCodeSnapshotFailed, "archive snapshot"))
		}
	}
	return snap, errors.Join(errs...)
}

func (j *SnapshotJob) record(sink string, snap *CoverageSnapshot, err error, fields ...logging.Field) {
	j.metrics.SnapshotPublished(sink, statusLabel(err))
	fields = append(fields,
		logging.String("sink", sink),
		logging.String("snapshot_id", snap.ID),
		logging.String("platform_id", snap.PlatformID),
	)
	if err != nil {
		j.logger.Error("snapshot sink failed", append(fields, logging.Err(err))...)
		return
	}
	j.logger.Info("snapshot published", fields...)
}
