// Package scheduler runs the snapshot job on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/turtacn/coverage-intelligence/internal/application/coverage"
	"github.com/turtacn/coverage-intelligence/internal/infrastructure/monitoring/logging"
)

// Runner is the job the scheduler fires.  *coverage.SnapshotJob satisfies it.
type Runner interface {
	Run(ctx context.Context) ([]*coverage.CoverageSnapshot, error)
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLocation evaluates schedules in loc instead of UTC.
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) { s.location = loc }
}

// WithRunTimeout bounds a single run.  Zero means no bound.
func WithRunTimeout(d time.Duration) Option {
	return func(s *Scheduler) { s.timeout = d }
}

// Scheduler fires a Runner on a cron spec.  A run still in progress when
// the next tick arrives causes that tick to be skipped.
type Scheduler struct {
	cron     *cron.Cron
	runner   Runner
	logger   logging.Logger
	location *time.Location
	timeout  time.Duration

	mu      sync.Mutex
	entryID cron.EntryID
	spec    string

	ctx    context.Context
	cancel context.CancelFunc
}

// New returns a stopped scheduler.
func New(runner Runner, logger logging.Logger, opts ...Option) *Scheduler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	s := &Scheduler{runner: runner, logger: logger, location: time.UTC}
	for _, opt := range opts {
		opt(s)
	}
	cl := cronLogger{logger}
	s.cron = cron.New(
		cron.WithLocation(s.location),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	s.ctx, s.cancel = context.WithCancel(context.Background())
	return s
}

// Schedule installs spec, replacing any previous one.  Standard five-field
// specs and descriptors such as "@every 30m" are accepted.
func (s *Scheduler) Schedule(spec string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.cron.AddFunc(spec, func() { _ = s.RunOnce(s.ctx) })
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	if s.entryID != 0 {
		s.cron.Remove(s.entryID)
	}
	s.entryID, s.spec = id, spec
	s.logger.Info("snapshot job scheduled", logging.String("spec", spec), logging.String("timezone", s.location.String()))
	return nil
}

// Next is the next activation time, zero when nothing is scheduled or the
// scheduler is not running.
func (s *Scheduler) Next() time.Time {
	s.mu.Lock()
	id := s.entryID
	s.mu.Unlock()
	if id == 0 {
		return time.Time{}
	}
	return s.cron.Entry(id).Next
}

// RunOnce runs the job now, under the run timeout.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	snaps, err := s.runner.Run(ctx)
	fields := []logging.Field{
		logging.Int("snapshots", len(snaps)),
		logging.Duration("duration", time.Since(start)),
	}
	if err != nil {
		s.logger.Error("snapshot run failed", append(fields, logging.Err(err))...)
		return err
	}
	s.logger.Info("snapshot run completed", fields...)
	return nil
}

// Start begins firing the schedule in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the schedule, cancels a run in progress and waits for it to
// return or for ctx to end.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	s.cancel()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger routes cron's own messages to the structured logger.
type cronLogger struct {
	l logging.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug("cron: "+msg, kvFields(keysAndValues)...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error("cron: "+msg, append(kvFields(keysAndValues), logging.Err(err))...)
}

func kvFields(kv []interface{}) []logging.Field {
	fields := make([]logging.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		fields = append(fields, logging.Any(key, kv[i+1]))
	}
	return fields
}
