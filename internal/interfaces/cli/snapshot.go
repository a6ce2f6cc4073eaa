package cli

import (
	"context"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/coverage-intelligence/internal/application/coverage"
	"github.com/turtacn/coverage-intelligence/internal/infrastructure/storage/minio"
	"github.com/turtacn/coverage-intelligence/pkg/errors"
)

// NewSnapshotCmd creates the snapshot command group.
func NewSnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Publish and inspect coverage snapshots",
	}
	cmd.AddCommand(newSnapshotRunCmd(), newSnapshotListCmd())
	return cmd
}

// SnapshotRun summarizes one produced snapshot.
type SnapshotRun struct {
	ID             string    `json:"id"`
	PlatformID     string    `json:"platform_id"`
	GeneratedAt    time.Time `json:"generated_at"`
	TotalCountries int       `json:"total_countries"`
	OverallAverage float64   `json:"overall_average"`
}

type snapshotRunTable []SnapshotRun

func (t snapshotRunTable) TableHeaders() []string {
	return []string{"PLATFORM", "COUNTRIES", "OVERALL", "ID"}
}

func (t snapshotRunTable) TableRows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, s := range t {
		rows = append(rows, []string{s.PlatformID, strconv.Itoa(s.TotalCountries), score(s.OverallAverage), s.ID})
	}
	return rows
}

func newSnapshotRunCmd() *cobra.Command {
	var platformID string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Refresh roll-ups and ship them to the configured sinks once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, func(ctx context.Context, b Backend) error {
				job, err := b.SnapshotJob()
				if err != nil {
					return err
				}

				var snaps []*coverage.CoverageSnapshot
				var runErr error
				if platformID != "" {
					snap, err := job.RunPlatform(ctx, platformID)
					if snap != nil {
						snaps = append(snaps, snap)
					}
					runErr = err
				} else {
					snaps, runErr = job.Run(ctx)
				}

				out := make(snapshotRunTable, 0, len(snaps))
				for _, s := range snaps {
					run := SnapshotRun{ID: s.ID, PlatformID: s.PlatformID, GeneratedAt: s.GeneratedAt}
					if s.Summary != nil {
						run.TotalCountries = s.Summary.TotalCountries
						run.OverallAverage = s.Summary.Averages.Overall
					}
					out = append(out, run)
				}
				if len(out) > 0 {
					if err := PrintResult(cmd, out); err != nil {
						return err
					}
				}
				return runErr
			})
		},
	}
	cmd.Flags().StringVarP(&platformID, "platform", "p", "", "snapshot a single platform")
	return cmd
}

type snapshotObjectTable []minio.ObjectMetadata

func (t snapshotObjectTable) TableHeaders() []string {
	return []string{"KEY", "SIZE", "MODIFIED"}
}

func (t snapshotObjectTable) TableRows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, o := range t {
		rows = append(rows, []string{o.Key, strconv.FormatInt(o.Size, 10), o.LastModified.UTC().Format(time.RFC3339)})
	}
	return rows
}

func newSnapshotListCmd() *cobra.Command {
	var (
		platformID string
		limit      int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List archived snapshots of a platform, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, func(ctx context.Context, b Backend) error {
				lister, err := b.SnapshotLister()
				if err != nil {
					return err
				}
				if lister == nil {
					return errors.Unavailable("snapshot archive is not enabled (minio.enabled)")
				}
				objs, err := lister.ListSnapshots(ctx, platformID, limit)
				if err != nil {
					return err
				}
				return PrintResult(cmd, snapshotObjectTable(objs))
			})
		},
	}
	platformFlag(cmd, &platformID)
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of snapshots")
	return cmd
}
