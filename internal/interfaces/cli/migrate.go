package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/turtacn/coverage-intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/coverage-intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/coverage-intelligence/pkg/errors"
)

// NewMigrateCmd creates the migrate command group.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the content store schema",
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, func(m Migrator) error {
				st, err := m.Down(steps)
				if err != nil {
					return err
				}
				return PrintResult(cmd, st)
			})
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply every pending migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(cmd, func(m Migrator) error {
					st, err := m.Up()
					if err != nil {
						return err
					}
					return PrintResult(cmd, st)
				})
			},
		},
		down,
		&cobra.Command{
			Use:   "status",
			Short: "Show the recorded schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(cmd, func(m Migrator) error {
					st, err := m.Status()
					if err != nil {
						return err
					}
					return PrintResult(cmd, st)
				})
			},
		},
		&cobra.Command{
			Use:   "force VERSION",
			Short: "Record VERSION without running migrations, clearing a dirty state",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				version, err := strconv.Atoi(args[0])
				if err != nil || version < -1 {
					return errors.Newf(errors.ErrCodeInvalidParam, "invalid version %q", args[0])
				}
				return withMigrator(cmd, func(m Migrator) error {
					if err := m.Force(version); err != nil {
						return err
					}
					return PrintResult(cmd, postgres.MigrationState{Version: uint(max(version, 0))})
				})
			},
		},
	)
	return cmd
}

func withMigrator(cmd *cobra.Command, fn func(m Migrator) error) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	if cliCtx.Options.DatasetPath != "" {
		return errors.InvalidParam("migrate runs against the content store; drop --dataset")
	}
	if cliCtx.deps.Migrator == nil {
		return errors.Unavailable("no migrator configured")
	}
	ctx, cancel := cliCtx.timeout(cmd.Context())
	defer cancel()

	m, err := cliCtx.deps.Migrator(ctx, cliCtx.Options, cliCtx.Logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := m.Close(); cerr != nil {
			cliCtx.Logger.Warn("closing migrator", logging.Err(cerr))
		}
	}()
	return fn(m)
}
