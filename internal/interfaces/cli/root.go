// Package cli implements the coverctl command tree.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/coverage-intelligence/internal/application/coverage"
	"github.com/turtacn/coverage-intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/coverage-intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/coverage-intelligence/internal/infrastructure/storage/minio"
	"github.com/turtacn/coverage-intelligence/pkg/errors"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Output formats.
const (
	OutputJSON  = "json"
	OutputTable = "table"
)

type cliContextKey struct{}

// RootOptions holds global CLI flags.
type RootOptions struct {
	ConfigPath   string
	DatasetPath  string
	LogLevel     string
	OutputFormat string
	Timeout      time.Duration
}

// Migrator is the schema operations coverctl drives.
type Migrator interface {
	Up() (postgres.MigrationState, error)
	Down(steps int) (postgres.MigrationState, error)
	Status() (postgres.MigrationState, error)
	Force(version int) error
	Close() error
}

// SnapshotLister reads back archived snapshots.
type SnapshotLister interface {
	ListSnapshots(ctx context.Context, platformID string, limit int) ([]minio.ObjectMetadata, error)
}

// Backend is what commands run against.  Every accessor may be called at
// most once per command; Close releases whatever was opened.
type Backend interface {
	Service() coverage.Service
	SnapshotJob() (*coverage.SnapshotJob, error)
	// SnapshotLister returns nil when no archive is configured.
	SnapshotLister() (SnapshotLister, error)
	Close() error
}

// BackendFactory opens a Backend for the resolved global flags.
type BackendFactory func(ctx context.Context, opts RootOptions, logger logging.Logger) (Backend, error)

// MigratorFactory opens a Migrator for the resolved global flags.
type MigratorFactory func(ctx context.Context, opts RootOptions, logger logging.Logger) (Migrator, error)

// CommandDependencies aggregates the factories the commands use.
type CommandDependencies struct {
	Backend  BackendFactory
	Migrator MigratorFactory
}

// CLIContext carries the resolved flags and logger through the command tree.
type CLIContext struct {
	Options RootOptions
	Logger  logging.Logger
	deps    CommandDependencies
}

// NewRootCommand creates the root command with its global flags and every
// subcommand.
func NewRootCommand(deps CommandDependencies) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "coverctl",
		Short:   "Coverage and gap-analysis scoring for the content catalog",
		Long:    "coverctl computes content coverage scores per platform and country, ranks\nremediation priorities, manages the score cache and the content store schema.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPreRun(cmd, *opts, deps)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: COVERAGE_* environment)")
	pf.StringVar(&opts.DatasetPath, "dataset", "", "score a YAML dataset offline instead of the content store")
	pf.StringVar(&opts.LogLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.StringVarP(&opts.OutputFormat, "output", "o", OutputJSON, "output format (json, table)")
	pf.DurationVar(&opts.Timeout, "timeout", 2*time.Minute, "global operation timeout")

	cmd.AddCommand(
		NewCoverageCmd(),
		NewCacheCmd(),
		NewSnapshotCmd(),
		NewMigrateCmd(),
	)
	return cmd
}

func persistentPreRun(cmd *cobra.Command, opts RootOptions, deps CommandDependencies) error {
	switch strings.ToLower(opts.OutputFormat) {
	case OutputJSON, OutputTable:
	default:
		return errors.Newf(errors.ErrCodeInvalidParam, "unknown output format %q", opts.OutputFormat)
	}

	logger, err := logging.NewLogger(logging.LogConfig{
		Level:            opts.LogLevel,
		Format:           "console",
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	})
	if err != nil {
		return fmt.Errorf("logger initialization failed: %w", err)
	}

	cliCtx := &CLIContext{Options: opts, Logger: logger, deps: deps}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, cliContextKey{}, cliCtx))
	return nil
}

// GetCLIContext extracts CLIContext from a cobra command's context.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.Internal("command context is nil")
	}
	cliCtx, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, errors.Internal("CLIContext not found in command context")
	}
	return cliCtx, nil
}

// withBackend opens the backend under the global timeout, runs fn and
// closes the backend again.
func withBackend(cmd *cobra.Command, fn func(ctx context.Context, b Backend) error) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	if cliCtx.deps.Backend == nil {
		return errors.Unavailable("no coverage backend configured")
	}
	ctx, cancel := cliCtx.timeout(cmd.Context())
	defer cancel()

	b, err := cliCtx.deps.Backend(ctx, cliCtx.Options, cliCtx.Logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := b.Close(); cerr != nil {
			cliCtx.Logger.Warn("closing backend", logging.Err(cerr))
		}
	}()
	return fn(ctx, b)
}

// withService is withBackend for commands that only need the service.
func withService(cmd *cobra.Command, fn func(ctx context.Context, svc coverage.Service) error) error {
	return withBackend(cmd, func(ctx context.Context, b Backend) error {
		return fn(ctx, b.Service())
	})
}

func (c *CLIContext) timeout(parent context.Context) (context.Context, context.CancelFunc) {
	if c.Options.Timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, c.Options.Timeout)
}

// Execute runs the command tree and prints a failure to stderr.
func Execute(deps CommandDependencies) error {
	rootCmd := NewRootCommand(deps)
	if err := rootCmd.Execute(); err != nil {
		PrintError(rootCmd, err)
		return err
	}
	return nil
}

// tableProvider is implemented by results that render as a table.
type tableProvider interface {
	TableHeaders() []string
	TableRows() [][]string
}

// PrintResult writes data in the selected output format.  Data without a
// table form is printed as JSON.
func PrintResult(cmd *cobra.Command, data interface{}) error {
	format := OutputJSON
	if cliCtx, err := GetCLIContext(cmd); err == nil {
		format = strings.ToLower(cliCtx.Options.OutputFormat)
	}
	if format == OutputTable {
		if tp, ok := data.(tableProvider); ok {
			fmt.Fprint(cmd.OutOrStdout(), FormatTable(tp.TableHeaders(), tp.TableRows()))
			return nil
		}
	}
	return printJSON(cmd, data)
}

func printJSON(cmd *cobra.Command, data interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// PrintError writes a formatted error message to stderr.  Application
// errors carry their code in the message.
func PrintError(cmd *cobra.Command, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", err.Error())
}

// PrintSuccess writes a formatted success message to stdout.
func PrintSuccess(cmd *cobra.Command, msg string) {
	fmt.Fprintf(cmd.OutOrStdout(), "OK: %s\n", msg)
}

// FormatTable renders headers and rows as an aligned ASCII table.
func FormatTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}

	colWidths := make([]int, len(headers))
	for i, h := range headers {
		colWidths[i] = len(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(colWidths); i++ {
			if len(row[i]) > colWidths[i] {
				colWidths[i] = len(row[i])
			}
		}
	}

	var sb strings.Builder
	writeRow := func(cells []string) {
		for i := range headers {
			if i > 0 {
				sb.WriteString("  ")
			}
			val := ""
			if i < len(cells) {
				val = cells[i]
			}
			if i == len(headers)-1 {
				sb.WriteString(val)
			} else {
				sb.WriteString(padRight(val, colWidths[i]))
			}
		}
		sb.WriteString("\n")
	}

	writeRow(headers)
	sep := make([]string, len(headers))
	for i, w := range colWidths {
		sep[i] = strings.Repeat("-", w)
	}
	writeRow(sep)
	for _, row := range rows {
		writeRow(row)
	}
	return sb.String()
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
