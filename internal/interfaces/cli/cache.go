package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/turtacn/coverage-intelligence/internal/application/coverage"
	"github.com/turtacn/coverage-intelligence/pkg/errors"
)

// NewCacheCmd creates the cache command group.
func NewCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the score cache",
	}
	cmd.AddCommand(newCacheInvalidateCmd())
	return cmd
}

// InvalidateResult reports what was dropped.
type InvalidateResult struct {
	Status     string `json:"status"`
	Scope      string `json:"scope"`
	PlatformID string `json:"platform_id,omitempty"`
	CountryID  string `json:"country_id,omitempty"`
}

func newCacheInvalidateCmd() *cobra.Command {
	var (
		platformID string
		countryID  string
		all        bool
	)
	cmd := &cobra.Command{
		Use:   "invalidate",
		Short: "Drop cached results of a country, a platform, or everything",
		Example: `  coverctl cache invalidate --platform lawyers --country vn
  coverctl cache invalidate --platform lawyers
  coverctl cache invalidate --all`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case all && (platformID != "" || countryID != ""):
				return errors.InvalidParam("--all cannot be combined with --platform or --country")
			case !all && platformID == "":
				return errors.InvalidParam("--platform or --all is required")
			}

			return withService(cmd, func(ctx context.Context, svc coverage.Service) error {
				res := InvalidateResult{Status: "invalidated", PlatformID: platformID, CountryID: countryID}
				var err error
				switch {
				case all:
					res.Scope = "all"
					err = svc.InvalidateAllCache(ctx)
				case countryID != "":
					res.Scope = "country"
					err = svc.InvalidateCache(ctx, platformID, countryID)
				default:
					res.Scope = "platform"
					err = svc.InvalidateCache(ctx, platformID, "")
				}
				if err != nil {
					return err
				}
				return PrintResult(cmd, res)
			})
		},
	}
	f := cmd.Flags()
	f.StringVarP(&platformID, "platform", "p", "", "platform id")
	f.StringVar(&countryID, "country", "", "country id; requires --platform")
	f.BoolVar(&all, "all", false, "drop every cached result")
	return cmd
}
