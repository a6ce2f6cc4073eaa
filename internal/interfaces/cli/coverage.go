package cli

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/turtacn/coverage-intelligence/internal/application/coverage"
	domain "github.com/turtacn/coverage-intelligence/internal/domain/coverage"
)

// NewCoverageCmd creates the coverage command group.
func NewCoverageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coverage",
		Short: "Compute coverage scores, listings and recommendations",
	}
	cmd.AddCommand(
		newPlatformsCmd(),
		newGlobalCmd(),
		newCountryCmd(),
		newDetailsCmd(),
		newCountriesCmd(),
		newLanguagesCmd(),
		newRecommendationsCmd(),
	)
	return cmd
}

func newPlatformsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "platforms",
		Short: "List platforms in registry order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(ctx context.Context, svc coverage.Service) error {
				list, err := svc.ListPlatforms(ctx)
				if err != nil {
					return err
				}
				return PrintResult(cmd, platformTable(list))
			})
		},
	}
}

func newGlobalCmd() *cobra.Command {
	var (
		platformID string
		refresh    bool
	)
	cmd := &cobra.Command{
		Use:   "global",
		Short: "Show the platform-wide coverage roll-up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(ctx context.Context, svc coverage.Service) error {
				get := svc.GetGlobalCoverage
				if refresh {
					get = svc.RefreshGlobalCoverage
				}
				g, err := get(ctx, platformID)
				if err != nil {
					return err
				}
				return PrintResult(cmd, g)
			})
		},
	}
	platformFlag(cmd, &platformID)
	cmd.Flags().BoolVar(&refresh, "refresh", false, "drop the cached roll-up before computing")
	return cmd
}

func newCountryCmd() *cobra.Command {
	var platformID, countryID string
	cmd := &cobra.Command{
		Use:   "country",
		Short: "Show the full coverage result of one country",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(ctx context.Context, svc coverage.Service) error {
				c, err := svc.GetCountryScore(ctx, platformID, countryID)
				if err != nil {
					return err
				}
				return PrintResult(cmd, c)
			})
		},
	}
	platformFlag(cmd, &platformID)
	countryFlag(cmd, &countryID)
	return cmd
}

func newDetailsCmd() *cobra.Command {
	var platformID, countryID string
	cmd := &cobra.Command{
		Use:   "details",
		Short: "Show a country result with its most recently updated content",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(ctx context.Context, svc coverage.Service) error {
				d, err := svc.GetCountryDetails(ctx, platformID, countryID)
				if err != nil {
					return err
				}
				return PrintResult(cmd, d)
			})
		},
	}
	platformFlag(cmd, &platformID)
	countryFlag(cmd, &countryID)
	return cmd
}

func newCountriesCmd() *cobra.Command {
	var (
		platformID string
		filter     coverage.CountryFilter
	)
	cmd := &cobra.Command{
		Use:   "countries",
		Short: "List country scores, filtered and sorted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(ctx context.Context, svc coverage.Service) error {
				list, err := svc.ListCountriesWithScores(ctx, platformID, filter)
				if err != nil {
					return err
				}
				return PrintResult(cmd, countryTable(list))
			})
		},
	}
	platformFlag(cmd, &platformID)
	f := cmd.Flags()
	f.StringVar(&filter.Region, "region", "", "exact region, case-insensitive")
	f.StringVar(&filter.Status, "status", "", "excellent, good, partial, minimal or missing")
	f.StringVar(&filter.Search, "search", "", "substring of the country name or ISO code")
	f.StringVar(&filter.SortBy, "sort-by", "", "overall, recruitment, awareness, founder, priority, name or code")
	f.StringVar(&filter.SortOrder, "sort-order", "", "asc or desc")
	return cmd
}

func newLanguagesCmd() *cobra.Command {
	var platformID string
	cmd := &cobra.Command{
		Use:   "languages",
		Short: "Show platform-wide completion per language",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(ctx context.Context, svc coverage.Service) error {
				stats, err := svc.GetLanguageStats(ctx, platformID)
				if err != nil {
					return err
				}
				return PrintResult(cmd, languageTable(stats))
			})
		},
	}
	platformFlag(cmd, &platformID)
	return cmd
}

func newRecommendationsCmd() *cobra.Command {
	var (
		platformID string
		limit      int
	)
	cmd := &cobra.Command{
		Use:   "recommendations",
		Short: "Rank the recommendations of the priority countries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(ctx context.Context, svc coverage.Service) error {
				recs, err := svc.GetGlobalRecommendations(ctx, platformID, limit)
				if err != nil {
					return err
				}
				return PrintResult(cmd, recommendationTable(recs))
			})
		},
	}
	platformFlag(cmd, &platformID)
	cmd.Flags().IntVar(&limit, "limit", 0, "number of recommendations, 1-100 (default 20)")
	return cmd
}

func platformFlag(cmd *cobra.Command, dst *string) {
	cmd.Flags().StringVarP(dst, "platform", "p", "", "platform id (required)")
	_ = cmd.MarkFlagRequired("platform")
}

func countryFlag(cmd *cobra.Command, dst *string) {
	cmd.Flags().StringVar(dst, "country", "", "country id (required)")
	_ = cmd.MarkFlagRequired("country")
}

// ─────────────────────────────────────────────────────────────────────────────
// Table forms
// ─────────────────────────────────────────────────────────────────────────────

type platformTable []domain.Platform

func (t platformTable) TableHeaders() []string {
	return []string{"ID", "CODE", "NAME", "MODEL"}
}

func (t platformTable) TableRows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, p := range t {
		rows = append(rows, []string{p.ID, p.Code, p.Name, string(p.RecruitmentModel)})
	}
	return rows
}

type countryTable []coverage.CountrySummary

func (t countryTable) TableHeaders() []string {
	return []string{"CODE", "NAME", "REGION", "OVERALL", "RECRUITMENT", "AWARENESS", "FOUNDER", "STATUS", "PRIORITY"}
}

func (t countryTable) TableRows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, c := range t {
		rows = append(rows, []string{
			c.Code, c.Name, c.Region,
			score(c.OverallScore), score(c.RecruitmentScore), score(c.AwarenessScore), score(c.FounderScore),
			string(c.Status), strconv.Itoa(c.Priority),
		})
	}
	return rows
}

type languageTable []coverage.LanguageStats

func (t languageTable) TableHeaders() []string {
	return []string{"CODE", "NAME", "PRIMARY", "COMPLETED", "TOTAL", "PUBLISHED", "COVERAGE"}
}

func (t languageTable) TableRows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, l := range t {
		rows = append(rows, []string{
			l.Code, l.Name, strconv.FormatBool(l.Primary),
			strconv.Itoa(l.CompletedTargets), strconv.Itoa(l.TotalTargets), strconv.Itoa(l.PublishedItems),
			score(l.Coverage),
		})
	}
	return rows
}

type recommendationTable []coverage.GlobalRecommendation

func (t recommendationTable) TableHeaders() []string {
	return []string{"SCORE", "COUNTRY", "LEVEL", "TYPE", "TITLE"}
}

func (t recommendationTable) TableRows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, r := range t {
		rows = append(rows, []string{score(r.Score), r.CountryCode, string(r.Level), string(r.Type), r.Title})
	}
	return rows
}

func score(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
