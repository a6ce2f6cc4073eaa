package coverage

import (
	"math"
	"sort"
	"strings"
	"time"

	domain "github.com/turtacn/coverage-intelligence/internal/domain/coverage"
	"github.com/turtacn/coverage-intelligence/pkg/errors"
)

// -----------------------------------------------------------------------
// Global aggregation
// -----------------------------------------------------------------------

// globalOptions sizes the ranked lists of a roll-up.
type globalOptions struct {
	topN              int
	priorityN         int
	priorityThreshold float64
}

// aggregateGlobal reduces per-country results into the platform roll-up.
// results must be in registry order; it is not modified.
func aggregateGlobal(platformID string, results []*CountryCoverage, opts globalOptions, now time.Time) *GlobalCoverage {
	g := &GlobalCoverage{
		PlatformID:        platformID,
		TotalCountries:    len(results),
		TopCountries:      []CountrySummary{},
		PriorityCountries: []CountrySummary{},
		Countries:         make([]CountrySummary, 0, len(results)),
		Languages:         []LanguageCoverage{},
		GeneratedAt:       now.UTC(),
	}

	var sumR, sumA, sumF, sumO float64
	langIndex := make(map[string]int)
	for _, r := range results {
		sumR += r.RecruitmentScore
		sumA += r.AwarenessScore
		sumF += r.FounderScore
		sumO += r.OverallScore
		g.Distribution.Add(r.Status)
		g.TotalTargets += r.TotalTargets
		g.CompletedTargets += r.CompletedTargets
		g.Countries = append(g.Countries, r.Summary())

		for _, l := range r.Languages {
			i, ok := langIndex[l.Code]
			if !ok {
				i = len(g.Languages)
				langIndex[l.Code] = i
				g.Languages = append(g.Languages, LanguageCoverage{Code: l.Code, Name: l.Name, Primary: l.Primary})
			}
			g.Languages[i].TotalTargets += l.TotalTargets
			g.Languages[i].CompletedTargets += l.CompletedTargets
			g.Languages[i].PublishedItems += l.PublishedItems
		}
	}
	for i := range g.Languages {
		g.Languages[i].Score = round2(percent(g.Languages[i].CompletedTargets, g.Languages[i].TotalTargets))
	}

	if n := float64(len(results)); n > 0 {
		g.Averages = DimensionAverages{
			Recruitment: round2(sumR / n),
			Awareness:   round2(sumA / n),
			Founder:     round2(sumF / n),
			Overall:     round2(sumO / n),
		}
	}

	top := append([]CountrySummary(nil), g.Countries...)
	sort.SliceStable(top, func(i, j int) bool { return top[i].OverallScore > top[j].OverallScore })
	g.TopCountries = truncate(top, opts.topN)

	var low []CountrySummary
	for _, c := range g.Countries {
		if c.OverallScore < opts.priorityThreshold {
			low = append(low, c)
		}
	}
	sort.SliceStable(low, func(i, j int) bool { return low[i].Priority > low[j].Priority })
	if low != nil {
		g.PriorityCountries = truncate(low, opts.priorityN)
	}
	return g
}

func truncate(list []CountrySummary, n int) []CountrySummary {
	if n > 0 && len(list) > n {
		return list[:n]
	}
	return list
}

// -----------------------------------------------------------------------
// Country listing
// -----------------------------------------------------------------------

// Sort fields of ListCountriesWithScores.
const (
	SortByOverall     = "overall"
	SortByRecruitment = "recruitment"
	SortByAwareness   = "awareness"
	SortByFounder     = "founder"
	SortByPriority    = "priority"
	SortByName        = "name"
	SortByCode        = "code"
)

// CountryFilter narrows and orders a country listing.  Zero values mean
// "no filter" and the default order.
type CountryFilter struct {
	Region    string `json:"region,omitempty"`
	Status    string `json:"status,omitempty"`
	Search    string `json:"search,omitempty"`
	SortBy    string `json:"sort_by,omitempty"`
	SortOrder string `json:"sort_order,omitempty"`
}

type countryKey func(CountrySummary) float64

var numericSortKeys = map[string]countryKey{
	SortByOverall:     func(c CountrySummary) float64 { return c.OverallScore },
	SortByRecruitment: func(c CountrySummary) float64 { return c.RecruitmentScore },
	SortByAwareness:   func(c CountrySummary) float64 { return c.AwarenessScore },
	SortByFounder:     func(c CountrySummary) float64 { return c.FounderScore },
	SortByPriority:    func(c CountrySummary) float64 { return float64(c.Priority) },
}

// Normalize validates f and fills the default sort.
func (f CountryFilter) Normalize() (CountryFilter, error) {
	f.SortBy = strings.ToLower(strings.TrimSpace(f.SortBy))
	f.SortOrder = strings.ToLower(strings.TrimSpace(f.SortOrder))
	if f.SortBy == "" {
		f.SortBy = SortByOverall
	}
	_, numeric := numericSortKeys[f.SortBy]
	if !numeric && f.SortBy != SortByName && f.SortBy != SortByCode {
		return f, errors.Newf(errors.ErrCodeInvalidFilter, "unknown sort_by %q", f.SortBy)
	}
	switch f.SortOrder {
	case "":
		if numeric {
			f.SortOrder = "desc"
		} else {
			f.SortOrder = "asc"
		}
	case "asc", "desc":
	default:
		return f, errors.Newf(errors.ErrCodeInvalidFilter, "unknown sort_order %q", f.SortOrder)
	}
	if f.Status != "" {
		if _, ok := domain.ParseStatus(strings.ToLower(f.Status)); !ok {
			return f, errors.Newf(errors.ErrCodeInvalidFilter, "unknown status %q", f.Status)
		}
		f.Status = strings.ToLower(f.Status)
	}
	return f, nil
}

// filterCountries applies a normalized filter to a copy of list.
func filterCountries(list []CountrySummary, f CountryFilter) []CountrySummary {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]CountrySummary, 0, len(list))
	for _, c := range list {
		if f.Region != "" && !strings.EqualFold(c.Region, f.Region) {
			continue
		}
		if f.Status != "" && string(c.Status) != f.Status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(c.Name), search) &&
			!strings.Contains(strings.ToLower(c.Code), search) {
			continue
		}
		out = append(out, c)
	}

	desc := f.SortOrder == "desc"
	key, numeric := numericSortKeys[f.SortBy]
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if numeric {
			ka, kb := key(a), key(b)
			if ka != kb {
				if desc {
					return ka > kb
				}
				return ka < kb
			}
			return a.Name < b.Name
		}
		sa, sb := a.Name, b.Name
		if f.SortBy == SortByCode {
			sa, sb = a.Code, b.Code
		}
		if sa != sb {
			if desc {
				return sa > sb
			}
			return sa < sb
		}
		return a.Name < b.Name
	})
	return out
}

// -----------------------------------------------------------------------
// Global recommendations
// -----------------------------------------------------------------------

// Limits of GetGlobalRecommendations.
const (
	DefaultGlobalRecommendations = 20
	MaxGlobalRecommendations     = 100
)

// globalRecommendationScore weights a recommendation against the urgency of
// its country.
func globalRecommendationScore(recPriority, countryPriority int) float64 {
	return math.Round((float64(recPriority)*0.6+float64(countryPriority)*0.4)*100) / 100
}

// rankGlobalRecommendations flattens the recommendations of results and
// keeps the limit best.
func rankGlobalRecommendations(results []*CountryCoverage, limit int) []GlobalRecommendation {
	out := []GlobalRecommendation{}
	for _, r := range results {
		for _, rec := range r.Recommendations {
			out = append(out, GlobalRecommendation{
				Recommendation:  rec,
				CountryID:       r.Country.ID,
				CountryCode:     r.Country.Code,
				CountryName:     r.Country.Name,
				CountryPriority: r.Priority,
				Score:           globalRecommendationScore(rec.Priority, r.Priority),
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		return a.CountryName < b.CountryName
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
