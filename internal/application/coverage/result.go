package coverage

import (
	"time"

	domain "github.com/turtacn/coverage-intelligence/internal/domain/coverage"
)

// -----------------------------------------------------------------------
// Breakdowns
// -----------------------------------------------------------------------

// TopicProgress is the per-topic detail of a recruitment component.
type TopicProgress struct {
	TopicID            string              `json:"topic_id"`
	Code               string              `json:"code"`
	Name               string              `json:"name"`
	Kind               domain.TaxonomyKind `json:"kind"`
	TotalTargets       int                 `json:"total_targets"`
	CompletedTargets   int                 `json:"completed_targets"`
	UnpublishedTargets int                 `json:"unpublished_targets"`
	Progress           float64             `json:"progress"`
	// MissingLanguages lists, in language order, every language whose cell
	// is not published.
	MissingLanguages []string `json:"missing_languages,omitempty"`
}

// ComponentBreakdown is one weighted taxonomy of the recruitment score.
type ComponentBreakdown struct {
	Kind               domain.TaxonomyKind `json:"kind"`
	Weight             float64             `json:"weight"`
	Score              float64             `json:"score"`
	TotalTargets       int                 `json:"total_targets"`
	CompletedTargets   int                 `json:"completed_targets"`
	UnpublishedTargets int                 `json:"unpublished_targets"`
	Topics             []TopicProgress     `json:"topics"`
}

// RecruitmentBreakdown backs the recruitment score.
type RecruitmentBreakdown struct {
	Score              float64              `json:"score"`
	TotalTargets       int                  `json:"total_targets"`
	CompletedTargets   int                  `json:"completed_targets"`
	UnpublishedTargets int                  `json:"unpublished_targets"`
	Components         []ComponentBreakdown `json:"components"`
}

// QuotaBreakdown is one content type of the awareness score.
type QuotaBreakdown struct {
	Type             domain.ContentType `json:"type"`
	QuotaPerLanguage int                `json:"quota_per_language"`
	Weight           float64            `json:"weight"`
	Score            float64            `json:"score"`
	TotalTargets     int                `json:"total_targets"`
	CompletedTargets int                `json:"completed_targets"`
	PublishedItems   int                `json:"published_items"`
}

// AwarenessBreakdown backs the awareness score.
type AwarenessBreakdown struct {
	Score            float64          `json:"score"`
	TotalTargets     int              `json:"total_targets"`
	CompletedTargets int              `json:"completed_targets"`
	Quotas           []QuotaBreakdown `json:"quotas"`
}

// FounderSlot is one (platform, language) founder target that is not done.
type FounderSlot struct {
	PlatformID string `json:"platform_id"`
	Language   string `json:"language"`
	State      string `json:"state"`
}

// FounderBreakdown backs the founder score.
type FounderBreakdown struct {
	Score              float64       `json:"score"`
	TotalTargets       int           `json:"total_targets"`
	CompletedTargets   int           `json:"completed_targets"`
	UnpublishedTargets int           `json:"unpublished_targets"`
	Open               []FounderSlot `json:"open,omitempty"`
}

// LanguageCoverage is the completion of every cell in one language.
type LanguageCoverage struct {
	Code             string  `json:"code"`
	Name             string  `json:"name"`
	Primary          bool    `json:"primary"`
	TotalTargets     int     `json:"total_targets"`
	CompletedTargets int     `json:"completed_targets"`
	PublishedItems   int     `json:"published_items"`
	Score            float64 `json:"score"`
}

// -----------------------------------------------------------------------
// Recommendations
// -----------------------------------------------------------------------

// Recommendation is one actionable next step.
type Recommendation struct {
	Type             domain.RecommendationType `json:"type"`
	Level            domain.Level              `json:"level"`
	Priority         int                       `json:"priority"`
	Title            string                    `json:"title"`
	Description      string                    `json:"description"`
	Language         string                    `json:"language,omitempty"`
	TopicID          string                    `json:"topic_id,omitempty"`
	TopicName        string                    `json:"topic_name,omitempty"`
	MissingLanguages []string                  `json:"missing_languages,omitempty"`
}

// -----------------------------------------------------------------------
// Results
// -----------------------------------------------------------------------

// CountryRef is the identity part of a country result.
type CountryRef struct {
	ID     string `json:"id"`
	Code   string `json:"code"`
	Name   string `json:"name"`
	Region string `json:"region"`
}

// CountryCoverage is the full result of one (platform, country) pair.
type CountryCoverage struct {
	PlatformID string     `json:"platform_id"`
	Country    CountryRef `json:"country"`
	Found      bool       `json:"found"`

	RecruitmentScore float64       `json:"recruitment_score"`
	AwarenessScore   float64       `json:"awareness_score"`
	FounderScore     float64       `json:"founder_score"`
	OverallScore     float64       `json:"overall_score"`
	Status           domain.Status `json:"status"`
	Priority         int           `json:"priority"`

	TotalTargets       int `json:"total_targets"`
	CompletedTargets   int `json:"completed_targets"`
	UnpublishedTargets int `json:"unpublished_targets"`
	MissingTargets     int `json:"missing_targets"`
	TotalItems         int `json:"total_items"`
	PublishedItems     int `json:"published_items"`

	Recruitment     RecruitmentBreakdown `json:"recruitment"`
	Awareness       AwarenessBreakdown   `json:"awareness"`
	Founder         FounderBreakdown     `json:"founder"`
	Languages       []LanguageCoverage   `json:"languages"`
	Recommendations []Recommendation     `json:"recommendations"`

	ComputedAt time.Time `json:"computed_at"`
}

// Summary returns the list representation of c.
func (c *CountryCoverage) Summary() CountrySummary {
	return CountrySummary{
		CountryRef:       c.Country,
		RecruitmentScore: c.RecruitmentScore,
		AwarenessScore:   c.AwarenessScore,
		FounderScore:     c.FounderScore,
		OverallScore:     c.OverallScore,
		Status:           c.Status,
		Priority:         c.Priority,
		TotalItems:       c.TotalItems,
		PublishedItems:   c.PublishedItems,
		MissingTargets:   c.MissingTargets,
	}
}

// CountrySummary is the caller-facing list entry of a country.
type CountrySummary struct {
	CountryRef
	RecruitmentScore float64       `json:"recruitment_score"`
	AwarenessScore   float64       `json:"awareness_score"`
	FounderScore     float64       `json:"founder_score"`
	OverallScore     float64       `json:"overall_score"`
	Status           domain.Status `json:"status"`
	Priority         int           `json:"priority"`
	TotalItems       int           `json:"total_items"`
	PublishedItems   int           `json:"published_items"`
	MissingTargets   int           `json:"missing_targets"`
}

// CountryDetails is a country result plus the latest content of the pair.
type CountryDetails struct {
	*CountryCoverage
	RecentItems []domain.ContentItem `json:"recent_items"`
}

// StatusDistribution counts countries per status bucket.
type StatusDistribution struct {
	Excellent int `json:"excellent"`
	Good      int `json:"good"`
	Partial   int `json:"partial"`
	Minimal   int `json:"minimal"`
	Missing   int `json:"missing"`
}

// Add counts one country of status s.
func (d *StatusDistribution) Add(s domain.Status) {
	switch s {
	case domain.StatusExcellent:
		d.Excellent++
	case domain.StatusGood:
		d.Good++
	case domain.StatusPartial:
		d.Partial++
	case domain.StatusMinimal:
		d.Minimal++
	default:
		d.Missing++
	}
}

// Total is the number of countries counted.
func (d StatusDistribution) Total() int {
	return d.Excellent + d.Good + d.Partial + d.Minimal + d.Missing
}

// DimensionAverages are means across countries.
type DimensionAverages struct {
	Recruitment float64 `json:"recruitment"`
	Awareness   float64 `json:"awareness"`
	Founder     float64 `json:"founder"`
	Overall     float64 `json:"overall"`
}

// GlobalCoverage is the platform-wide roll-up.
type GlobalCoverage struct {
	PlatformID        string             `json:"platform_id"`
	TotalCountries    int                `json:"total_countries"`
	Averages          DimensionAverages  `json:"averages"`
	Distribution      StatusDistribution `json:"distribution"`
	TopCountries      []CountrySummary   `json:"top_countries"`
	PriorityCountries []CountrySummary   `json:"priority_countries"`
	Countries         []CountrySummary   `json:"countries"`
	Languages         []LanguageCoverage `json:"languages"`
	TotalTargets      int                `json:"total_targets"`
	CompletedTargets  int                `json:"completed_targets"`
	GeneratedAt       time.Time          `json:"generated_at"`
}

// GlobalRecommendation is a country recommendation re-ranked platform-wide.
type GlobalRecommendation struct {
	Recommendation
	CountryID       string  `json:"country_id"`
	CountryCode     string  `json:"country_code"`
	CountryName     string  `json:"country_name"`
	CountryPriority int     `json:"country_priority"`
	Score           float64 `json:"score"`
}
