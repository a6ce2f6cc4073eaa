package coverage

// Status is the qualitative bucket of a coverage score.
type Status string

const (
	StatusExcellent Status = "excellent"
	StatusGood      Status = "good"
	StatusPartial   Status = "partial"
	StatusMinimal   Status = "minimal"
	StatusMissing   Status = "missing"
)

// AllStatuses lists the buckets from best to worst.
var AllStatuses = []Status{StatusExcellent, StatusGood, StatusPartial, StatusMinimal, StatusMissing}

// statusThresholds are closed lower bounds, checked highest first.
var statusThresholds = []struct {
	min    float64
	status Status
}{
	{80, StatusExcellent},
	{60, StatusGood},
	{40, StatusPartial},
	{20, StatusMinimal},
}

// StatusForScore buckets a 0..100 score.
func StatusForScore(score float64) Status {
	for _, t := range statusThresholds {
		if score >= t.min {
			return t.status
		}
	}
	return StatusMissing
}

// ParseStatus validates a status name.
func ParseStatus(s string) (Status, bool) {
	for _, st := range AllStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// Level is the urgency label of a recommendation.
type Level string

const (
	LevelCritical Level = "critical"
	LevelHigh     Level = "high"
	LevelMedium   Level = "medium"
	LevelLow      Level = "low"
)

// RecommendationType names the rule that produced a recommendation.
type RecommendationType string

const (
	RecommendBaseContent RecommendationType = "base_content"
	RecommendFounder     RecommendationType = "founder"
	RecommendRecruitment RecommendationType = "recruitment"
	RecommendTaxonomyGap RecommendationType = "taxonomy_gap"
	RecommendAwareness   RecommendationType = "awareness"
	RecommendTranslation RecommendationType = "translation"
)
