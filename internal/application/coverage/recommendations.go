package coverage

import (
	"fmt"
	"sort"
	"strings"

	domain "github.com/turtacn/coverage-intelligence/internal/domain/coverage"
)

// Thresholds of the recommendation rules.
const (
	primaryLanguageThreshold   = 30.0
	founderThreshold           = 50.0
	recruitmentThreshold       = 20.0
	topicProgressThreshold     = 30.0
	awarenessThreshold         = 30.0
	secondaryLanguageThreshold = 20.0
)

// recommendationInput is what the recommendation rules see.
type recommendationInput struct {
	coverage  *CountryCoverage
	languages []LanguageCoverage
	primary   []string
}

// recommendationRule maps a result to zero or more recommendations.
type recommendationRule struct {
	name string
	emit func(in recommendationInput) []Recommendation
}

// recommendationRules is evaluated in full for every result.  Order only
// matters for ties in priority.
var recommendationRules = []recommendationRule{
	{name: "primary_language_base_content", emit: primaryLanguageRule},
	{name: "founder", emit: func(in recommendationInput) []Recommendation {
		if in.coverage.FounderScore >= founderThreshold {
			return nil
		}
		return []Recommendation{{
			Type:        domain.RecommendFounder,
			Level:       domain.LevelHigh,
			Priority:    90,
			Title:       "Publish founder content",
			Description: fmt.Sprintf("Founder coverage is %.2f%%: %d of %d founder slots are published.", in.coverage.FounderScore, in.coverage.Founder.CompletedTargets, in.coverage.Founder.TotalTargets),
		}}
	}},
	{name: "recruitment", emit: func(in recommendationInput) []Recommendation {
		if in.coverage.RecruitmentScore >= recruitmentThreshold {
			return nil
		}
		return []Recommendation{{
			Type:        domain.RecommendRecruitment,
			Level:       domain.LevelCritical,
			Priority:    95,
			Title:       "Build recruitment content",
			Description: fmt.Sprintf("Recruitment coverage is %.2f%%: %d of %d topic targets are published.", in.coverage.RecruitmentScore, in.coverage.Recruitment.CompletedTargets, in.coverage.Recruitment.TotalTargets),
		}}
	}},
	{name: "taxonomy_gap", emit: taxonomyGapRule},
	{name: "awareness", emit: func(in recommendationInput) []Recommendation {
		if in.coverage.AwarenessScore >= awarenessThreshold {
			return nil
		}
		return []Recommendation{{
			Type:        domain.RecommendAwareness,
			Level:       domain.LevelMedium,
			Priority:    60,
			Title:       "Publish awareness content",
			Description: fmt.Sprintf("Awareness coverage is %.2f%%: pillar, comparative and landing quotas are open.", in.coverage.AwarenessScore),
		}}
	}},
	{name: "secondary_language_translation", emit: secondaryLanguageRule},
}

func primaryLanguageRule(in recommendationInput) []Recommendation {
	var out []Recommendation
	for _, code := range in.primary {
		lc, ok := findLanguage(in.languages, code)
		if !ok || lc.Score >= primaryLanguageThreshold {
			continue
		}
		out = append(out, Recommendation{
			Type:        domain.RecommendBaseContent,
			Level:       domain.LevelCritical,
			Priority:    100,
			Language:    lc.Code,
			Title:       fmt.Sprintf("Generate base content in %s", languageLabel(lc)),
			Description: fmt.Sprintf("%s coverage is %.2f%% (%d of %d targets).", languageLabel(lc), lc.Score, lc.CompletedTargets, lc.TotalTargets),
		})
	}
	return out
}

func taxonomyGapRule(in recommendationInput) []Recommendation {
	var out []Recommendation
	for _, comp := range in.coverage.Recruitment.Components {
		for _, tp := range comp.Topics {
			if tp.Progress >= topicProgressThreshold {
				continue
			}
			out = append(out, Recommendation{
				Type:             domain.RecommendTaxonomyGap,
				Level:            domain.LevelHigh,
				Priority:         80,
				TopicID:          tp.TopicID,
				TopicName:        tp.Name,
				MissingLanguages: append([]string(nil), tp.MissingLanguages...),
				Title:            fmt.Sprintf("Cover %s %q", comp.Kind, tp.Name),
				Description:      fmt.Sprintf("%.2f%% done; missing in %s.", tp.Progress, strings.Join(tp.MissingLanguages, ", ")),
			})
		}
	}
	return out
}

func secondaryLanguageRule(in recommendationInput) []Recommendation {
	primary := make(map[string]bool, len(in.primary))
	for _, p := range in.primary {
		primary[p] = true
	}
	var out []Recommendation
	for _, lc := range in.languages {
		if primary[lc.Code] || lc.Score >= secondaryLanguageThreshold {
			continue
		}
		out = append(out, Recommendation{
			Type:        domain.RecommendTranslation,
			Level:       domain.LevelLow,
			Priority:    40,
			Language:    lc.Code,
			Title:       fmt.Sprintf("Translate content into %s", languageLabel(lc)),
			Description: fmt.Sprintf("%s coverage is %.2f%%.", languageLabel(lc), lc.Score),
		})
	}
	return out
}

// generateRecommendations evaluates every rule, orders the output by
// priority (rule order breaks ties) and keeps the first limit entries.
func generateRecommendations(in recommendationInput, limit int) []Recommendation {
	recs := []Recommendation{}
	for _, r := range recommendationRules {
		recs = append(recs, r.emit(in)...)
	}
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Priority > recs[j].Priority })
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	return recs
}

func findLanguage(langs []LanguageCoverage, code string) (LanguageCoverage, bool) {
	for _, l := range langs {
		if l.Code == code {
			return l, true
		}
	}
	return LanguageCoverage{}, false
}

func languageLabel(l LanguageCoverage) string {
	if l.Name != "" {
		return l.Name
	}
	return l.Code
}
