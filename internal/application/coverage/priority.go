package coverage

import (
	"math"
	"strings"
)

// priorityBase is the starting point of every country's priority.
const priorityBase = 50.0

// priorityInput is what the priority rules see.
type priorityInput struct {
	coverage  *CountryCoverage
	languages []LanguageCoverage
	highValue bool
}

// priorityRule adds bonus when applies holds.
type priorityRule struct {
	name    string
	bonus   float64
	applies func(in priorityInput) bool
}

var priorityRules = []priorityRule{
	{name: "high_value_country", bonus: 20, applies: func(in priorityInput) bool { return in.highValue }},
	{name: "low_recruitment", bonus: 15, applies: func(in priorityInput) bool { return in.coverage.RecruitmentScore < 20 }},
	{name: "low_founder", bonus: 10, applies: func(in priorityInput) bool { return in.coverage.FounderScore < 50 }},
	{name: "first_topic_first_language", bonus: 10, applies: firstTopicFirstLanguageRule},
}

// firstTopicFirstLanguageRule fires when the first topic of the first
// recruitment component is not published in the first supported language.
// It is a weak proxy for "main languages missing" and kept apart so it can
// be replaced without touching the other rules.  No topics, no signal.
func firstTopicFirstLanguageRule(in priorityInput) bool {
	comps := in.coverage.Recruitment.Components
	if len(comps) == 0 || len(comps[0].Topics) == 0 || len(in.languages) == 0 {
		return false
	}
	first := in.languages[0].Code
	for _, l := range comps[0].Topics[0].MissingLanguages {
		if l == first {
			return true
		}
	}
	return false
}

// computePriority turns the overall score and the rule bonuses into an
// integer in [0, 100].
func computePriority(in priorityInput) int {
	p := priorityBase + (100-in.coverage.OverallScore)*0.3
	for _, r := range priorityRules {
		if r.applies(in) {
			p += r.bonus
		}
	}
	return int(math.Round(clamp(p, 0, 100)))
}

// highValueSet indexes ISO codes case-insensitively.
type highValueSet map[string]struct{}

func newHighValueSet(codes []string) highValueSet {
	s := make(highValueSet, len(codes))
	for _, c := range codes {
		s[strings.ToUpper(strings.TrimSpace(c))] = struct{}{}
	}
	return s
}

func (s highValueSet) contains(code string) bool {
	_, ok := s[strings.ToUpper(code)]
	return ok
}
