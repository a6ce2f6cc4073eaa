package coverage

import (
	"context"
	"math"

	domain "github.com/turtacn/coverage-intelligence/internal/domain/coverage"
)

// percent is completed/total×100 capped at 100; an empty total scores 0.
func percent(completed, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Min(100, float64(completed)/float64(total)*100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// ---------------------------------------------------------------------------
// Per-language tally
// ---------------------------------------------------------------------------

// languageTally accumulates cells per language across all dimensions.
type languageTally struct {
	order []string
	cells map[string]*LanguageCoverage
}

func newLanguageTally(langs []domain.Language, primary map[string]bool) *languageTally {
	t := &languageTally{cells: make(map[string]*LanguageCoverage, len(langs))}
	for _, l := range langs {
		if _, dup := t.cells[l.Code]; dup {
			continue
		}
		t.order = append(t.order, l.Code)
		t.cells[l.Code] = &LanguageCoverage{Code: l.Code, Name: l.Name, Primary: primary[l.Code]}
	}
	return t
}

func (t *languageTally) add(lang string, total, completed int) {
	if c, ok := t.cells[lang]; ok {
		c.TotalTargets += total
		c.CompletedTargets += completed
	}
}

func (t *languageTally) addItems(lang string, published int) {
	if c, ok := t.cells[lang]; ok {
		c.PublishedItems += published
	}
}

func (t *languageTally) result() []LanguageCoverage {
	out := make([]LanguageCoverage, 0, len(t.order))
	for _, code := range t.order {
		c := *t.cells[code]
		c.Score = round2(percent(c.CompletedTargets, c.TotalTargets))
		out = append(out, c)
	}
	return out
}

func (t *languageTally) score(lang string) (float64, bool) {
	c, ok := t.cells[lang]
	if !ok {
		return 0, false
	}
	return round2(percent(c.CompletedTargets, c.TotalTargets)), true
}

// ---------------------------------------------------------------------------
// Recruitment
// ---------------------------------------------------------------------------

// scoreRecruitment averages the component scores by weight.
func scoreRecruitment(ctx context.Context, m *TargetMatrix, o CompletionOracle, tally *languageTally) (RecruitmentBreakdown, error) {
	var b RecruitmentBreakdown
	weighted := 0.0
	for _, comp := range m.Components {
		cb := ComponentBreakdown{Kind: comp.Kind, Weight: comp.Weight, Topics: make([]TopicProgress, 0, len(comp.Topics))}
		for _, topic := range comp.Topics {
			tp := TopicProgress{TopicID: topic.ID, Code: topic.Code, Name: topic.Name, Kind: comp.Kind}
			for _, lang := range m.Languages {
				state, err := o.TopicState(ctx, m.Platform.ID, lang.Code, comp.Kind, topic.ID)
				if err != nil {
					return RecruitmentBreakdown{}, err
				}
				tp.TotalTargets++
				done := 0
				switch state {
				case domain.CellPublished:
					tp.CompletedTargets++
					done = 1
				case domain.CellUnpublished:
					tp.UnpublishedTargets++
					tp.MissingLanguages = append(tp.MissingLanguages, lang.Code)
				default:
					tp.MissingLanguages = append(tp.MissingLanguages, lang.Code)
				}
				tally.add(lang.Code, 1, done)
			}
			tp.Progress = round2(percent(tp.CompletedTargets, tp.TotalTargets))
			cb.TotalTargets += tp.TotalTargets
			cb.CompletedTargets += tp.CompletedTargets
			cb.UnpublishedTargets += tp.UnpublishedTargets
			cb.Topics = append(cb.Topics, tp)
		}
		raw := percent(cb.CompletedTargets, cb.TotalTargets)
		weighted += comp.Weight * raw
		cb.Score = round2(raw)

		b.TotalTargets += cb.TotalTargets
		b.CompletedTargets += cb.CompletedTargets
		b.UnpublishedTargets += cb.UnpublishedTargets
		b.Components = append(b.Components, cb)
	}
	b.Score = round2(clamp(weighted, 0, 100))
	return b, nil
}

// ---------------------------------------------------------------------------
// Awareness
// ---------------------------------------------------------------------------

// scoreAwareness fills the per-language quotas.  Published items beyond a
// quota are reported but never complete more than the quota.
func scoreAwareness(ctx context.Context, m *TargetMatrix, o CompletionOracle, tally *languageTally) (AwarenessBreakdown, error) {
	var b AwarenessBreakdown
	weighted := 0.0
	for _, q := range m.Quotas {
		qb := QuotaBreakdown{Type: q.Type, QuotaPerLanguage: q.Quota, Weight: q.Weight}
		for _, lang := range m.Languages {
			n, err := o.PublishedCount(ctx, m.Platform.ID, lang.Code, q.Type)
			if err != nil {
				return AwarenessBreakdown{}, err
			}
			done := n
			if done > q.Quota {
				done = q.Quota
			}
			qb.TotalTargets += q.Quota
			qb.CompletedTargets += done
			qb.PublishedItems += n
			tally.add(lang.Code, q.Quota, done)
		}
		raw := percent(qb.CompletedTargets, qb.TotalTargets)
		weighted += q.Weight * raw
		qb.Score = round2(raw)

		b.TotalTargets += qb.TotalTargets
		b.CompletedTargets += qb.CompletedTargets
		b.Quotas = append(b.Quotas, qb)
	}
	b.Score = round2(clamp(weighted, 0, 100))
	return b, nil
}

// ---------------------------------------------------------------------------
// Founder
// ---------------------------------------------------------------------------

// scoreFounder checks one slot per platform per language.  Every platform's
// result shares the same founder score for a country.
func scoreFounder(ctx context.Context, m *TargetMatrix, o CompletionOracle, tally *languageTally) (FounderBreakdown, error) {
	var b FounderBreakdown
	for _, lang := range m.Languages {
		for _, p := range m.FounderPlatforms {
			state, err := o.FounderState(ctx, p.ID, lang.Code)
			if err != nil {
				return FounderBreakdown{}, err
			}
			b.TotalTargets++
			done := 0
			switch state {
			case domain.CellPublished:
				b.CompletedTargets++
				done = 1
			case domain.CellUnpublished:
				b.UnpublishedTargets++
				fallthrough
			default:
				b.Open = append(b.Open, FounderSlot{PlatformID: p.ID, Language: lang.Code, State: state.String()})
			}
			tally.add(lang.Code, 1, done)
		}
	}
	b.Score = round2(percent(b.CompletedTargets, b.TotalTargets))
	return b, nil
}

// overallScore combines the dimension scores with the fixed weights.
func overallScore(recruitment, awareness, founder float64) float64 {
	return round2(clamp(recruitment*WeightRecruitment+awareness*WeightAwareness+founder*WeightFounder, 0, 100))
}
