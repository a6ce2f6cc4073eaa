package coverage

import (
	"context"
	"fmt"

	domain "github.com/turtacn/coverage-intelligence/internal/domain/coverage"
)

// Dimension is one independently weighted axis of coverage.
type Dimension string

const (
	DimensionRecruitment Dimension = "recruitment"
	DimensionAwareness   Dimension = "awareness"
	DimensionFounder     Dimension = "founder"
)

// Top-level dimension weights.
const (
	WeightRecruitment = 0.55
	WeightAwareness   = 0.35
	WeightFounder     = 0.10
)

// AwarenessQuota is the per-language target of one content type.
type AwarenessQuota struct {
	Type   domain.ContentType `json:"type"`
	Quota  int                `json:"quota"`
	Weight float64            `json:"weight"`
}

// AwarenessQuotas are the fixed per-language awareness targets.
var AwarenessQuotas = []AwarenessQuota{
	{Type: domain.ContentPillar, Quota: 3, Weight: 0.40},
	{Type: domain.ContentComparative, Quota: 2, Weight: 0.30},
	{Type: domain.ContentLanding, Quota: 1, Weight: 0.30},
}

// ComponentTargets pairs a recruitment component with its target topics.
type ComponentTargets struct {
	domain.RecruitmentComponent
	Topics []domain.Topic
}

// TargetMatrix enumerates the required cells of one platform.  It does not
// depend on the country; the oracle supplies the country-specific facts.
type TargetMatrix struct {
	Platform   domain.Platform
	Languages  []domain.Language
	Components []ComponentTargets
	Quotas     []AwarenessQuota
	// FounderPlatforms holds one founder slot per platform per language.
	FounderPlatforms []domain.Platform
}

// TargetCell is one required (topic-or-type × language) combination.
type TargetCell struct {
	Dimension  Dimension
	PlatformID string
	Language   string
	Kind       domain.TaxonomyKind
	TopicID    string
	Type       domain.ContentType
	Slot       int
}

// Key identifies the cell uniquely.
func (c TargetCell) Key() string {
	return fmt.Sprintf("%s|%s|%s|%s|%s|%s|%d", c.Dimension, c.PlatformID, c.Language, c.Kind, c.TopicID, c.Type, c.Slot)
}

// BuildTargetMatrix enumerates the targets of platform.
func BuildTargetMatrix(ctx context.Context, platform domain.Platform, taxonomy *TaxonomyCache) (*TargetMatrix, error) {
	comps, err := platform.RecruitmentComponents()
	if err != nil {
		return nil, err
	}
	langs, err := taxonomy.Languages(ctx)
	if err != nil {
		return nil, err
	}
	platforms, err := taxonomy.Platforms(ctx)
	if err != nil {
		return nil, err
	}

	m := &TargetMatrix{
		Platform:         platform,
		Languages:        langs,
		Quotas:           AwarenessQuotas,
		FounderPlatforms: platforms,
	}
	for _, comp := range comps {
		topics, err := taxonomy.Targets(ctx, comp.Kind)
		if err != nil {
			return nil, err
		}
		m.Components = append(m.Components, ComponentTargets{RecruitmentComponent: comp, Topics: topics})
	}
	return m, nil
}

// Cells lists every cell of the matrix, dimension by dimension.
func (m *TargetMatrix) Cells() []TargetCell {
	var cells []TargetCell
	for _, comp := range m.Components {
		for _, t := range comp.Topics {
			for _, l := range m.Languages {
				cells = append(cells, TargetCell{
					Dimension: DimensionRecruitment, PlatformID: m.Platform.ID,
					Language: l.Code, Kind: comp.Kind, TopicID: t.ID,
				})
			}
		}
	}
	for _, q := range m.Quotas {
		for _, l := range m.Languages {
			for slot := 1; slot <= q.Quota; slot++ {
				cells = append(cells, TargetCell{
					Dimension: DimensionAwareness, PlatformID: m.Platform.ID,
					Language: l.Code, Type: q.Type, Slot: slot,
				})
			}
		}
	}
	for _, l := range m.Languages {
		for _, p := range m.FounderPlatforms {
			cells = append(cells, TargetCell{
				Dimension: DimensionFounder, PlatformID: p.ID, Language: l.Code,
			})
		}
	}
	return cells
}

// TotalTargets counts the cells of one dimension.
func (m *TargetMatrix) TotalTargets(d Dimension) int {
	n := 0
	switch d {
	case DimensionRecruitment:
		for _, comp := range m.Components {
			n += len(comp.Topics) * len(m.Languages)
		}
	case DimensionAwareness:
		for _, q := range m.Quotas {
			n += q.Quota * len(m.Languages)
		}
	case DimensionFounder:
		n = len(m.FounderPlatforms) * len(m.Languages)
	}
	return n
}
