package coverage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/coverage-intelligence/pkg/errors"
)

func TestLeafTopics(t *testing.T) {
	topics := []Topic{
		{ID: "legal", Kind: TaxonomyService, Active: true},
		{ID: "visa", Kind: TaxonomyService, ParentID: "legal", Active: true},
		{ID: "divorce", Kind: TaxonomyService, ParentID: "legal", Active: true},
		{ID: "tax", Kind: TaxonomyService, Active: true},
		{ID: "tax-old", Kind: TaxonomyService, ParentID: "tax", Active: false},
		{ID: "retired", Kind: TaxonomyService, Active: false},
	}

	leaves := LeafTopics(topics)
	ids := make([]string, 0, len(leaves))
	for _, l := range leaves {
		ids = append(ids, l.ID)
	}
	// "tax" only has an inactive child so it is a leaf.
	assert.Equal(t, []string{"visa", "divorce", "tax"}, ids)
}

func TestLeafTopics_Flat(t *testing.T) {
	topics := []Topic{{ID: "a", Active: true}, {ID: "b", Active: true}}
	assert.Equal(t, topics, LeafTopics(topics))
	assert.Empty(t, LeafTopics(nil))
}

func TestPlatform_RecruitmentComponents(t *testing.T) {
	lawyers := Platform{ID: "p1", RecruitmentModel: RecruitmentSpecialtiesDomains}
	comps, err := lawyers.RecruitmentComponents()
	require.NoError(t, err)
	require.Len(t, comps, 2)
	assert.Equal(t, TaxonomySpecialty, comps[0].Kind)
	assert.Equal(t, TaxonomyDomain, comps[1].Kind)

	services := Platform{ID: "p2", RecruitmentModel: RecruitmentServices}
	comps, err = services.RecruitmentComponents()
	require.NoError(t, err)
	assert.Equal(t, []RecruitmentComponent{{Kind: TaxonomyService, Weight: 1}}, comps)

	comps[0].Weight = 0.1
	again, _ := services.RecruitmentComponents()
	assert.Equal(t, 1.0, again[0].Weight, "callers must get a copy")
}

func TestPlatform_UnknownModel(t *testing.T) {
	_, err := Platform{ID: "p3", RecruitmentModel: "bespoke"}.RecruitmentComponents()
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnknownRecruitment))
}

func TestValidateWeights(t *testing.T) {
	for model, comps := range recruitmentComponents {
		assert.NoError(t, ValidateWeights(comps), model)
	}
	assert.Error(t, ValidateWeights(nil))
	assert.Error(t, ValidateWeights([]RecruitmentComponent{{Kind: TaxonomyDomain, Weight: 0.4}}))
	assert.Error(t, ValidateWeights([]RecruitmentComponent{{Kind: TaxonomyDomain, Weight: 1.2}, {Kind: TaxonomySpecialty, Weight: -0.2}}))
}

func TestContentItem_IsPublished(t *testing.T) {
	assert.True(t, ContentItem{Status: "published"}.IsPublished())
	assert.True(t, ContentItem{Status: "PUBLISHED"}.IsPublished())
	assert.False(t, ContentItem{Status: "draft"}.IsPublished())
	assert.False(t, ContentItem{}.IsPublished())
}

func TestCellState(t *testing.T) {
	assert.Equal(t, CellPublished, CellUnpublished.Merge(CellPublished))
	assert.Equal(t, CellPublished, CellPublished.Merge(CellMissing))
	assert.Equal(t, CellUnpublished, CellMissing.Merge(CellUnpublished))
	assert.Equal(t, "missing", CellMissing.String())
	assert.Equal(t, CellUnpublished, StateOf(ContentItem{Status: "review"}))
	assert.Equal(t, CellPublished, StateOf(ContentItem{Status: "published"}))
}

func TestStatusForScore(t *testing.T) {
	cases := []struct {
		score float64
		want  Status
	}{
		{100, StatusExcellent},
		{80, StatusExcellent},
		{79.99, StatusGood},
		{60, StatusGood},
		{40, StatusPartial},
		{39.99, StatusMinimal},
		{20, StatusMinimal},
		{19.99, StatusMissing},
		{0, StatusMissing},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, StatusForScore(tc.score), "score %.2f", tc.score)
	}
}

func TestParseStatus(t *testing.T) {
	st, ok := ParseStatus("partial")
	assert.True(t, ok)
	assert.Equal(t, StatusPartial, st)
	_, ok = ParseStatus("great")
	assert.False(t, ok)
}

func TestTaxonomyKind_IsValid(t *testing.T) {
	assert.True(t, TaxonomyService.IsValid())
	assert.False(t, TaxonomyKind("genre").IsValid())
}
