// Package coverage holds the reference entities and content facts the
// coverage engine reads.  Nothing in this package writes to a store; the
// authoring pipeline and editorial administration own the lifecycle of
// every record defined here.
package coverage

import (
	"math"
	"strings"
	"time"

	"github.com/turtacn/coverage-intelligence/pkg/errors"
)

// ---------------------------------------------------------------------------
// Taxonomy
// ---------------------------------------------------------------------------

// TaxonomyKind names one topic taxonomy.
type TaxonomyKind string

const (
	TaxonomySpecialty TaxonomyKind = "specialty"
	TaxonomyDomain    TaxonomyKind = "domain"
	TaxonomyService   TaxonomyKind = "service"
)

// IsValid reports whether k is a known taxonomy.
func (k TaxonomyKind) IsValid() bool {
	switch k {
	case TaxonomySpecialty, TaxonomyDomain, TaxonomyService:
		return true
	}
	return false
}

// Topic is one entry of a taxonomy.  Services form a tree through ParentID;
// specialties and domains are flat.
type Topic struct {
	ID       string       `json:"id" yaml:"id"`
	Kind     TaxonomyKind `json:"kind" yaml:"kind"`
	Code     string       `json:"code" yaml:"code"`
	Name     string       `json:"name" yaml:"name"`
	ParentID string       `json:"parent_id,omitempty" yaml:"parent_id"`
	Active   bool         `json:"active" yaml:"active"`
}

// LeafTopics returns the active topics that no other active topic names as
// parent, preserving input order.  Flat taxonomies come back unchanged apart
// from inactive entries being dropped.
func LeafTopics(topics []Topic) []Topic {
	hasChild := make(map[string]bool, len(topics))
	for _, t := range topics {
		if t.Active && t.ParentID != "" {
			hasChild[t.ParentID] = true
		}
	}
	leaves := make([]Topic, 0, len(topics))
	for _, t := range topics {
		if t.Active && !hasChild[t.ID] {
			leaves = append(leaves, t)
		}
	}
	return leaves
}

// ---------------------------------------------------------------------------
// Platform
// ---------------------------------------------------------------------------

// RecruitmentModel selects which taxonomies a platform recruits against.
type RecruitmentModel string

const (
	// RecruitmentSpecialtiesDomains averages specialties and domains 50/50.
	RecruitmentSpecialtiesDomains RecruitmentModel = "specialties_domains"
	// RecruitmentServices scores leaf services at 100%.
	RecruitmentServices RecruitmentModel = "services"
)

// RecruitmentComponent is one weighted taxonomy of a recruitment score.
type RecruitmentComponent struct {
	Kind   TaxonomyKind `json:"kind"`
	Weight float64      `json:"weight"`
}

var recruitmentComponents = map[RecruitmentModel][]RecruitmentComponent{
	RecruitmentSpecialtiesDomains: {
		{Kind: TaxonomySpecialty, Weight: 0.5},
		{Kind: TaxonomyDomain, Weight: 0.5},
	},
	RecruitmentServices: {
		{Kind: TaxonomyService, Weight: 1.0},
	},
}

// Platform is one publishing property of the catalog.
type Platform struct {
	ID               string           `json:"id" yaml:"id"`
	Code             string           `json:"code" yaml:"code"`
	Name             string           `json:"name" yaml:"name"`
	RecruitmentModel RecruitmentModel `json:"recruitment_model" yaml:"recruitment_model"`
}

// RecruitmentComponents returns the weighted taxonomies of p.  The weights of
// every known model sum to 1.
func (p Platform) RecruitmentComponents() ([]RecruitmentComponent, error) {
	comps, ok := recruitmentComponents[p.RecruitmentModel]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeUnknownRecruitment,
			"platform %s has unknown recruitment model %q", p.ID, p.RecruitmentModel)
	}
	if err := ValidateWeights(comps); err != nil {
		return nil, err
	}
	out := make([]RecruitmentComponent, len(comps))
	copy(out, comps)
	return out, nil
}

// ValidateWeights checks that component weights are positive and sum to 1.
func ValidateWeights(comps []RecruitmentComponent) error {
	if len(comps) == 0 {
		return errors.New(errors.ErrCodeInvalidWeights, "no recruitment components")
	}
	sum := 0.0
	for _, c := range comps {
		if c.Weight <= 0 {
			return errors.Newf(errors.ErrCodeInvalidWeights, "component %s has non-positive weight", c.Kind)
		}
		sum += c.Weight
	}
	if math.Abs(sum-1) > 1e-9 {
		return errors.Newf(errors.ErrCodeInvalidWeights, "recruitment weights sum to %.4f", sum)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Country / Language
// ---------------------------------------------------------------------------

// Country is a reference country.
type Country struct {
	ID     string `json:"id" yaml:"id"`
	Code   string `json:"code" yaml:"code"`
	Name   string `json:"name" yaml:"name"`
	Region string `json:"region" yaml:"region"`
}

// Language is one supported content language.  Lower Position sorts first.
type Language struct {
	Code     string `json:"code" yaml:"code"`
	Name     string `json:"name" yaml:"name"`
	Position int    `json:"position" yaml:"position"`
}

// ---------------------------------------------------------------------------
// Content
// ---------------------------------------------------------------------------

// ContentType is the coarse classification of a content item.
type ContentType string

const (
	ContentPillar      ContentType = "pillar"
	ContentComparative ContentType = "comparative"
	ContentLanding     ContentType = "landing"
	ContentFounder     ContentType = "founder"
	ContentArticle     ContentType = "article"
)

// StatusPublished is the only status that completes a target.
const StatusPublished = "published"

// ContentItem is the existence fact of one article.
type ContentItem struct {
	ID         string       `json:"id" yaml:"id"`
	PlatformID string       `json:"platform_id" yaml:"platform_id"`
	CountryID  string       `json:"country_id" yaml:"country_id"`
	Language   string       `json:"language" yaml:"language"`
	ThemeType  TaxonomyKind `json:"theme_type,omitempty" yaml:"theme_type"`
	ThemeID    string       `json:"theme_id,omitempty" yaml:"theme_id"`
	Type       ContentType  `json:"type" yaml:"type"`
	Status     string       `json:"status" yaml:"status"`
	Title      string       `json:"title" yaml:"title"`
	UpdatedAt  time.Time    `json:"updated_at" yaml:"updated_at"`
}

// IsPublished reports whether the item completes its target.
func (c ContentItem) IsPublished() bool {
	return strings.EqualFold(c.Status, StatusPublished)
}

// CellState is the outcome of a completion lookup.
type CellState int

const (
	CellMissing CellState = iota
	CellUnpublished
	CellPublished
)

func (s CellState) String() string {
	switch s {
	case CellPublished:
		return "published"
	case CellUnpublished:
		return "unpublished"
	default:
		return "missing"
	}
}

// Merge returns the stronger of two states: published beats unpublished
// beats missing.
func (s CellState) Merge(other CellState) CellState {
	if other > s {
		return other
	}
	return s
}

// StateOf returns the state a single item gives its cell.
func StateOf(item ContentItem) CellState {
	if item.IsPublished() {
		return CellPublished
	}
	return CellUnpublished
}
