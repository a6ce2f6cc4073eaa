package coverage

import (
	"context"
	"sort"
	"sync"

	domain "github.com/turtacn/coverage-intelligence/internal/domain/coverage"
)

// TaxonomyCache is a read-through view of the reference data that one
// request or one batch job sees.  Create a new one per unit of work; it never
// expires entries.  Safe for concurrent use.
type TaxonomyCache struct {
	taxonomy  domain.TaxonomyRepository
	reference domain.ReferenceRepository

	mu        sync.Mutex
	languages []domain.Language
	platforms []domain.Platform
	topics    map[domain.TaxonomyKind][]domain.Topic
	loads     int
}

// NewTaxonomyCache returns an empty cache over the given repositories.
func NewTaxonomyCache(taxonomy domain.TaxonomyRepository, reference domain.ReferenceRepository) *TaxonomyCache {
	return &TaxonomyCache{
		taxonomy:  taxonomy,
		reference: reference,
		topics:    make(map[domain.TaxonomyKind][]domain.Topic),
	}
}

// Languages returns the supported languages ordered by position, one entry
// per code.
func (c *TaxonomyCache) Languages(ctx context.Context) ([]domain.Language, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.languages != nil {
		return c.languages, nil
	}
	langs, err := c.reference.ListLanguages(ctx)
	if err != nil {
		return nil, err
	}
	c.loads++
	sorted := make([]domain.Language, len(langs))
	copy(sorted, langs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })

	// A repeated code keeps its lowest position.
	seen := make(map[string]bool, len(sorted))
	unique := make([]domain.Language, 0, len(sorted))
	for _, l := range sorted {
		if seen[l.Code] {
			continue
		}
		seen[l.Code] = true
		unique = append(unique, l)
	}
	c.languages = unique
	return c.languages, nil
}

// Platforms returns every platform in registry order.
func (c *TaxonomyCache) Platforms(ctx context.Context) ([]domain.Platform, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.platforms != nil {
		return c.platforms, nil
	}
	platforms, err := c.reference.ListPlatforms(ctx)
	if err != nil {
		return nil, err
	}
	c.loads++
	if platforms == nil {
		platforms = []domain.Platform{}
	}
	c.platforms = platforms
	return c.platforms, nil
}

// Targets returns the topics of kind that count as targets: active entries,
// collapsed to leaves for hierarchical taxonomies, each id once.
func (c *TaxonomyCache) Targets(ctx context.Context, kind domain.TaxonomyKind) ([]domain.Topic, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if topics, ok := c.topics[kind]; ok {
		return topics, nil
	}
	topics, err := c.taxonomy.ListActiveTopics(ctx, kind)
	if err != nil {
		return nil, err
	}
	c.loads++
	seen := make(map[string]bool, len(topics))
	targets := make([]domain.Topic, 0, len(topics))
	for _, t := range domain.LeafTopics(topics) {
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		targets = append(targets, t)
	}
	c.topics[kind] = targets
	return targets, nil
}

// Loads reports how many repository reads the cache has made.
func (c *TaxonomyCache) Loads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loads
}
