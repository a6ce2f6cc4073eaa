// Package dataset serves the coverage repositories from a YAML document.
// coverctl uses it to score exported catalogs offline; tests use it as a
// deterministic content store.
package dataset

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	domain "github.com/turtacn/coverage-intelligence/internal/domain/coverage"
	"github.com/turtacn/coverage-intelligence/pkg/errors"
)

// Dataset is the YAML document layout.
type Dataset struct {
	Platforms []domain.Platform    `yaml:"platforms"`
	Countries []domain.Country     `yaml:"countries"`
	Languages []domain.Language    `yaml:"languages"`
	Topics    []domain.Topic       `yaml:"topics"`
	Content   []domain.ContentItem `yaml:"content"`
}

// Store is an in-memory implementation of every coverage repository port.
// It is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	data    Dataset
	queries int
}

// New returns a store over a copy of d.
func New(d Dataset) *Store {
	s := &Store{}
	s.data.Platforms = append([]domain.Platform(nil), d.Platforms...)
	s.data.Countries = append([]domain.Country(nil), d.Countries...)
	s.data.Languages = append([]domain.Language(nil), d.Languages...)
	s.data.Topics = append([]domain.Topic(nil), d.Topics...)
	s.data.Content = append([]domain.ContentItem(nil), d.Content...)
	return s
}

// Parse decodes a YAML dataset.
func Parse(raw []byte) (*Store, error) {
	var d Dataset
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDataset, "parse dataset")
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return New(d), nil
}

// Load reads and decodes the YAML dataset at path.
func Load(path string) (*Store, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDataset, fmt.Sprintf("read dataset %s", path))
	}
	return Parse(raw)
}

// Validate checks identifiers and enumerations.
func (d Dataset) Validate() error {
	ids := make(map[string]bool)
	for _, p := range d.Platforms {
		if p.ID == "" {
			return errors.New(errors.ErrCodeDataset, "platform without id")
		}
		if _, err := p.RecruitmentComponents(); err != nil {
			return errors.Wrap(err, errors.ErrCodeDataset, fmt.Sprintf("platform %s", p.ID))
		}
		ids["platform:"+p.ID] = true
	}
	for _, c := range d.Countries {
		if c.ID == "" {
			return errors.New(errors.ErrCodeDataset, "country without id")
		}
	}
	for _, l := range d.Languages {
		if l.Code == "" {
			return errors.New(errors.ErrCodeDataset, "language without code")
		}
	}
	for _, t := range d.Topics {
		if t.ID == "" || !t.Kind.IsValid() {
			return errors.Newf(errors.ErrCodeDataset, "topic %q has invalid kind %q", t.ID, t.Kind)
		}
	}
	for _, it := range d.Content {
		if !ids["platform:"+it.PlatformID] {
			return errors.Newf(errors.ErrCodeDataset, "content %q references unknown platform %q", it.ID, it.PlatformID)
		}
	}
	return nil
}

// AddContent appends items.
func (s *Store) AddContent(items ...domain.ContentItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Content = append(s.data.Content, items...)
}

// SetStatus changes the status of item id and reports whether it exists.
func (s *Store) SetStatus(id, status string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.data.Content {
		if s.data.Content[i].ID == id {
			s.data.Content[i].Status = status
			return true
		}
	}
	return false
}

// Queries reports how many content queries the store has served.
func (s *Store) Queries() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queries
}

// -----------------------------------------------------------------------
// ReferenceRepository
// -----------------------------------------------------------------------

func (s *Store) ListPlatforms(_ context.Context) ([]domain.Platform, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Platform{}, s.data.Platforms...), nil
}

func (s *Store) ListCountries(_ context.Context) ([]domain.Country, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Country{}, s.data.Countries...), nil
}

func (s *Store) GetCountry(_ context.Context, id string) (*domain.Country, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.data.Countries {
		if c.ID == id {
			c := c
			return &c, nil
		}
	}
	return nil, nil
}

func (s *Store) ListLanguages(_ context.Context) ([]domain.Language, error) {
	s.mu.RLock()
	langs := append([]domain.Language{}, s.data.Languages...)
	s.mu.RUnlock()
	sort.SliceStable(langs, func(i, j int) bool { return langs[i].Position < langs[j].Position })
	return langs, nil
}

// -----------------------------------------------------------------------
// TaxonomyRepository
// -----------------------------------------------------------------------

func (s *Store) ListActiveTopics(_ context.Context, kind domain.TaxonomyKind) ([]domain.Topic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Topic
	for _, t := range s.data.Topics {
		if t.Kind == kind && t.Active {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// -----------------------------------------------------------------------
// ContentRepository
// -----------------------------------------------------------------------

func (s *Store) FetchCountryContent(_ context.Context, q domain.ContentQuery) ([]domain.ContentItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries++
	platforms := make(map[string]bool, len(q.PlatformIDs))
	for _, p := range q.PlatformIDs {
		platforms[p] = true
	}
	var out []domain.ContentItem
	for _, it := range s.data.Content {
		if it.CountryID == q.CountryID && (len(platforms) == 0 || platforms[it.PlatformID]) {
			out = append(out, it)
		}
	}
	return out, nil
}

func (s *Store) ListCellItems(_ context.Context, q domain.CellQuery) ([]domain.ContentItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries++
	var out []domain.ContentItem
	for _, it := range s.data.Content {
		if matchCell(it, q) {
			out = append(out, it)
		}
	}
	return out, nil
}

func (s *Store) ListRecent(_ context.Context, platformID, countryID string, limit int) ([]domain.ContentItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries++
	var out []domain.ContentItem
	for _, it := range s.data.Content {
		if it.PlatformID == platformID && it.CountryID == countryID {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func matchCell(it domain.ContentItem, q domain.CellQuery) bool {
	switch {
	case q.PlatformID != "" && it.PlatformID != q.PlatformID:
		return false
	case q.CountryID != "" && it.CountryID != q.CountryID:
		return false
	case q.Language != "" && it.Language != q.Language:
		return false
	case q.ThemeType != "" && it.ThemeType != q.ThemeType:
		return false
	case q.ThemeID != "" && it.ThemeID != q.ThemeID:
		return false
	case q.Type != "" && it.Type != q.Type:
		return false
	}
	return true
}
