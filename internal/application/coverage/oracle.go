package coverage

import (
	"context"

	domain "github.com/turtacn/coverage-intelligence/internal/domain/coverage"
)

// ItemCounts are raw article counts of a (platform, country[, language]).
type ItemCounts struct {
	Total     int `json:"total"`
	Published int `json:"published"`
}

// CompletionOracle answers existence questions about the content of one
// country.
type CompletionOracle interface {
	// TopicState looks up the recruitment cell of a topic.
	TopicState(ctx context.Context, platformID, language string, kind domain.TaxonomyKind, topicID string) (domain.CellState, error)
	// PublishedCount counts published items of a content type.
	PublishedCount(ctx context.Context, platformID, language string, ct domain.ContentType) (int, error)
	// FounderState looks up the founder slot of a platform.
	FounderState(ctx context.Context, platformID, language string) (domain.CellState, error)
	// Counts returns article counts; an empty language counts all languages.
	Counts(ctx context.Context, platformID, language string) (ItemCounts, error)
	// Queries reports how many store round trips the oracle has made.
	Queries() int
}

// OracleFactory builds the oracle for one country.  platformIDs lists every
// platform, since the founder dimension reads across all of them.
type OracleFactory func(ctx context.Context, content domain.ContentRepository, countryID string, platformIDs []string, matcher *FounderMatcher) (CompletionOracle, error)

// ---------------------------------------------------------------------------
// Indexed oracle
// ---------------------------------------------------------------------------

type topicKey struct {
	platformID string
	language   string
	kind       domain.TaxonomyKind
	topicID    string
}

type typeKey struct {
	platformID string
	language   string
	ct         domain.ContentType
}

type slotKey struct {
	platformID string
	language   string
}

type indexedOracle struct {
	topics    map[topicKey]domain.CellState
	published map[typeKey]int
	founders  map[slotKey]domain.CellState
	counts    map[slotKey]ItemCounts
}

// NewIndexedOracle fetches every item of the country in one query and
// answers all lookups from memory.
func NewIndexedOracle(ctx context.Context, content domain.ContentRepository, countryID string, platformIDs []string, matcher *FounderMatcher) (CompletionOracle, error) {
	items, err := content.FetchCountryContent(ctx, domain.ContentQuery{
		CountryID:   countryID,
		PlatformIDs: platformIDs,
	})
	if err != nil {
		return nil, err
	}
	return newIndex(items, matcher), nil
}

func newIndex(items []domain.ContentItem, matcher *FounderMatcher) *indexedOracle {
	o := &indexedOracle{
		topics:    make(map[topicKey]domain.CellState),
		published: make(map[typeKey]int),
		founders:  make(map[slotKey]domain.CellState),
		counts:    make(map[slotKey]ItemCounts),
	}
	for _, it := range items {
		state := domain.StateOf(it)
		if it.ThemeID != "" {
			k := topicKey{it.PlatformID, it.Language, it.ThemeType, it.ThemeID}
			o.topics[k] = o.topics[k].Merge(state)
		}
		if it.Type != "" && state == domain.CellPublished {
			o.published[typeKey{it.PlatformID, it.Language, it.Type}]++
		}
		if matcher.Match(it) {
			k := slotKey{it.PlatformID, it.Language}
			o.founders[k] = o.founders[k].Merge(state)
		}
		o.count(slotKey{it.PlatformID, ""}, state)
		if it.Language != "" {
			o.count(slotKey{it.PlatformID, it.Language}, state)
		}
	}
	return o
}

// count adds one item to the tally under k.  The platform-wide tally is
// keyed by the empty language.
func (o *indexedOracle) count(k slotKey, state domain.CellState) {
	c := o.counts[k]
	c.Total++
	if state == domain.CellPublished {
		c.Published++
	}
	o.counts[k] = c
}

func (o *indexedOracle) TopicState(_ context.Context, platformID, language string, kind domain.TaxonomyKind, topicID string) (domain.CellState, error) {
	return o.topics[topicKey{platformID, language, kind, topicID}], nil
}

func (o *indexedOracle) PublishedCount(_ context.Context, platformID, language string, ct domain.ContentType) (int, error) {
	return o.published[typeKey{platformID, language, ct}], nil
}

func (o *indexedOracle) FounderState(_ context.Context, platformID, language string) (domain.CellState, error) {
	return o.founders[slotKey{platformID, language}], nil
}

func (o *indexedOracle) Counts(_ context.Context, platformID, language string) (ItemCounts, error) {
	return o.counts[slotKey{platformID, language}], nil
}

func (o *indexedOracle) Queries() int { return 1 }

// ---------------------------------------------------------------------------
// Naive oracle
// ---------------------------------------------------------------------------

// naiveOracle issues one store query per lookup.  It is the reference the
// indexed oracle is verified against and a fallback for stores that cannot
// serve the batched fetch.
type naiveOracle struct {
	content   domain.ContentRepository
	countryID string
	matcher   *FounderMatcher
	queries   int
}

// NewNaiveOracle returns an oracle that queries the store for every cell.
func NewNaiveOracle(_ context.Context, content domain.ContentRepository, countryID string, _ []string, matcher *FounderMatcher) (CompletionOracle, error) {
	return &naiveOracle{content: content, countryID: countryID, matcher: matcher}, nil
}

func (o *naiveOracle) list(ctx context.Context, q domain.CellQuery) ([]domain.ContentItem, error) {
	o.queries++
	q.CountryID = o.countryID
	return o.content.ListCellItems(ctx, q)
}

func (o *naiveOracle) TopicState(ctx context.Context, platformID, language string, kind domain.TaxonomyKind, topicID string) (domain.CellState, error) {
	items, err := o.list(ctx, domain.CellQuery{PlatformID: platformID, Language: language, ThemeType: kind, ThemeID: topicID})
	if err != nil {
		return domain.CellMissing, err
	}
	state := domain.CellMissing
	for _, it := range items {
		state = state.Merge(domain.StateOf(it))
	}
	return state, nil
}

func (o *naiveOracle) PublishedCount(ctx context.Context, platformID, language string, ct domain.ContentType) (int, error) {
	items, err := o.list(ctx, domain.CellQuery{PlatformID: platformID, Language: language, Type: ct})
	if err != nil {
		return 0, err
	}
	n := 0
	for _, it := range items {
		if it.IsPublished() {
			n++
		}
	}
	return n, nil
}

func (o *naiveOracle) FounderState(ctx context.Context, platformID, language string) (domain.CellState, error) {
	// The title fallback cannot be expressed as a store filter, so the whole
	// (platform, language) slice is read and matched here.
	items, err := o.list(ctx, domain.CellQuery{PlatformID: platformID, Language: language})
	if err != nil {
		return domain.CellMissing, err
	}
	state := domain.CellMissing
	for _, it := range items {
		if o.matcher.Match(it) {
			state = state.Merge(domain.StateOf(it))
		}
	}
	return state, nil
}

func (o *naiveOracle) Counts(ctx context.Context, platformID, language string) (ItemCounts, error) {
	items, err := o.list(ctx, domain.CellQuery{PlatformID: platformID, Language: language})
	if err != nil {
		return ItemCounts{}, err
	}
	var c ItemCounts
	for _, it := range items {
		c.Total++
		if it.IsPublished() {
			c.Published++
		}
	}
	return c, nil
}

func (o *naiveOracle) Queries() int { return o.queries }
