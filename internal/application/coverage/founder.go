package coverage

import (
	"strings"

	domain "github.com/turtacn/coverage-intelligence/internal/domain/coverage"
)

// legacyFounderKeywords are the title fragments that identified founder
// articles before the explicit type existed.  Matching is on the lowercased
// title.
var legacyFounderKeywords = []string{
	"founder",
	"fondateur",
	"fondatrice",
	"fundador",
	"fundadora",
	"gründer",
	"gruender",
	"основатель",
	"创始人",
	"مؤسس",
	"संस्थापक",
	"fondatore",
}

// FounderMatcher decides whether a content item fills a founder slot.
type FounderMatcher struct {
	titleFallback bool
	onFallback    func(domain.ContentItem)
}

// NewFounderMatcher returns a matcher.  With titleFallback set, items whose
// title names the founder also match whatever their type, and onFallback (if
// non-nil) is told about every such hit.
func NewFounderMatcher(titleFallback bool, onFallback func(domain.ContentItem)) *FounderMatcher {
	return &FounderMatcher{titleFallback: titleFallback, onFallback: onFallback}
}

// Match reports whether item is founder content.
func (m *FounderMatcher) Match(item domain.ContentItem) bool {
	if item.Type == domain.ContentFounder {
		return true
	}
	if m == nil || !m.titleFallback {
		return false
	}
	if !legacyFounderTitleMatcher(item.Title) {
		return false
	}
	if m.onFallback != nil {
		m.onFallback(item)
	}
	return true
}

// legacyFounderTitleMatcher is the title rule kept for unclassified
// content.  It is scheduled for removal once the backfill has tagged every
// founder article; the fallback counter tracks how often it still fires.
func legacyFounderTitleMatcher(title string) bool {
	if title == "" {
		return false
	}
	lower := strings.ToLower(title)
	for _, kw := range legacyFounderKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
