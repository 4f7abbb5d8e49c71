package decision

import (
	"i9score/internal/catalog"
	dErrors "i9score/pkg/domain-errors"
)

// workAuthTiers mirrors the form priority: the most authoritative form that
// states a work-authorization expiry decides it.
var workAuthTiers = []FormCategory{CategorySupplementB, CategorySection3, CategorySection12}

// ExpiryMatcher compares work-authorization expiry with document expiry.
type ExpiryMatcher struct {
	resolver *Resolver
}

// NewExpiryMatcher builds an expiry matcher.
func NewExpiryMatcher(resolver *Resolver) (*ExpiryMatcher, error) {
	if resolver == nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "resolver is required")
	}
	return &ExpiryMatcher{resolver: resolver}, nil
}

// WorkAuthCandidates returns the work-authorization expiry fields of the first
// tier whose pages state a parseable one.
func (m *ExpiryMatcher) WorkAuthCandidates(classified []PageClassification) []FieldMatch {
	for _, tier := range workAuthTiers {
		var pages []catalog.Page
		for _, pc := range classified {
			if pc.Category == tier {
				pages = append(pages, pc.Page)
			}
		}
		matches := m.resolver.ResolvePages(FieldWorkAuthExpiry, pages)
		if _, _, ok := LatestDate(matches); ok {
			return matches
		}
	}
	return nil
}

// DocumentExpiryCandidates returns the document expiry fields of the
// selected form only.
func (m *ExpiryMatcher) DocumentExpiryCandidates(form FormInstance) []FieldMatch {
	return m.resolver.ResolvePages(FieldExpiryDate, form.Pages)
}

// Match compares the latest parseable date on each side for exact calendar
// equality. A side without a parseable date yields an empty, unmatched result.
func (m *ExpiryMatcher) Match(workAuth, document []FieldMatch) ExpiryMatchResult {
	wa, _, okWA := LatestDate(workAuth)
	doc, _, okDoc := LatestDate(document)
	if !okWA || !okDoc {
		return ExpiryMatchResult{}
	}
	return ExpiryMatchResult{
		WorkAuthExpiry: wa,
		DocumentExpiry: doc,
		Matched:        wa.Equal(doc),
	}
}

// LatestDate returns the latest parseable date among matches and the match
// it came from.
func LatestDate(matches []FieldMatch) (catalog.Date, FieldMatch, bool) {
	var (
		best  catalog.Date
		from  FieldMatch
		found bool
	)
	for _, m := range matches {
		d, ok := catalog.ParseDate(m.Value)
		if !ok {
			continue
		}
		if !found || d.After(best) {
			best, from, found = d, m, true
		}
	}
	return best, from, found
}
