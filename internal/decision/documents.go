package decision

import (
	"i9score/internal/decision/ports"
	dErrors "i9score/pkg/domain-errors"
)

// SupportMatcher checks documents listed on the selected form against the
// pages that are not part of any form.
type SupportMatcher struct {
	taxonomy ports.TaxonomyPort
	resolver *Resolver
}

// NewSupportMatcher wires the matcher to its taxonomy and resolver.
func NewSupportMatcher(taxonomy ports.TaxonomyPort, resolver *Resolver) (*SupportMatcher, error) {
	if taxonomy == nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "taxonomy is required")
	}
	if resolver == nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "resolver is required")
	}
	return &SupportMatcher{taxonomy: taxonomy, resolver: resolver}, nil
}

type pageIdentity struct {
	page int
	keys map[string]struct{}
}

// Match reports, per listed document, whether a supporting or unknown page
// carries the same canonical document. Listed titles the taxonomy cannot
// resolve are never attached.
func (m *SupportMatcher) Match(documents []DocumentRef, classified []PageClassification) []MatchResult {
	identities := m.identities(SupportingPages(classified))

	results := make([]MatchResult, 0, len(documents))
	for _, doc := range documents {
		result := MatchResult{DocumentTitle: doc.Title}
		id, ok := m.taxonomy.ResolveDocument(doc.Title)
		if ok {
			result.Canonical = id.Canonical
			result.MatchLevel = id.Level
			for _, pi := range identities {
				if _, hit := pi.keys[id.Key]; hit {
					page := pi.page
					result.Attached = true
					result.MatchingPage = &page
					break
				}
			}
		}
		results = append(results, result)
	}
	return results
}

// identities resolves each page's title and document-title values.
func (m *SupportMatcher) identities(pages []PageClassification) []pageIdentity {
	out := make([]pageIdentity, 0, len(pages))
	for _, pc := range pages {
		pi := pageIdentity{page: pc.PageNumber, keys: map[string]struct{}{}}
		if id, ok := m.taxonomy.ResolveDocument(pc.Page.Title); ok {
			pi.keys[id.Key] = struct{}{}
		}
		for _, f := range m.resolver.ResolvePage(FieldDocumentTitle, pc.Page) {
			if id, ok := m.taxonomy.ResolveDocument(f.Value); ok {
				pi.keys[id.Key] = struct{}{}
			}
		}
		out = append(out, pi)
	}
	return out
}

// SupportingPages returns the pages eligible to corroborate documents.
func SupportingPages(classified []PageClassification) []PageClassification {
	var out []PageClassification
	for _, pc := range classified {
		if pc.Category == CategorySupporting || pc.Category == CategoryUnknown {
			out = append(out, pc)
		}
	}
	return out
}

// AllAttached is true when every result is attached, and for no results.
func AllAttached(results []MatchResult) bool {
	for _, r := range results {
		if !r.Attached {
			return false
		}
	}
	return true
}
