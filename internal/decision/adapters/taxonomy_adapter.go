package adapters

import (
	"i9score/internal/decision/ports"
	"i9score/internal/taxonomy"
)

// TaxonomyAdapter is an in-process adapter that implements ports.TaxonomyPort
// over the loaded taxonomy index. The decision engine only sees the port, so a
// remote lookup service could replace it without touching scoring code.
type TaxonomyAdapter struct {
	taxonomy *taxonomy.Taxonomy
}

// NewTaxonomyAdapter creates a new in-process taxonomy adapter.
func NewTaxonomyAdapter(t *taxonomy.Taxonomy) ports.TaxonomyPort {
	return &TaxonomyAdapter{taxonomy: t}
}

// TitleHasMarker reports whether title carries a marker of the given form kind.
func (a *TaxonomyAdapter) TitleHasMarker(kind ports.FormKind, title string) bool {
	return a.taxonomy.TitleHasMarker(taxonomy.FormKind(kind), title)
}

// ResolveDocument maps free text to a canonical document identity.
func (a *TaxonomyAdapter) ResolveDocument(text string) (ports.DocumentIdentity, bool) {
	m, ok := a.taxonomy.MatchDocument(text)
	if !ok {
		return ports.DocumentIdentity{}, false
	}
	return ports.DocumentIdentity{
		Key:        m.Entry.Key,
		Canonical:  m.Entry.Canonical,
		List:       string(m.Entry.List),
		Expires:    m.Entry.Expires,
		Confidence: m.Confidence,
		Level:      string(m.Level()),
		Strategy:   string(m.Strategy),
	}, true
}
