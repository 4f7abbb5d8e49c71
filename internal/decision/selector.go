package decision

import (
	"errors"
	"sort"
	"strings"

	"i9score/internal/catalog"
	dErrors "i9score/pkg/domain-errors"
	pstrings "i9score/pkg/platform/strings"
)

// ErrNoFormDetected is returned when no page belongs to any I-9 category.
// It is a terminal outcome (NO_I9_FOUND), not a processing failure.
var ErrNoFormDetected = errors.New("no I-9 form detected")

// roleTokens describe what a field is rather than which document it belongs
// to. Stripping them leaves the slot that ties a title to its number and expiry.
var roleTokens = map[string]struct{}{
	"document": {}, "doc": {}, "title": {}, "name": {}, "type": {},
	"number": {}, "no": {}, "num": {},
	"expiration": {}, "expiry": {}, "exp": {}, "expires": {}, "date": {},
	"on": {}, "valid": {}, "until": {},
}

// Selector groups classified pages into form instances and picks the one
// that governs the record.
type Selector struct {
	resolver *Resolver
}

// NewSelector builds a selector.
func NewSelector(resolver *Resolver) (*Selector, error) {
	if resolver == nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "resolver is required")
	}
	return &Selector{resolver: resolver}, nil
}

// Select applies the category priority, then picks the latest instance of the
// winning category. Documents are read only from the chosen instance.
func (s *Selector) Select(classified []PageClassification) (Selection, error) {
	instances := s.Group(classified)
	if len(instances) == 0 {
		return Selection{}, ErrNoFormDetected
	}

	winning := WinningCategory(instances)
	var candidates []FormInstance
	for _, inst := range instances {
		if inst.Category == winning {
			candidates = append(candidates, inst)
		}
	}

	form, ambiguous := Latest(candidates)
	form.Documents = s.Documents(form)
	return Selection{Form: form, Instances: instances, Ambiguous: ambiguous}, nil
}

// WinningCategory returns the highest-ranked category present.
func WinningCategory(instances []FormInstance) FormCategory {
	var best FormCategory
	for _, inst := range instances {
		if Rank(inst.Category) > Rank(best) {
			best = inst.Category
		}
	}
	return best
}

// Latest picks the instance with the latest signature date. Equal dates fall
// back to the highest last page; a remaining tie keeps the first candidate and
// reports ambiguous.
func Latest(candidates []FormInstance) (FormInstance, bool) {
	if len(candidates) == 0 {
		return FormInstance{}, false
	}
	best, ambiguous := 0, false
	for i := 1; i < len(candidates); i++ {
		switch compareInstances(candidates[i], candidates[best]) {
		case 1:
			best, ambiguous = i, false
		case 0:
			ambiguous = true
		}
	}
	return candidates[best], ambiguous
}

func compareInstances(a, b FormInstance) int {
	switch {
	case a.SignatureDate.After(b.SignatureDate):
		return 1
	case a.SignatureDate.Before(b.SignatureDate):
		return -1
	case a.LastPage() > b.LastPage():
		return 1
	case a.LastPage() < b.LastPage():
		return -1
	default:
		return 0
	}
}

// Group splits form pages into instances, in page order.
//
// Standard I-9 pages run together until a Section 1 page follows a Section 2
// page, which starts a new hire event. Section 3 and Supplement B pages join
// the open instance only when adjacent and when they do not bring a second
// signature date; each signed reverification is its own occurrence.
func (s *Selector) Group(classified []PageClassification) []FormInstance {
	var (
		instances []FormInstance
		cur       *FormInstance
		hasSec2   bool
		lastPage  int
	)
	flush := func() {
		if cur != nil {
			instances = append(instances, *cur)
			cur = nil
		}
	}

	for _, pc := range classified {
		if !pc.Category.IsForm() {
			continue
		}
		date, key := s.signature(pc.Page)

		startNew := cur == nil || cur.Category != pc.Category
		if !startNew {
			switch pc.Category {
			case CategorySection12:
				startNew = pc.Section1 && !pc.Section2 && hasSec2
			default:
				startNew = pc.Page.Number != lastPage+1 || (!date.IsZero() && !cur.SignatureDate.IsZero())
			}
		}
		if startNew {
			flush()
			cur = &FormInstance{Category: pc.Category}
			hasSec2 = false
		}

		cur.Pages = append(cur.Pages, pc.Page)
		if date.After(cur.SignatureDate) {
			cur.SignatureDate, cur.SignatureKey = date, key
		}
		hasSec2 = hasSec2 || pc.Section2
		lastPage = pc.Page.Number
	}
	flush()
	return instances
}

// signature returns the latest parseable signature date on a page.
func (s *Selector) signature(page catalog.Page) (catalog.Date, string) {
	var (
		best catalog.Date
		key  string
	)
	for _, m := range s.resolver.ResolvePage(FieldSignatureDate, page) {
		if d, ok := catalog.ParseDate(m.Value); ok && d.After(best) {
			best, key = d, m.RawKey
		}
	}
	return best, key
}

// Documents reads the documents listed on the instance's pages, pairing each
// title with the number and expiry that share its slot.
func (s *Selector) Documents(form FormInstance) []DocumentRef {
	var out []DocumentRef
	for _, page := range form.Pages {
		titles := s.resolver.ResolvePage(FieldDocumentTitle, page)
		sort.SliceStable(titles, func(i, j int) bool { return titles[i].RawKey < titles[j].RawKey })
		numbers := s.resolver.ResolvePage(FieldDocumentNumber, page)
		expiries := s.resolver.ResolvePage(FieldExpiryDate, page)
		single := len(titles) == 1

		usedNum := map[string]bool{}
		usedExp := map[string]bool{}
		for _, t := range titles {
			slot := slotOf(t.RawKey)
			ref := DocumentRef{Title: t.Value, Page: page.Number, TitleKey: t.RawKey}
			if n, ok := pairBySlot(numbers, slot, single, usedNum); ok {
				ref.Number = n.Value
			}
			if e, ok := pairBySlot(expiries, slot, single, usedExp); ok {
				ref.Expiry = e.Value
			}
			out = append(out, ref)
		}
	}
	return out
}

func pairBySlot(candidates []FieldMatch, slot string, single bool, used map[string]bool) (FieldMatch, bool) {
	for _, c := range candidates {
		if !used[c.RawKey] && slotOf(c.RawKey) == slot {
			used[c.RawKey] = true
			return c, true
		}
	}
	if single {
		for _, c := range candidates {
			if !used[c.RawKey] {
				used[c.RawKey] = true
				return c, true
			}
		}
	}
	return FieldMatch{}, false
}

// slotOf strips role tokens from a key: list_a_document_number_2 -> list_a_2.
func slotOf(rawKey string) string {
	var kept []string
	for _, tok := range pstrings.Tokens(pstrings.NormalizeKey(rawKey)) {
		if _, role := roleTokens[tok]; !role {
			kept = append(kept, tok)
		}
	}
	return strings.Join(kept, pstrings.KeySeparator)
}
