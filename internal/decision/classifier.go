package decision

import (
	"i9score/internal/catalog"
	"i9score/internal/decision/ports"
	dErrors "i9score/pkg/domain-errors"
	pstrings "i9score/pkg/platform/strings"
)

// Classification rules, recorded on every verdict.
const (
	RuleTitleMarker            = "title_marker"
	RuleTitleMarkerCorroborate = "title_marker_corroborated"
	RuleFieldPresence          = "field_presence"
	RuleTaxonomyTitle          = "taxonomy_title"
	RuleTaxonomyField          = "taxonomy_field"
	RuleDocumentFields         = "document_fields"
	RuleNoSignal               = "no_signal"
)

const (
	confidenceTitle        = 0.85
	confidenceCorroborated = 0.95
	confidenceFields       = 0.7
	confidenceDocFields    = 0.5
)

// titleRules are evaluated in order; the first kind present in the title wins.
var titleRules = []struct {
	category FormCategory
	kinds    []ports.FormKind
}{
	{CategorySupplementB, []ports.FormKind{ports.FormSupplementB}},
	{CategorySection3, []ports.FormKind{ports.FormSection3}},
	{CategorySection12, []ports.FormKind{ports.FormI9, ports.FormSection1, ports.FormSection2}},
}

// fieldSignals are key phrases that only appear on a given form category.
// They rescue pages whose OCR title was lost.
var fieldSignals = []struct {
	category FormCategory
	phrases  []string
}{
	{CategorySupplementB, []string{"supplement_b"}},
	{CategorySection3, []string{"reverification", "section_3", "rehire_date"}},
	{CategorySection12, []string{
		"section_1", "section_2", "employee_first_name", "employee_last_name",
		"employer_signature_date", "employee_signature_date", "list_a_document_title",
		"list_b_document_title", "list_c_document_title", "citizenship_status",
		"alien_authorized_to_work", "first_day_of_employment",
	}},
}

var section1Phrases = []string{
	"section_1", "employee_signature", "employee_first_name", "employee_last_name",
	"citizenship_status", "date_of_birth", "social_security_number", "alien_authorized_to_work",
}

var section2Phrases = []string{
	"section_2", "employer_signature", "list_a", "list_b", "list_c",
	"first_day_of_employment", "employer_name", "employer_business",
}

// Classifier assigns pages to form categories from title text and field names.
type Classifier struct {
	taxonomy ports.TaxonomyPort
	resolver *Resolver
}

// NewClassifier wires the classifier to its taxonomy and resolver.
func NewClassifier(taxonomy ports.TaxonomyPort, resolver *Resolver) (*Classifier, error) {
	if taxonomy == nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "taxonomy is required")
	}
	if resolver == nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "resolver is required")
	}
	return &Classifier{taxonomy: taxonomy, resolver: resolver}, nil
}

// ClassifyAll classifies pages in page-number order.
func (c *Classifier) ClassifyAll(doc catalog.Document) []PageClassification {
	pages := doc.SortedPages()
	out := make([]PageClassification, 0, len(pages))
	for _, p := range pages {
		out = append(out, c.Classify(p))
	}
	return out
}

// Classify assigns one page to a form category.
// Rule order (first match wins):
//  1. Supplement B title marker
//  2. Section 3 / reverification title marker
//  3. I-9, Section 1 or Section 2 title marker
//  4. Category-specific field names (reduced confidence)
//  5. Title or document fields resolve to an acceptable document
//  6. Unknown
func (c *Classifier) Classify(page catalog.Page) PageClassification {
	result := PageClassification{Page: page, PageNumber: page.Number, Category: CategoryUnknown, Rule: RuleNoSignal}
	keys := normalizedKeys(page.Fields)

	// Rules 1-3: title markers
	for _, rule := range titleRules {
		if !c.titleHasAny(page.Title, rule.kinds) {
			continue
		}
		result.Category = rule.category
		result.Confidence = confidenceTitle
		result.Rule = RuleTitleMarker
		if c.corroborated(page) {
			result.Confidence = confidenceCorroborated
			result.Rule = RuleTitleMarkerCorroborate
		}
		return c.withSections(result, keys)
	}

	// Rule 4: field presence
	for _, signal := range fieldSignals {
		if hasAnyPhrase(keys, signal.phrases) {
			result.Category = signal.category
			result.Confidence = confidenceFields
			result.Rule = RuleFieldPresence
			return c.withSections(result, keys)
		}
	}

	// Rule 5: supporting document
	if id, ok := c.taxonomy.ResolveDocument(page.Title); ok {
		result.Category = CategorySupporting
		result.Confidence = id.Confidence
		result.Rule = RuleTaxonomyTitle
		return result
	}
	for _, m := range c.resolver.ResolvePage(FieldDocumentTitle, page) {
		if id, ok := c.taxonomy.ResolveDocument(m.Value); ok {
			result.Category = CategorySupporting
			result.Confidence = id.Confidence * m.Confidence
			result.Rule = RuleTaxonomyField
			return result
		}
	}
	if len(c.resolver.ResolvePage(FieldDocumentNumber, page)) > 0 || len(c.resolver.ResolvePage(FieldExpiryDate, page)) > 0 {
		result.Category = CategorySupporting
		result.Confidence = confidenceDocFields
		result.Rule = RuleDocumentFields
		return result
	}

	// Rule 6: unknown
	return result
}

func (c *Classifier) titleHasAny(title string, kinds []ports.FormKind) bool {
	for _, k := range kinds {
		if c.taxonomy.TitleHasMarker(k, title) {
			return true
		}
	}
	return false
}

// corroborated reports whether the page carries a signature date or a
// document title alongside its title marker.
func (c *Classifier) corroborated(page catalog.Page) bool {
	return len(c.resolver.ResolvePage(FieldSignatureDate, page)) > 0 ||
		len(c.resolver.ResolvePage(FieldDocumentTitle, page)) > 0
}

// withSections records Section 1 and Section 2 presence on standard I-9 pages.
func (c *Classifier) withSections(pc PageClassification, keys []string) PageClassification {
	if pc.Category != CategorySection12 {
		return pc
	}
	title := pc.Page.Title
	pc.Section1 = c.taxonomy.TitleHasMarker(ports.FormSection1, title) || hasAnyPhrase(keys, section1Phrases)
	pc.Section2 = c.taxonomy.TitleHasMarker(ports.FormSection2, title) || hasAnyPhrase(keys, section2Phrases)
	return pc
}

func normalizedKeys(fields map[string]string) []string {
	keys := make([]string, 0, len(fields))
	for k, v := range fields {
		if isEmptyValue(v) {
			continue
		}
		if n := pstrings.NormalizeKey(k); n != "" {
			keys = append(keys, n)
		}
	}
	return keys
}

func hasAnyPhrase(keys, phrases []string) bool {
	for _, k := range keys {
		for _, p := range phrases {
			if pstrings.ContainsPhrase(k, p, pstrings.KeySeparator) {
				return true
			}
		}
	}
	return false
}
