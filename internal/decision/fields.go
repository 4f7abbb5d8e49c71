package decision

import (
	"fmt"
	"sort"
	"strings"

	"i9score/internal/catalog"
	dErrors "i9score/pkg/domain-errors"
	pstrings "i9score/pkg/platform/strings"
)

// DefaultThreshold is the minimum similarity for a raw key to be accepted.
const DefaultThreshold = 0.6

// DefaultPatterns maps each field category to the key names extractors have
// been seen to emit for it, most common first.
var DefaultPatterns = map[FieldCategory][]string{
	FieldSignatureDate: {
		"signature_date", "employer_signature_date", "employee_signature_date",
		"reverification_signature_date", "date_of_signature", "date_of_employer_signature",
		"date_of_employee_signature", "signature_date_employer", "signature_date_employee",
		"employer_sig_date", "employee_sig_date", "date_signed", "reverification_date_signed",
		"section_3_signature_date", "supplement_b_signature_date",
		"section_3_employer_signature_date", "employer_signature_date_reverification",
	},
	FieldDocumentTitle: {
		"document_title", "reverification_document_title", "document_name", "document_type",
		"list_a_document_title", "list_b_document_title", "list_c_document_title",
		"section_2_document_title", "section_3_document_title", "supplement_b_document_title",
	},
	FieldDocumentNumber: {
		"document_number", "reverification_document_number", "list_a_document_number",
		"list_b_document_number", "list_c_document_number", "section_3_document_number",
		"supplement_b_document_number", "document_no", "passport_number", "card_number",
	},
	FieldExpiryDate: {
		"expiration_date", "document_expiration_date", "expiry_date", "document_expiry_date",
		"list_a_expiration_date", "list_b_expiration_date", "list_c_expiration_date",
		"reverification_expiration_date", "valid_until", "expires_on",
		"section_3_expiration_date", "reverification_1_expiration_date",
		"reverification_document_expiration_date", "rehire_expiration_date",
	},
	FieldWorkAuthExpiry: {
		"work_authorization_expiry_date", "work_authorization_expiration_date", "work_until_date",
		"alien_authorized_to_work_until_date", "authorized_to_work_until", "authorization_expiry",
		"employment_authorization_expiration_date", "alien_expiration_date",
		"work_auth_expiration_date", "alien_work_until_date", "alien_authorized_to_work_until",
	},
	FieldFirstName:  {"first_name", "employee_first_name", "given_name", "first", "fname"},
	FieldLastName:   {"last_name", "employee_last_name", "family_name", "surname", "last", "lname"},
	FieldMiddleName: {"middle_name", "employee_middle_name", "middle_initial", "middle", "mname", "mi"},
	FieldDOB:        {"date_of_birth", "employee_date_of_birth", "dob", "birth_date"},
	FieldSSN: {
		"social_security_number", "employee_social_security_number", "ssn",
		"us_social_security_number", "employee_ssn",
	},
	FieldCitizenship: {
		"citizenship_status", "employee_citizenship_status", "citizenship",
		"attestation_status", "citizenship_attestation", "immigration_status",
	},
}

// expiryTokens mark a key as an expiry. Such a key is never a signature date,
// however close its name is to one.
var expiryTokens = map[string]bool{"expiration": true, "expiry": true, "expires": true, "exp": true}

// categoryOrder fixes iteration order; earlier categories win exact ties.
var categoryOrder = []FieldCategory{
	FieldSignatureDate,
	FieldDocumentTitle,
	FieldDocumentNumber,
	FieldExpiryDate,
	FieldWorkAuthExpiry,
	FieldFirstName,
	FieldLastName,
	FieldMiddleName,
	FieldDOB,
	FieldSSN,
	FieldCitizenship,
}

// Resolver matches raw extracted keys to field categories.
//
// Each raw key is assigned to the single category it resembles most, so a key
// such as employee_first_name never doubles as a last name. The threshold only
// filters that assignment, which keeps the result set monotonic in threshold.
type Resolver struct {
	threshold float64
	patterns  map[FieldCategory][]string
}

// NewResolver builds a resolver. A nil pattern map selects DefaultPatterns.
func NewResolver(threshold float64, patterns map[FieldCategory][]string) (*Resolver, error) {
	if threshold <= 0 || threshold > 1 {
		return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("match threshold must be in (0,1], got %v", threshold))
	}
	if patterns == nil {
		patterns = DefaultPatterns
	}
	normalized := make(map[FieldCategory][]string, len(patterns))
	for cat, list := range patterns {
		for _, p := range list {
			if n := pstrings.NormalizeKey(p); n != "" {
				normalized[cat] = append(normalized[cat], n)
			}
		}
	}
	return &Resolver{threshold: threshold, patterns: normalized}, nil
}

// Resolve returns the fields accepted for category, best first.
func (r *Resolver) Resolve(category FieldCategory, fields map[string]string) []FieldMatch {
	var out []FieldMatch
	for key, value := range fields {
		if isEmptyValue(value) {
			continue
		}
		norm := pstrings.NormalizeKey(key)
		if norm == "" {
			continue
		}
		best, score, pattern := r.classify(norm)
		if best != category || score < r.threshold {
			continue
		}
		out = append(out, FieldMatch{
			Category:   category,
			RawKey:     key,
			Value:      strings.TrimSpace(value),
			Confidence: score,
			Pattern:    pattern,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].RawKey < out[j].RawKey
	})
	return out
}

// ResolvePage is Resolve over one page, tagging each match with its page.
func (r *Resolver) ResolvePage(category FieldCategory, page catalog.Page) []FieldMatch {
	matches := r.Resolve(category, page.Fields)
	for i := range matches {
		matches[i].Page = page.Number
	}
	return matches
}

// ResolvePages resolves category across pages in the given order, keeping
// each page's ranking intact.
func (r *Resolver) ResolvePages(category FieldCategory, pages []catalog.Page) []FieldMatch {
	var out []FieldMatch
	for _, p := range pages {
		out = append(out, r.ResolvePage(category, p)...)
	}
	return out
}

// First returns the best match for category on page.
func (r *Resolver) First(category FieldCategory, page catalog.Page) (FieldMatch, bool) {
	matches := r.ResolvePage(category, page)
	if len(matches) == 0 {
		return FieldMatch{}, false
	}
	return matches[0], true
}

// classify returns the category a normalized key resembles most.
func (r *Resolver) classify(norm string) (FieldCategory, float64, string) {
	var (
		bestCat     FieldCategory
		bestScore   float64
		bestPattern string
	)
	isExpiry := hasExpiryToken(norm)
	for _, cat := range categoryOrder {
		if isExpiry && cat == FieldSignatureDate {
			continue
		}
		for _, p := range r.patterns[cat] {
			if s := Similarity(norm, p); s > bestScore {
				bestCat, bestScore, bestPattern = cat, s, p
			}
		}
	}
	return bestCat, bestScore, bestPattern
}

func hasExpiryToken(norm string) bool {
	for _, tok := range pstrings.Tokens(norm) {
		if expiryTokens[tok] {
			return true
		}
	}
	return false
}

func isEmptyValue(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "n/a", "null":
		return true
	}
	return false
}
