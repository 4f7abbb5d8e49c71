package decision

import (
	"testing"

	"github.com/stretchr/testify/require"

	"i9score/internal/catalog"
	"i9score/internal/decision/adapters"
	"i9score/internal/decision/ports"
	"i9score/internal/taxonomy"
)

func page(number int, title string, kv ...string) catalog.Page {
	fields := make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		fields[kv[i]] = kv[i+1]
	}
	return catalog.Page{Number: number, Title: title, Fields: fields}
}

func defaultTaxonomy(t testing.TB) ports.TaxonomyPort {
	t.Helper()
	tax, err := taxonomy.Default()
	require.NoError(t, err)
	return adapters.NewTaxonomyAdapter(tax)
}

func defaultResolver(t testing.TB) *Resolver {
	t.Helper()
	r, err := NewResolver(DefaultThreshold, nil)
	require.NoError(t, err)
	return r
}

func newTestEngine(t testing.TB) *Engine {
	t.Helper()
	e, err := NewEngine(defaultTaxonomy(t), Config{})
	require.NoError(t, err)
	return e
}

const (
	titleSection1 = "Form I-9 Section 1. Employee Information and Attestation"
	titleSection2 = "Form I-9 Section 2. Employer Review and Verification"
	titleSection3 = "Section 3. Reverification and Rehires"
	titleSuppB    = "Form I-9 Supplement B, Reverification and Rehire"
)

// citizenCatalog is a complete US-citizen record with one List A document.
func citizenCatalog() catalog.Document {
	return catalog.Document{ID: "citizen", Pages: []catalog.Page{
		page(1, titleSection1,
			"employee_first_name", "Maria",
			"employee_last_name", "Lopez",
			"middle_initial", "J",
			"employee_date_of_birth", "03/14/1990",
			"employee_social_security_number", "123-45-6789",
			"citizenship_status", "A citizen of the United States",
			"employee_signature_date", "01/05/2022",
		),
		page(2, titleSection2,
			"list_a_document_title", "U.S. Passport",
			"list_a_document_number", "X1234567",
			"list_a_expiration_date", "08/01/2030",
			"employer_signature_date", "01/07/2022",
		),
		page(3, "U.S. Passport", "passport_number", "X1234567"),
	}}
}

// noncitizenCatalog is a complete noncitizen record whose EAD expiry is
// given by docExpiry; work authorization runs until 09/03/2025.
func noncitizenCatalog(docExpiry string) catalog.Document {
	return catalog.Document{ID: "noncitizen", Pages: []catalog.Page{
		page(1, titleSection1,
			"employee_first_name", "Ivan",
			"employee_last_name", "Petrov",
			"middle_initial", "K",
			"employee_date_of_birth", "11/02/1988",
			"employee_social_security_number", "987-65-4321",
			"citizenship_status", "A noncitizen authorized to work",
			"alien_authorized_to_work_until_date", "09/03/2025",
			"employee_signature_date", "02/01/2023",
		),
		page(2, titleSection2,
			"list_a_document_title", "Employment Authorization Document",
			"list_a_document_number", "EAD0001",
			"list_a_expiration_date", docExpiry,
			"employer_signature_date", "02/03/2023",
		),
		page(3, "Employment Authorization Document", "card_number", "EAD0001"),
	}}
}

// reverificationCatalog has an original hire and two Section 3 occurrences.
func reverificationCatalog() catalog.Document {
	return catalog.Document{ID: "reverified", Pages: []catalog.Page{
		page(1, titleSection1,
			"employee_first_name", "Lea",
			"employee_last_name", "Ng",
			"citizenship_status", "Lawful permanent resident",
		),
		page(2, titleSection2,
			"list_a_document_title", "Foreign Passport with Form I-94",
			"employer_signature_date", "01/10/2019",
		),
		page(3, titleSection3,
			"reverification_document_title", "Employment Authorization Document",
			"reverification_document_number", "EAD111",
			"reverification_expiration_date", "06/08/2023",
			"reverification_signature_date", "06/08/2021",
		),
		page(4, titleSection3,
			"reverification_document_title", "Permanent Resident Card",
			"reverification_document_number", "PRC222",
			"reverification_signature_date", "02/15/2023",
		),
		page(5, "Permanent Resident Card", "card_number", "PRC222"),
	}}
}
