package decision

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	dErrors "i9score/pkg/domain-errors"
)

type ResolverSuite struct {
	suite.Suite
	resolver *Resolver
}

func TestResolverSuite(t *testing.T) {
	suite.Run(t, new(ResolverSuite))
}

func (s *ResolverSuite) SetupTest() {
	s.resolver = defaultResolver(s.T())
}

// =============================================================================
// Matching and ranking
// =============================================================================

func (s *ResolverSuite) TestResolveRanksExactBeforeFuzzy() {
	fields := map[string]string{
		"employer_signature_date": "01/07/2022",
		"Date Signed":             "01/08/2022",
		"Employer Signature Dt":   "01/09/2022",
		"date_of_birth":           "03/14/1990",
		"favorite_color":          "green",
	}

	matches := s.resolver.Resolve(FieldSignatureDate, fields)

	s.Require().Len(matches, 3)
	// exact matches tie at 1.0 and fall back to raw key order
	s.Equal("Date Signed", matches[0].RawKey)
	s.Equal("employer_signature_date", matches[1].RawKey)
	s.Equal("Employer Signature Dt", matches[2].RawKey)
	s.InDelta(1.0, matches[0].Confidence, 1e-9)
	s.Less(matches[2].Confidence, 1.0)
	s.Equal("employer_signature_date", matches[2].Pattern)
	for _, m := range matches {
		s.Equal(FieldSignatureDate, m.Category)
	}
}

func (s *ResolverSuite) TestResolveSkipsSentinelValues() {
	fields := map[string]string{
		"first_name": "N/A",
		"given_name": " null ",
		"fname":      "   ",
	}
	s.Empty(s.resolver.Resolve(FieldFirstName, fields))
}

func (s *ResolverSuite) TestKeyBelongsToItsClosestCategory() {
	fields := map[string]string{"employee_first_name": "Ana"}

	s.Len(s.resolver.Resolve(FieldFirstName, fields), 1)
	s.Empty(s.resolver.Resolve(FieldLastName, fields), "a first-name key must not satisfy last name")
}

func (s *ResolverSuite) TestResolvePageTagsPageNumber() {
	p := page(7, "x", "ssn", "123-45-6789")
	m, ok := s.resolver.First(FieldSSN, p)
	s.Require().True(ok)
	s.Equal(7, m.Page)
	s.Equal("123-45-6789", m.Value)

	_, ok = s.resolver.First(FieldDOB, p)
	s.False(ok)
}

func (s *ResolverSuite) TestExtractorKeyVariants() {
	cases := []struct {
		key  string
		want FieldCategory
	}{
		{"section_3_expiration_date", FieldExpiryDate},
		{"reverification_1_expiration_date", FieldExpiryDate},
		{"reverification_document_expiration_date", FieldExpiryDate},
		{"rehire_expiration_date", FieldExpiryDate},
		{"alien_expiration_date", FieldWorkAuthExpiry},
		{"work_auth_expiration_date", FieldWorkAuthExpiry},
		{"alien_work_until_date", FieldWorkAuthExpiry},
		{"alien_authorized_to_work_until", FieldWorkAuthExpiry},
		{"section_3_employer_signature_date", FieldSignatureDate},
		{"employer_signature_date_reverification", FieldSignatureDate},
	}
	for _, tc := range cases {
		s.Run(tc.key, func() {
			fields := map[string]string{tc.key: "09/03/2025"}
			for _, cat := range categoryOrder {
				got := s.resolver.Resolve(cat, fields)
				if cat == tc.want {
					s.Len(got, 1, "expected %s", cat)
				} else {
					s.Empty(got, "%s also resolved as %s", tc.key, cat)
				}
			}
		})
	}
}

func (s *ResolverSuite) TestExpiryKeysNeverResolveAsSignatureDate() {
	fields := map[string]string{
		"section_4_expiration_date":   "01/01/2030",
		"reverification_sig_exp_date": "01/01/2030",
		"Signature Expiry":            "01/01/2030",
		"signature_date":              "06/08/2021",
	}

	matches := s.resolver.Resolve(FieldSignatureDate, fields)
	s.Require().Len(matches, 1)
	s.Equal("signature_date", matches[0].RawKey)
}

// =============================================================================
// Threshold behaviour
// =============================================================================

func (s *ResolverSuite) TestResolveIsMonotonicInThreshold() {
	fields := map[string]string{
		"employer_signature_date":   "01/01/2020",
		"employer_sig_dt":           "01/01/2020",
		"signature":                 "x",
		"date":                      "01/01/2020",
		"list_b_document_title":     "Driver's License",
		"doc_title_2":               "SSN card",
		"document_no":               "123",
		"expires":                   "01/01/2030",
		"work_auth_until":           "01/01/2030",
		"employee_first_nm":         "Ana",
		"surname":                   "Diaz",
		"middle":                    "Q",
		"birth_dt":                  "01/01/1990",
		"social_security":           "111-22-3333",
		"citizenship_attested_as":   "citizen",
		"first_day_of_employment":   "01/02/2020",
		"reverification_doc_number": "A1",
	}
	categories := append([]FieldCategory(nil), categoryOrder...)
	thresholds := []float64{0.3, 0.45, 0.6, 0.7, 0.8, 0.9, 1.0}

	for _, cat := range categories {
		s.Run(string(cat), func() {
			prev := map[string]bool(nil)
			for _, th := range thresholds {
				r, err := NewResolver(th, nil)
				s.Require().NoError(err)
				cur := map[string]bool{}
				for _, m := range r.Resolve(cat, fields) {
					cur[m.RawKey] = true
				}
				if prev != nil {
					s.LessOrEqual(len(cur), len(prev), "threshold %v grew the match set", th)
					for k := range cur {
						s.True(prev[k], "key %s appeared when threshold rose to %v", k, th)
					}
				}
				prev = cur
			}
		})
	}
}

func TestNewResolverRejectsBadThreshold(t *testing.T) {
	for _, th := range []float64{0, -0.1, 1.01} {
		_, err := NewResolver(th, nil)
		require.Error(t, err, fmt.Sprintf("threshold %v", th))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	}
}

func TestResolverCustomPatterns(t *testing.T) {
	r, err := NewResolver(0.9, map[FieldCategory][]string{
		FieldCitizenship: {"Status Box"},
	})
	require.NoError(t, err)

	matches := r.Resolve(FieldCitizenship, map[string]string{"status-box": "citizen", "citizenship_status": "x"})
	require.Len(t, matches, 1)
	assert.Equal(t, "status-box", matches[0].RawKey)
}

// =============================================================================
// Similarity
// =============================================================================

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, Similarity("date_signed", "date_signed"), 1e-9)
	assert.InDelta(t, 0.0, Similarity("", "date_signed"), 1e-9)

	// containment lifts the substring component above the plain ratio
	contained := Similarity("employer_signature_date", "signature_date")
	unrelated := Similarity("employer_signature_date", "favorite_color")
	assert.Greater(t, contained, DefaultThreshold)
	assert.Less(t, unrelated, DefaultThreshold)

	assert.InDelta(t, Similarity("list_a_document_title", "document_title"),
		Similarity("document_title", "list_a_document_title"), 1e-9)
}

func FuzzSimilarityBounds(f *testing.F) {
	f.Add("employer_signature_date", "date_signed")
	f.Add("a", "a_a_a")
	f.Add("", "x")
	f.Fuzz(func(t *testing.T, a, b string) {
		score := Similarity(a, b)
		if score < 0 || score > 1 {
			t.Fatalf("Similarity(%q, %q) = %v out of range", a, b, score)
		}
		if rev := Similarity(b, a); rev-score > 1e-9 || score-rev > 1e-9 {
			t.Fatalf("Similarity not symmetric for %q, %q: %v vs %v", a, b, score, rev)
		}
	})
}
