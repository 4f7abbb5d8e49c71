package decision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSupportMatcher(t *testing.T) *SupportMatcher {
	t.Helper()
	m, err := NewSupportMatcher(defaultTaxonomy(t), defaultResolver(t))
	require.NoError(t, err)
	return m
}

func TestSupportMatcherAttachesByCanonicalIdentity(t *testing.T) {
	m := newTestSupportMatcher(t)
	pages := []PageClassification{
		sec2(page(2, titleSection2)),
		classified(CategorySupporting, page(5, "Green Card")),
		classified(CategoryUnknown, page(6, "", "document_type", "Social Security Card")),
	}
	docs := []DocumentRef{
		{Title: "Permanent Resident Card"},
		{Title: "Social Security Card"},
	}

	results := m.Match(docs, pages)
	require.Len(t, results, 2)

	assert.True(t, results[0].Attached)
	assert.Equal(t, "Permanent Resident Card", results[0].Canonical)
	assert.Equal(t, "high", results[0].MatchLevel)
	require.NotNil(t, results[0].MatchingPage)
	assert.Equal(t, 5, *results[0].MatchingPage)

	assert.True(t, results[1].Attached)
	require.NotNil(t, results[1].MatchingPage)
	assert.Equal(t, 6, *results[1].MatchingPage)
	assert.True(t, AllAttached(results))
}

func TestSupportMatcherIgnoresFormPages(t *testing.T) {
	m := newTestSupportMatcher(t)
	pages := []PageClassification{
		sec2(page(2, "U.S. Passport")),
	}

	results := m.Match([]DocumentRef{{Title: "U.S. Passport"}}, pages)
	require.Len(t, results, 1)
	assert.False(t, results[0].Attached)
	assert.Nil(t, results[0].MatchingPage)
	assert.Equal(t, "U.S. Passport", results[0].Canonical)
	assert.Equal(t, "high", results[0].MatchLevel)
}

func TestSupportMatcherNeverAttachesUnresolvedTitle(t *testing.T) {
	m := newTestSupportMatcher(t)
	pages := []PageClassification{
		classified(CategoryUnknown, page(4, "Gym Membership")),
	}

	results := m.Match([]DocumentRef{{Title: "Gym Membership"}}, pages)
	require.Len(t, results, 1)
	assert.False(t, results[0].Attached)
	assert.Empty(t, results[0].Canonical)
	assert.False(t, AllAttached(results))
}

func TestAllAttachedIsVacuouslyTrue(t *testing.T) {
	assert.True(t, AllAttached(nil))
	assert.True(t, AllAttached([]MatchResult{}))
}

func TestSupportingPages(t *testing.T) {
	pages := []PageClassification{
		sec1(page(1, "")),
		classified(CategorySupporting, page(2, "")),
		classified(CategorySection3, page(3, "")),
		classified(CategoryUnknown, page(4, "")),
	}

	got := SupportingPages(pages)
	require.Len(t, got, 2)
	assert.Equal(t, 2, got[0].PageNumber)
	assert.Equal(t, 4, got[1].PageNumber)
}

func TestNewSupportMatcherRequiresDependencies(t *testing.T) {
	_, err := NewSupportMatcher(nil, defaultResolver(t))
	assert.Error(t, err)
	_, err = NewSupportMatcher(defaultTaxonomy(t), nil)
	assert.Error(t, err)
}
