package decision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func criticalScores() map[BucketID]int {
	return map[BucketID]int{
		BucketPersonalData:  criticalPersonalData,
		BucketFormDetection: criticalFormDetection,
		BucketBusinessRules: criticalBusinessRules,
	}
}

func TestDetermineStatus(t *testing.T) {
	weakForm := criticalScores()
	weakForm[BucketFormDetection] = criticalFormDetection - 1

	tests := []struct {
		name     string
		total    int
		scores   map[BucketID]int
		detected bool
		want     Status
	}{
		{name: "no form overrides points", total: 95, scores: criticalScores(), detected: false, want: StatusNoI9},
		{name: "below error threshold", total: 39, scores: criticalScores(), detected: true, want: StatusNoI9},
		{name: "error lower bound", total: 40, scores: criticalScores(), detected: true, want: StatusError},
		{name: "error upper bound", total: 59, scores: criticalScores(), detected: true, want: StatusError},
		{name: "partial lower bound", total: 60, scores: criticalScores(), detected: true, want: StatusPartial},
		{name: "partial upper bound", total: 84, scores: criticalScores(), detected: true, want: StatusPartial},
		{name: "complete", total: 85, scores: criticalScores(), detected: true, want: StatusComplete},
		{name: "critical minimum missed", total: 99, scores: weakForm, detected: true, want: StatusPartial},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetermineStatus(tt.total, tt.scores, tt.detected))
		})
	}
}

func TestCitizenshipClassify(t *testing.T) {
	p := DefaultCitizenshipPatterns
	tests := map[string]Citizenship{
		"A citizen of the United States":         CitizenshipUS,
		"US Citizen":                             CitizenshipUS,
		"A noncitizen national of the US":        CitizenshipNonUS,
		"Non-citizen authorized to work":         CitizenshipNonUS,
		"Lawful Permanent Resident":              CitizenshipNonUS,
		"An alien authorized to work until 2025": CitizenshipNonUS,
		"":                                       CitizenshipUnknown,
		"checked":                                CitizenshipUnknown,
	}
	for value, want := range tests {
		assert.Equal(t, want, p.Classify(value), value)
	}
}

func TestCitizenshipPatternsAreConfigurable(t *testing.T) {
	p := CitizenshipPatterns{Citizen: []string{"ciudadano"}, NonCitizen: []string{"extranjero"}}
	assert.Equal(t, CitizenshipUS, p.Classify("Ciudadano"))
	assert.Equal(t, CitizenshipNonUS, p.Classify("extranjero autorizado"))
	assert.Equal(t, CitizenshipUnknown, p.Classify("A citizen of the United States"))
}

func TestMaskSSN(t *testing.T) {
	assert.Equal(t, "***-**-6789", MaskSSN("123-45-6789"))
	assert.Equal(t, "***-**-6789", MaskSSN("123456789"))
	assert.Equal(t, "***", MaskSSN("12"))
}

type OverrideSuite struct {
	suite.Suite
}

func TestOverrideSuite(t *testing.T) {
	suite.Run(t, new(OverrideSuite))
}

func completeEvaluation(c Citizenship) *Evaluation {
	return &Evaluation{
		Personal: map[FieldCategory]FieldMatch{
			FieldFirstName: {Value: "Ana"},
			FieldLastName:  {Value: "Diaz"},
			FieldDOB:       {Value: "01/02/1990"},
		},
		Attachments: []MatchResult{{DocumentTitle: "U.S. Passport", Attached: true}},
		Citizenship: c,
	}
}

// =============================================================================
// Citizenship override
// =============================================================================

func (s *OverrideSuite) TestCitizenKeepsComplete() {
	got, reason := ApplyCitizenshipOverride(StatusComplete, completeEvaluation(CitizenshipUS))
	s.Equal(StatusComplete, got)
	s.Empty(reason)
}

func (s *OverrideSuite) TestCitizenMissingDOBDowngrades() {
	ev := completeEvaluation(CitizenshipUS)
	delete(ev.Personal, FieldDOB)

	got, reason := ApplyCitizenshipOverride(StatusComplete, ev)
	s.Equal(StatusPartial, got)
	s.Contains(reason, "date of birth")
}

func (s *OverrideSuite) TestUnattachedDocumentDowngrades() {
	ev := completeEvaluation(CitizenshipUS)
	ev.Attachments = append(ev.Attachments, MatchResult{DocumentTitle: "Social Security Card"})

	got, _ := ApplyCitizenshipOverride(StatusComplete, ev)
	s.Equal(StatusPartial, got)
}

func (s *OverrideSuite) TestNoncitizenRequiresExpiryMatch() {
	ev := completeEvaluation(CitizenshipNonUS)
	got, reason := ApplyCitizenshipOverride(StatusComplete, ev)
	s.Equal(StatusPartial, got)
	s.Contains(reason, "expiry")

	ev.Expiry.Matched = true
	got, _ = ApplyCitizenshipOverride(StatusComplete, ev)
	s.Equal(StatusComplete, got)
}

func (s *OverrideSuite) TestUnknownCitizenshipAlwaysDowngrades() {
	ev := completeEvaluation(CitizenshipUnknown)
	ev.Expiry.Matched = true

	got, reason := ApplyCitizenshipOverride(StatusComplete, ev)
	s.Equal(StatusPartial, got)
	s.NotEmpty(reason)
}

func (s *OverrideSuite) TestOnlyCompleteIsOverridden() {
	for _, st := range []Status{StatusPartial, StatusError, StatusNoI9} {
		got, _ := ApplyCitizenshipOverride(st, completeEvaluation(CitizenshipUnknown))
		s.Equal(st, got)
	}
}

// =============================================================================
// Bucket isolation
// =============================================================================

func TestRubricIsolatesFailingBucket(t *testing.T) {
	r := NewRubric()
	r.buckets[BucketWorkAuthorization] = func(*Evaluation, *trail) int {
		panic("boom")
	}
	ev := &Evaluation{
		Personal: map[FieldCategory]FieldMatch{
			FieldFirstName: {Value: "Ana", Page: 1},
			FieldLastName:  {Value: "Diaz", Page: 1},
		},
	}

	out := r.Score(ev)
	assert.Equal(t, 0, out.Scores[BucketWorkAuthorization])
	assert.Equal(t, 10, out.Scores[BucketPersonalData])
	assert.Equal(t, 10, out.Total)

	var failed []AuditEntry
	for _, e := range out.Audit {
		if e.Rule == "bucket_failed" {
			failed = append(failed, e)
		}
	}
	require.Len(t, failed, 1)
	assert.Equal(t, BucketWorkAuthorization, failed[0].Bucket)
	assert.Contains(t, failed[0].Note, "boom")
}

func TestRubricScoresEveryBucket(t *testing.T) {
	out := NewRubric().Score(&Evaluation{})
	assert.Len(t, out.Scores, len(Buckets))
	assert.Equal(t, StatusNoI9, out.Status)
	assert.Zero(t, out.Bonus)
}

func TestBonusFollowsSelectedCategory(t *testing.T) {
	tests := map[FormCategory]int{
		CategorySupplementB: 5,
		CategorySection3:    3,
		CategorySection12:   1,
	}
	for cat, want := range tests {
		ev := &Evaluation{Selection: &Selection{Form: FormInstance{Category: cat}}}
		assert.Equal(t, want, bonus(ev), string(cat))
	}
	assert.Zero(t, bonus(&Evaluation{}))
}
