package decision

import (
	"fmt"
	"strings"

	pstrings "i9score/pkg/platform/strings"
)

// Status thresholds over the total score.
const (
	thresholdError    = 40
	thresholdPartial  = 60
	thresholdComplete = 85
)

// Critical minimums gating COMPLETE_SUCCESS.
const (
	criticalFormDetection = 10
	criticalPersonalData  = 12
	criticalBusinessRules = 15
)

// CitizenshipPatterns classify the attested citizenship value. Non-citizen
// phrases are checked first because "noncitizen" reads as "citizen" too.
type CitizenshipPatterns struct {
	Citizen    []string
	NonCitizen []string
}

// DefaultCitizenshipPatterns covers the attestation wording of current and
// past Form I-9 editions.
var DefaultCitizenshipPatterns = CitizenshipPatterns{
	Citizen: []string{
		"citizen of the united states", "united states citizen", "us citizen", "u s citizen", "citizen",
	},
	NonCitizen: []string{
		"noncitizen", "non citizen", "alien authorized to work", "alien",
		"lawful permanent resident", "permanent resident", "authorized to work",
	},
}

// Classify maps an attestation value to a citizenship status.
func (p CitizenshipPatterns) Classify(value string) Citizenship {
	text := pstrings.NormalizeText(value)
	if text == "" {
		return CitizenshipUnknown
	}
	for _, pat := range p.NonCitizen {
		if pstrings.ContainsPhrase(text, pstrings.NormalizeText(pat), " ") {
			return CitizenshipNonUS
		}
	}
	for _, pat := range p.Citizen {
		if pstrings.ContainsPhrase(text, pstrings.NormalizeText(pat), " ") {
			return CitizenshipUS
		}
	}
	return CitizenshipUnknown
}

// Evaluation gathers everything the rubric scores. It is built by the engine
// from the upstream components' outputs.
type Evaluation struct {
	Classifications []PageClassification
	// Selection is nil when no form was detected.
	Selection   *Selection
	Personal    map[FieldCategory]FieldMatch
	Attachments []MatchResult
	WorkAuth    *FieldMatch
	DocExpiry   *FieldMatch
	Expiry      ExpiryMatchResult
	Citizenship Citizenship
}

func (ev *Evaluation) section1Pages() map[int]bool {
	out := map[int]bool{}
	for _, pc := range ev.Classifications {
		if pc.Category == CategorySection12 && pc.Section1 {
			out[pc.PageNumber] = true
		}
	}
	return out
}

func (ev *Evaluation) has(cat FieldCategory) bool {
	m, ok := ev.Personal[cat]
	return ok && m.Value != ""
}

// documentsScoped reports whether every listed document was read from the
// selected instance.
func (ev *Evaluation) documentsScoped() bool {
	if ev.Selection == nil {
		return false
	}
	for _, d := range ev.Selection.Form.Documents {
		if !ev.Selection.Form.Contains(d.Page) {
			return false
		}
	}
	return true
}

// trail collects audit entries for one bucket.
type trail struct {
	bucket  BucketID
	entries []AuditEntry
}

func (t *trail) add(e AuditEntry) {
	e.Bucket = t.bucket
	t.entries = append(t.entries, e)
}

func (t *trail) check(field string, points int, ok bool, rule string) int {
	e := AuditEntry{Field: field, Rule: rule, Confidence: 1}
	if ok {
		e.Points = points
	} else {
		e.Confidence = 0
		e.Note = "criterion not met"
	}
	t.add(e)
	return e.Points
}

type bucketFunc func(ev *Evaluation, t *trail) int

// Rubric computes bucket scores and the final status.
type Rubric struct {
	buckets map[BucketID]bucketFunc
}

// NewRubric builds the scorer.
func NewRubric() *Rubric {
	return &Rubric{buckets: map[BucketID]bucketFunc{
		BucketPersonalData:      scorePersonalData,
		BucketFormDetection:     scoreFormDetection,
		BucketBusinessRules:     scoreBusinessRules,
		BucketWorkAuthorization: scoreWorkAuthorization,
		BucketDocumentTracking:  scoreDocumentTracking,
	}}
}

// Outcome is the rubric's verdict.
type Outcome struct {
	Scores map[BucketID]int
	Bonus  int
	Total  int
	Status Status
	Audit  []AuditEntry
}

// Score runs every bucket independently. A bucket that fails scores zero and
// leaves an audit note; the others are unaffected.
func (r *Rubric) Score(ev *Evaluation) Outcome {
	out := Outcome{Scores: make(map[BucketID]int, len(Buckets))}
	for _, id := range Buckets {
		points, entries := runBucket(id, r.buckets[id], ev)
		out.Scores[id] = points
		out.Total += points
		out.Audit = append(out.Audit, entries...)
	}

	out.Bonus = bonus(ev)
	out.Total += out.Bonus
	if out.Bonus > 0 {
		out.Audit = append(out.Audit, AuditEntry{
			Field:       "bonus",
			Value:       string(ev.Selection.Form.Category),
			SourcePages: ev.Selection.Form.PageNumbers(),
			Rule:        "selected_category_bonus",
			Confidence:  1,
			Bucket:      BucketFormDetection,
			Points:      out.Bonus,
		})
	}

	out.Status = DetermineStatus(out.Total, out.Scores, ev.Selection != nil)
	final, reason := ApplyCitizenshipOverride(out.Status, ev)
	if final != out.Status {
		out.Audit = append(out.Audit, AuditEntry{
			Field:      "status",
			Value:      string(final),
			Rule:       "citizenship_override",
			Confidence: 1,
			Note:       reason,
		})
	}
	out.Status = final
	return out
}

func runBucket(id BucketID, fn bucketFunc, ev *Evaluation) (points int, entries []AuditEntry) {
	t := &trail{bucket: id}
	defer func() {
		if rec := recover(); rec != nil {
			points = 0
			entries = []AuditEntry{{
				Field:  string(id),
				Rule:   "bucket_failed",
				Bucket: id,
				Note:   fmt.Sprintf("scoring failed: %v", rec),
			}}
		}
	}()
	if fn == nil {
		panic("no scorer registered")
	}
	return fn(ev, t), t.entries
}

// DetermineStatus applies the point thresholds and critical minimums.
func DetermineStatus(total int, scores map[BucketID]int, formDetected bool) Status {
	switch {
	case !formDetected || total < thresholdError:
		return StatusNoI9
	case total < thresholdPartial:
		return StatusError
	case total < thresholdComplete:
		return StatusPartial
	case !CriticalMet(scores):
		return StatusPartial
	default:
		return StatusComplete
	}
}

// CriticalMet reports whether the per-bucket minimums hold.
func CriticalMet(scores map[BucketID]int) bool {
	return scores[BucketFormDetection] >= criticalFormDetection &&
		scores[BucketPersonalData] >= criticalPersonalData &&
		scores[BucketBusinessRules] >= criticalBusinessRules
}

// ApplyCitizenshipOverride downgrades COMPLETE_SUCCESS when the record lacks
// what its citizenship requires. Unknown citizenship never qualifies.
func ApplyCitizenshipOverride(status Status, ev *Evaluation) (Status, string) {
	if status != StatusComplete {
		return status, ""
	}
	var missing []string
	for _, req := range []struct {
		cat  FieldCategory
		name string
	}{{FieldFirstName, "first name"}, {FieldLastName, "last name"}, {FieldDOB, "date of birth"}} {
		if !ev.has(req.cat) {
			missing = append(missing, req.name)
		}
	}
	if !AllAttached(ev.Attachments) {
		missing = append(missing, "attached documents")
	}

	switch ev.Citizenship {
	case CitizenshipUS:
	case CitizenshipNonUS:
		if !ev.Expiry.Matched {
			missing = append(missing, "matching work authorization expiry")
		}
	default:
		return StatusPartial, "citizenship could not be determined"
	}

	if len(missing) > 0 {
		return StatusPartial, fmt.Sprintf("%s record missing %s", ev.Citizenship, strings.Join(missing, ", "))
	}
	return status, ""
}

func bonus(ev *Evaluation) int {
	if ev.Selection == nil {
		return 0
	}
	switch ev.Selection.Form.Category {
	case CategorySupplementB:
		return 5
	case CategorySection3:
		return 3
	case CategorySection12:
		return 1
	default:
		return 0
	}
}

var personalCriteria = []struct {
	cat    FieldCategory
	field  string
	points int
}{
	{FieldFirstName, "first_name", 5},
	{FieldLastName, "last_name", 5},
	{FieldMiddleName, "middle_name", 3},
	{FieldDOB, "date_of_birth", 5},
	{FieldSSN, "ssn", 4},
	{FieldCitizenship, "citizenship", 3},
}

func scorePersonalData(ev *Evaluation, t *trail) int {
	total := 0
	for _, c := range personalCriteria {
		m, ok := ev.Personal[c.cat]
		if !ok || m.Value == "" {
			t.add(AuditEntry{Field: c.field, Rule: "field_resolver", Note: "no matching field"})
			continue
		}
		value := m.Value
		if c.cat == FieldSSN {
			value = MaskSSN(value)
		}
		t.add(AuditEntry{
			Field:       c.field,
			Value:       value,
			SourcePages: []int{m.Page},
			Rule:        "field_resolver:" + m.Pattern,
			Confidence:  m.Confidence,
			Points:      c.points,
			Note:        "key " + m.RawKey,
		})
		total += c.points
	}
	return total
}

func scoreFormDetection(ev *Evaluation, t *trail) int {
	var formPages, sec1, sec2, sec3 []int
	for _, pc := range ev.Classifications {
		if !pc.Category.IsForm() {
			continue
		}
		formPages = append(formPages, pc.PageNumber)
		if pc.Section1 {
			sec1 = append(sec1, pc.PageNumber)
		}
		if pc.Section2 {
			sec2 = append(sec2, pc.PageNumber)
		}
		if pc.Category == CategorySection3 || pc.Category == CategorySupplementB {
			sec3 = append(sec3, pc.PageNumber)
		}
	}

	total := 0
	for _, c := range []struct {
		field  string
		pages  []int
		points int
	}{
		{"i9_detected", formPages, 8},
		{"section_1_present", sec1, 4},
		{"section_2_present", sec2, 4},
		{"section_3_or_supplement_b_present", sec3, 4},
	} {
		e := AuditEntry{Field: c.field, SourcePages: c.pages, Rule: "page_classifier"}
		if len(c.pages) > 0 {
			e.Points, e.Confidence = c.points, 1
			total += c.points
		}
		t.add(e)
	}
	return total
}

func scoreBusinessRules(ev *Evaluation, t *trail) int {
	sel := ev.Selection
	if sel == nil {
		t.add(AuditEntry{Field: "selected_form", Rule: "form_selector", Note: "no I-9 form detected"})
		return 0
	}
	form := sel.Form
	total := 0

	priorityOK := Rank(form.Category) == Rank(WinningCategory(sel.Instances))
	t.add(AuditEntry{
		Field:       "selected_form",
		Value:       string(form.Category),
		SourcePages: form.PageNumbers(),
		Rule:        "category_priority",
		Confidence:  boolConfidence(priorityOK),
		Points:      pointsIf(priorityOK, 10),
	})
	total += pointsIf(priorityOK, 10)

	latestOK := true
	for _, inst := range sel.Instances {
		if inst.Category == form.Category && compareInstances(inst, form) > 0 {
			latestOK = false
		}
	}
	note := ""
	if sel.Ambiguous {
		note = "identical signature date and last page; first encountered kept"
	}
	t.add(AuditEntry{
		Field:       "signature_date",
		Value:       form.SignatureDate.String(),
		SourcePages: form.PageNumbers(),
		Rule:        "latest_signature:" + form.SignatureKey,
		Confidence:  boolConfidence(latestOK),
		Points:      pointsIf(latestOK, 8),
		Note:        note,
	})
	total += pointsIf(latestOK, 8)

	sec1 := ev.section1Pages()
	var sourced []int
	sourcingOK := false
	for _, c := range personalCriteria {
		if m, ok := ev.Personal[c.cat]; ok {
			sourced = append(sourced, m.Page)
		}
	}
	if len(sourced) > 0 {
		sourcingOK = true
		for _, p := range sourced {
			sourcingOK = sourcingOK && sec1[p]
		}
	}
	total += t.check("section_1_sourcing", 4, sourcingOK, "personal_data_from_section_1")
	total += t.check("document_sourcing", 3, ev.documentsScoped(), "documents_from_selected_form")
	return total
}

func scoreWorkAuthorization(ev *Evaluation, t *trail) int {
	total := 0
	for _, c := range []struct {
		field  string
		match  *FieldMatch
		points int
	}{
		{"work_auth_expiry", ev.WorkAuth, 8},
		{"document_expiry", ev.DocExpiry, 4},
	} {
		if c.match == nil {
			t.add(AuditEntry{Field: c.field, Rule: "field_resolver", Note: "no parseable date"})
			continue
		}
		t.add(AuditEntry{
			Field:       c.field,
			Value:       c.match.Value,
			SourcePages: []int{c.match.Page},
			Rule:        "field_resolver:" + c.match.Pattern,
			Confidence:  c.match.Confidence,
			Points:      c.points,
		})
		total += c.points
	}
	t.add(AuditEntry{
		Field:      "expiry_match",
		Value:      fmt.Sprintf("%s = %s", ev.Expiry.WorkAuthExpiry, ev.Expiry.DocumentExpiry),
		Rule:       "exact_date_equality",
		Confidence: boolConfidence(ev.Expiry.Matched),
		Points:     pointsIf(ev.Expiry.Matched, 3),
	})
	return total + pointsIf(ev.Expiry.Matched, 3)
}

func scoreDocumentTracking(ev *Evaluation, t *trail) int {
	var docs []DocumentRef
	if ev.Selection != nil {
		docs = ev.Selection.Form.Documents
	}
	paired := false
	for _, d := range docs {
		paired = paired || d.Number != ""
	}
	supporting := SupportingPages(ev.Classifications)
	var supportingPages []int
	for _, pc := range supporting {
		supportingPages = append(supportingPages, pc.PageNumber)
	}

	total := 0
	total += t.check("documents_scoped", 6, len(docs) > 0 && ev.documentsScoped(), "documents_from_selected_form")
	total += t.check("document_numbers_paired", 3, paired, "title_number_slot_pairing")
	total += pointsIf(len(supporting) > 0, 3)
	t.add(AuditEntry{
		Field:       "supporting_pages",
		SourcePages: supportingPages,
		Rule:        "page_classifier",
		Confidence:  boolConfidence(len(supporting) > 0),
		Points:      pointsIf(len(supporting) > 0, 3),
	})
	total += t.check("attachment_status", 3, len(docs) > 0 && len(ev.Attachments) == len(docs), "support_matcher")
	return total
}

// MaskSSN keeps the last four digits.
func MaskSSN(ssn string) string {
	var digits []rune
	for _, r := range ssn {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	if len(digits) < 4 {
		return "***"
	}
	return "***-**-" + string(digits[len(digits)-4:])
}

func pointsIf(ok bool, points int) int {
	if ok {
		return points
	}
	return 0
}

func boolConfidence(ok bool) float64 {
	if ok {
		return 1
	}
	return 0
}
