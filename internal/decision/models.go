package decision

import (
	"time"

	"i9score/internal/catalog"
)

// FieldCategory is a semantic class of extracted field.
type FieldCategory string

const (
	FieldSignatureDate  FieldCategory = "signature_date"
	FieldDocumentTitle  FieldCategory = "document_title"
	FieldDocumentNumber FieldCategory = "document_number"
	FieldExpiryDate     FieldCategory = "expiry_date"
	FieldWorkAuthExpiry FieldCategory = "work_auth_expiry"
	FieldFirstName      FieldCategory = "first_name"
	FieldLastName       FieldCategory = "last_name"
	FieldMiddleName     FieldCategory = "middle_name"
	FieldDOB            FieldCategory = "dob"
	FieldSSN            FieldCategory = "ssn"
	FieldCitizenship    FieldCategory = "citizenship"
)

// FieldMatch is one extracted field accepted for a category.
type FieldMatch struct {
	Category   FieldCategory `json:"category"`
	RawKey     string        `json:"raw_key"`
	Value      string        `json:"value"`
	Confidence float64       `json:"confidence"`
	Pattern    string        `json:"pattern"`
	Page       int           `json:"page,omitempty"`
}

// FormCategory is the classification of a page.
type FormCategory string

const (
	CategorySupplementB FormCategory = "supplement_b"
	CategorySection3    FormCategory = "section3"
	CategorySection12   FormCategory = "section1_2"
	CategorySupporting  FormCategory = "supporting"
	CategoryUnknown     FormCategory = "unknown"
)

// IsForm reports whether the category is a part of Form I-9.
func (c FormCategory) IsForm() bool {
	return Rank(c) > 0
}

// Rank orders form categories by authority. Higher wins; non-form
// categories rank zero.
func Rank(c FormCategory) int {
	switch c {
	case CategorySupplementB:
		return 3
	case CategorySection3:
		return 2
	case CategorySection12:
		return 1
	default:
		return 0
	}
}

// PageClassification is the classifier's verdict for one page.
type PageClassification struct {
	Page       catalog.Page `json:"-"`
	PageNumber int          `json:"page"`
	Category   FormCategory `json:"category"`
	Confidence float64      `json:"confidence"`
	Rule       string       `json:"rule"`
	// Section1 and Section2 record which Form I-9 sections the page carries.
	Section1 bool `json:"section_1,omitempty"`
	Section2 bool `json:"section_2,omitempty"`
}

// DocumentRef is a document listed on a form, with its paired number and expiry.
type DocumentRef struct {
	Title    string `json:"title"`
	Number   string `json:"number,omitempty"`
	Expiry   string `json:"expiry,omitempty"`
	Page     int    `json:"page"`
	TitleKey string `json:"title_key"`
}

// FormInstance is one occurrence of a form category, possibly spanning pages.
type FormInstance struct {
	Category      FormCategory   `json:"category"`
	Pages         []catalog.Page `json:"-"`
	SignatureDate catalog.Date   `json:"signature_date"`
	SignatureKey  string         `json:"signature_key,omitempty"`
	Documents     []DocumentRef  `json:"documents"`
}

// PageNumbers lists the instance's pages in order.
func (f FormInstance) PageNumbers() []int {
	out := make([]int, 0, len(f.Pages))
	for _, p := range f.Pages {
		out = append(out, p.Number)
	}
	return out
}

// LastPage is the highest page number in the instance.
func (f FormInstance) LastPage() int {
	last := 0
	for _, p := range f.Pages {
		last = max(last, p.Number)
	}
	return last
}

// Contains reports whether the page belongs to the instance.
func (f FormInstance) Contains(page int) bool {
	for _, p := range f.Pages {
		if p.Number == page {
			return true
		}
	}
	return false
}

// Selection is the Form Selector's result.
type Selection struct {
	Form      FormInstance
	Instances []FormInstance
	// Ambiguous is set when two candidates tied on date and last page.
	Ambiguous bool
}

// MatchResult is the attachment verdict for one listed document.
type MatchResult struct {
	DocumentTitle string `json:"document_title"`
	Canonical     string `json:"canonical,omitempty"`
	MatchLevel    string `json:"match_level,omitempty"`
	Attached      bool   `json:"attached"`
	MatchingPage  *int   `json:"matching_page,omitempty"`
}

// ExpiryMatchResult compares work authorization and document expiry.
type ExpiryMatchResult struct {
	WorkAuthExpiry catalog.Date `json:"work_auth_expiry"`
	DocumentExpiry catalog.Date `json:"document_expiry"`
	Matched        bool         `json:"matched"`
}

// Citizenship is the attested status used by the completeness override.
type Citizenship string

const (
	CitizenshipUS      Citizenship = "us_citizen"
	CitizenshipNonUS   Citizenship = "non_citizen"
	CitizenshipUnknown Citizenship = "unknown"
)

// Status is the final compliance verdict.
type Status string

const (
	StatusComplete Status = "COMPLETE_SUCCESS"
	StatusPartial  Status = "PARTIAL_SUCCESS"
	StatusError    Status = "ERROR"
	StatusNoI9     Status = "NO_I9_FOUND"
)

// BucketID names a rubric bucket.
type BucketID string

const (
	BucketPersonalData      BucketID = "personal_data"
	BucketFormDetection     BucketID = "form_detection"
	BucketBusinessRules     BucketID = "business_rules"
	BucketWorkAuthorization BucketID = "work_authorization"
	BucketDocumentTracking  BucketID = "document_tracking"
)

// Buckets lists rubric buckets in scoring order.
var Buckets = []BucketID{
	BucketPersonalData,
	BucketFormDetection,
	BucketBusinessRules,
	BucketWorkAuthorization,
	BucketDocumentTracking,
}

// PersonalData holds the resolved Section 1 values.
type PersonalData struct {
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	MiddleName  string `json:"middle_name,omitempty"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
	SSN         string `json:"ssn,omitempty"`
	Citizenship string `json:"citizenship,omitempty"`
}

// AuditEntry records how one scored field was resolved.
type AuditEntry struct {
	Field       string   `json:"field"`
	Value       string   `json:"value,omitempty"`
	SourcePages []int    `json:"source_pages,omitempty"`
	Rule        string   `json:"rule"`
	Confidence  float64  `json:"confidence"`
	Bucket      BucketID `json:"bucket,omitempty"`
	Points      int      `json:"points"`
	Note        string   `json:"note,omitempty"`
}

// ScoreReport is the immutable outcome for one document.
type ScoreReport struct {
	DocumentID      string               `json:"document_id"`
	BucketScores    map[BucketID]int     `json:"bucket_scores"`
	Bonus           int                  `json:"bonus"`
	Total           int                  `json:"total"`
	Status          Status               `json:"status"`
	Citizenship     Citizenship          `json:"citizenship"`
	FormType        FormCategory         `json:"form_type,omitempty"`
	SignatureDate   catalog.Date         `json:"signature_date"`
	SelectedPages   []int                `json:"selected_pages,omitempty"`
	TieBreak        bool                 `json:"tie_break,omitempty"`
	PersonalData    PersonalData         `json:"personal_data"`
	Documents       []DocumentRef        `json:"documents"`
	Attachments     []MatchResult        `json:"attachments"`
	Expiry          ExpiryMatchResult    `json:"expiry"`
	SupportingPages []int                `json:"supporting_pages,omitempty"`
	Classifications []PageClassification `json:"classifications"`
	Audit           []AuditEntry         `json:"audit"`
	EvaluatedAt     time.Time            `json:"evaluated_at"`
}

// AllAttached reports whether every listed document was found among the
// supporting pages.
func (r *ScoreReport) AllAttached() bool {
	return AllAttached(r.Attachments)
}
