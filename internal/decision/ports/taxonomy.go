package ports

// TaxonomyPort is the read-only document and form lookup the engine consumes.
// It lets the classifier and support matcher compare canonical identities
// without depending on how the taxonomy is stored or loaded.
type TaxonomyPort interface {
	// TitleHasMarker reports whether a page title carries a marker of kind.
	TitleHasMarker(kind FormKind, title string) bool

	// ResolveDocument maps a free-text document reference to its canonical
	// identity. ok is false when nothing in the taxonomy corresponds.
	ResolveDocument(text string) (identity DocumentIdentity, ok bool)
}

// FormKind names a recognizable part of Form I-9 (port model).
type FormKind string

const (
	FormI9          FormKind = "i9"
	FormSection1    FormKind = "section_1"
	FormSection2    FormKind = "section_2"
	FormSection3    FormKind = "section_3"
	FormSupplementB FormKind = "supplement_b"
)

// DocumentIdentity is a canonical acceptable document (port model).
type DocumentIdentity struct {
	Key        string
	Canonical  string
	List       string
	Expires    bool
	Confidence float64
	// Level buckets Confidence as high, medium or low.
	Level    string
	Strategy string
}
