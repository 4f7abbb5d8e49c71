// Package taxonomy is the read-only index of I-9 acceptable documents and form
// markers. It is built once and shared; every method is safe for concurrent use.
package taxonomy

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"regexp"

	dErrors "i9score/pkg/domain-errors"
	pstrings "i9score/pkg/platform/strings"
)

// ListType is the I-9 acceptable-documents list an entry belongs to.
type ListType string

const (
	ListA ListType = "list_a"
	ListB ListType = "list_b"
	ListC ListType = "list_c"
)

// FormKind names a part of Form I-9 recognizable from a page title.
type FormKind string

const (
	FormI9          FormKind = "i9"
	FormSection1    FormKind = "section_1"
	FormSection2    FormKind = "section_2"
	FormSection3    FormKind = "section_3"
	FormSupplementB FormKind = "supplement_b"
)

// Entry is one canonical acceptable document.
type Entry struct {
	Key         string   `json:"key"`
	Canonical   string   `json:"canonical_name"`
	List        ListType `json:"list"`
	Expires     bool     `json:"expires"`
	Identifiers []string `json:"identifiers"`
	Variations  []string `json:"variations"`
	// FormNumbers are regular expressions over normalized text, e.g. `\bi 551\b`.
	FormNumbers []string `json:"form_numbers"`
}

// Form lists the title markers for one form kind.
type Form struct {
	Kind    FormKind `json:"kind"`
	Markers []string `json:"markers"`
}

// Definition is the serialized taxonomy.
type Definition struct {
	Documents []Entry `json:"documents"`
	Forms     []Form  `json:"forms"`
}

//go:embed default_taxonomy.json
var defaultDefinition []byte

type numberPattern struct {
	re    *regexp.Regexp
	entry int
}

type term struct {
	text  string
	words map[string]struct{}
	entry int
}

// Taxonomy indexes a Definition for matching.
type Taxonomy struct {
	entries  []Entry
	exact    map[string]int
	patterns []numberPattern
	terms    []term
	markers  map[FormKind][]string
}

// New validates def and builds the lookup indexes.
func New(def Definition) (*Taxonomy, error) {
	t := &Taxonomy{
		entries: make([]Entry, 0, len(def.Documents)),
		exact:   make(map[string]int),
		markers: make(map[FormKind][]string, len(def.Forms)),
	}

	for _, e := range def.Documents {
		if e.Key == "" || e.Canonical == "" {
			return nil, dErrors.New(dErrors.CodeValidation, "taxonomy entry requires key and canonical_name")
		}
		switch e.List {
		case ListA, ListB, ListC:
		default:
			return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("taxonomy entry %s has unknown list %q", e.Key, e.List))
		}
		idx := len(t.entries)
		t.entries = append(t.entries, e)

		names := append([]string{e.Canonical}, e.Identifiers...)
		names = append(names, e.Variations...)
		for _, name := range pstrings.DedupeAndTrimLower(names) {
			text := pstrings.NormalizeText(name)
			if text == "" {
				continue
			}
			// first definition wins so earlier, more specific entries keep their names
			if _, taken := t.exact[text]; !taken {
				t.exact[text] = idx
			}
			t.terms = append(t.terms, term{text: text, words: wordSet(text), entry: idx})
		}
		for _, expr := range e.FormNumbers {
			re, err := regexp.Compile(expr)
			if err != nil {
				return nil, dErrors.Wrap(err, dErrors.CodeValidation, fmt.Sprintf("taxonomy entry %s has invalid form number pattern", e.Key))
			}
			t.patterns = append(t.patterns, numberPattern{re: re, entry: idx})
		}
	}

	for _, f := range def.Forms {
		for _, m := range pstrings.DedupeAndTrimLower(f.Markers) {
			if text := pstrings.NormalizeText(m); text != "" {
				t.markers[f.Kind] = append(t.markers[f.Kind], text)
			}
		}
	}
	return t, nil
}

// Parse decodes a JSON Definition and indexes it.
func Parse(data []byte) (*Taxonomy, error) {
	var def Definition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "decode taxonomy")
	}
	return New(def)
}

// Load reads a taxonomy file.
func Load(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeNotFound, fmt.Sprintf("read taxonomy %s", path))
	}
	return Parse(data)
}

// Default returns the taxonomy shipped with the binary.
func Default() (*Taxonomy, error) {
	return Parse(defaultDefinition)
}

// Len reports the number of document entries.
func (t *Taxonomy) Len() int { return len(t.entries) }

// TitleHasMarker reports whether a page title carries any marker of kind.
func (t *Taxonomy) TitleHasMarker(kind FormKind, title string) bool {
	text := pstrings.NormalizeText(title)
	if text == "" {
		return false
	}
	for _, m := range t.markers[kind] {
		if pstrings.ContainsPhrase(text, m, " ") {
			return true
		}
	}
	return false
}

func wordSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range splitWords(text) {
		set[w] = struct{}{}
	}
	return set
}
