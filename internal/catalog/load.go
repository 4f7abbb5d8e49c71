package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	dErrors "i9score/pkg/domain-errors"
)

// PageInput is one page as the extractor writes it.
type PageInput struct {
	PageNumber      int                        `json:"page_number"`
	PageTitle       string                     `json:"page_title"`
	Title           string                     `json:"title,omitempty"`
	ExtractedValues map[string]json.RawMessage `json:"extracted_values"`
}

type rawCatalog struct {
	DocumentCatalog *struct {
		Pages []PageInput `json:"pages"`
	} `json:"document_catalog"`
	Pages []PageInput `json:"pages"`
}

// Decode reads a catalog in either the wrapped {"document_catalog":{...}} form
// or the bare {"pages":[...]} form.
func Decode(id string, r io.Reader) (Document, error) {
	var raw rawCatalog
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return Document{}, dErrors.Wrap(err, dErrors.CodeInvalidInput, "decode catalog")
	}

	pages := raw.Pages
	if raw.DocumentCatalog != nil {
		pages = raw.DocumentCatalog.Pages
	}
	return FromInputs(id, pages), nil
}

// FromInputs builds a document from extractor pages. A missing page number
// falls back to the page's 1-based position.
func FromInputs(id string, pages []PageInput) Document {
	doc := Document{ID: id, Pages: make([]Page, 0, len(pages))}
	for i, rp := range pages {
		number := rp.PageNumber
		if number == 0 {
			number = i + 1
		}
		title := rp.PageTitle
		if title == "" {
			title = rp.Title
		}
		fields := make(map[string]string, len(rp.ExtractedValues))
		for key, value := range rp.ExtractedValues {
			fields[key] = stringify(value)
		}
		doc.Pages = append(doc.Pages, Page{Number: number, Title: title, Fields: fields})
	}
	return doc
}

// stringify flattens a JSON scalar to its text form. null becomes "".
func stringify(value json.RawMessage) string {
	var s string
	if err := json.Unmarshal(value, &s); err == nil {
		return s
	}
	var f float64
	if err := json.Unmarshal(value, &f); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	var b bool
	if err := json.Unmarshal(value, &b); err == nil {
		return strconv.FormatBool(b)
	}
	text := strings.TrimSpace(string(value))
	if text == "null" {
		return ""
	}
	return text
}

// DocumentID derives the document identifier from a catalog file name,
// dropping the extension and a trailing ".catalog".
func DocumentID(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.TrimSuffix(base, ".catalog")
}

// Load reads one catalog file.
func Load(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, dErrors.Wrap(err, dErrors.CodeNotFound, fmt.Sprintf("open catalog %s", path))
	}
	defer f.Close()
	return Decode(DocumentID(path), f)
}

// Paths expands files and directories into the sorted list of catalog files.
// Directories contribute their *.json entries, non-recursively.
func Paths(inputs ...string) ([]string, error) {
	var out []string
	for _, in := range inputs {
		info, err := os.Stat(in)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeNotFound, fmt.Sprintf("stat %s", in))
		}
		if !info.IsDir() {
			out = append(out, in)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(in, "*.json"))
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, fmt.Sprintf("scan %s", in))
		}
		out = append(out, matches...)
	}
	sort.Strings(out)
	return out, nil
}
