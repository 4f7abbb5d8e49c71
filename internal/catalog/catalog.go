// Package catalog models the per-page field catalog produced by the external
// extraction step. Catalogs are read-only inputs to the scoring engine.
package catalog

import "sort"

// Page is one scanned page with the fields the extractor found on it.
type Page struct {
	Number int
	Title  string
	Fields map[string]string
}

// Document is the ordered page catalog for one employee record.
type Document struct {
	ID    string
	Pages []Page
}

// SortedPages returns the pages ordered by page number. Pages sharing a number
// keep catalog order.
func (d Document) SortedPages() []Page {
	pages := append([]Page(nil), d.Pages...)
	sort.SliceStable(pages, func(i, j int) bool {
		return pages[i].Number < pages[j].Number
	})
	return pages
}
