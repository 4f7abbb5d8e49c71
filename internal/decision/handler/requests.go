package handler

import (
	"strings"

	"i9score/internal/catalog"
	id "i9score/pkg/domain"
	dErrors "i9score/pkg/domain-errors"
)

// MaxPages bounds the catalog size accepted over HTTP.
const MaxPages = 500

// ScoreRequest is the HTTP request body for POST /decision/score. Pages may
// be sent bare or wrapped in a document_catalog object, matching the
// extractor's file format.
type ScoreRequest struct {
	DocumentID      string              `json:"document_id"`
	Pages           []catalog.PageInput `json:"pages"`
	DocumentCatalog *struct {
		Pages []catalog.PageInput `json:"pages"`
	} `json:"document_catalog"`

	// Parsed values (populated by Validate)
	parsedID id.DocumentID
}

// Validate validates and parses the request.
// Implements the Preparable interface for httputil.DecodeAndPrepare.
func (r *ScoreRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	if r.DocumentCatalog != nil {
		if len(r.Pages) > 0 {
			return dErrors.New(dErrors.CodeValidation, "send pages or document_catalog, not both")
		}
		r.Pages = r.DocumentCatalog.Pages
		r.DocumentCatalog = nil
	}

	// Size validation (fail fast)
	if len(r.Pages) > MaxPages {
		return dErrors.New(dErrors.CodeValidation, "too many pages")
	}

	r.DocumentID = strings.TrimSpace(r.DocumentID)
	if r.DocumentID == "" {
		return dErrors.New(dErrors.CodeValidation, "document_id is required")
	}
	docID, err := id.ParseDocumentID(r.DocumentID)
	if err != nil {
		return err
	}
	r.parsedID = docID

	for _, p := range r.Pages {
		if p.PageNumber < 0 {
			return dErrors.New(dErrors.CodeValidation, "page_number must not be negative")
		}
	}
	return nil
}

// Document converts the request to the engine's catalog document.
func (r *ScoreRequest) Document() catalog.Document {
	return catalog.FromInputs(string(r.parsedID), r.Pages)
}
