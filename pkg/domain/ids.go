package domain

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	dErrors "i9score/pkg/domain-errors"
)

// MaxDocumentIDLength bounds document IDs accepted at trust boundaries.
const MaxDocumentIDLength = 128

// RunID identifies one batch run. All audit events of a batch share it.
type RunID uuid.UUID

// DocumentID names one scored document catalog, usually its file stem.
type DocumentID string

// NewRunID returns a fresh random run ID.
func NewRunID() RunID {
	return RunID(uuid.New())
}

// ParseRunID parses a canonical UUID string. Nil UUIDs are rejected.
func ParseRunID(s string) (RunID, error) {
	if s == "" {
		return RunID{}, dErrors.New(dErrors.CodeInvalidInput, "run ID is required")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return RunID{}, dErrors.New(dErrors.CodeInvalidInput, "invalid run ID")
	}
	if parsed == uuid.Nil {
		return RunID{}, dErrors.New(dErrors.CodeInvalidInput, "run ID must not be nil")
	}
	return RunID(parsed), nil
}

func (id RunID) String() string { return uuid.UUID(id).String() }

func (id RunID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// ParseDocumentID accepts letters, digits, inner spaces, '.', '_' and '-'.
func ParseDocumentID(s string) (DocumentID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "document ID is required")
	}
	if !utf8.ValidString(s) || len(s) > MaxDocumentIDLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid document ID")
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '.' || r == '_' || r == '-' || r == ' ':
		default:
			return "", dErrors.New(dErrors.CodeInvalidInput, "document ID contains invalid characters")
		}
	}
	return DocumentID(s), nil
}

func (id DocumentID) String() string { return string(id) }
