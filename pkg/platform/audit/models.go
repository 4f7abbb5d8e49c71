package audit

import (
	"context"
	"time"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies and routing.
type EventCategory string

const (
	// CategoryCompliance covers per-document decisions. These are the record
	// an auditor replays, so they are never sampled.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers batch bookkeeping useful for operational
	// visibility.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from the scoring service to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category   EventCategory `json:"category"`
	Timestamp  time.Time     `json:"timestamp"`
	Action     string        `json:"action"`
	DocumentID string        `json:"document_id,omitempty"`
	// RunID groups the events of one batch run.
	RunID    string `json:"run_id,omitempty"`
	Decision string `json:"decision,omitempty"` // final status for document events
	Reason   string `json:"reason,omitempty"`
	Score    int    `json:"score"`
	FormType string `json:"form_type,omitempty"`
	// RequestID is the correlation ID from the HTTP request context, when any.
	RequestID string `json:"request_id,omitempty"`
}

type AuditEvent string

const (
	EventDocumentScored AuditEvent = "document_scored"
	EventDocumentFailed AuditEvent = "document_failed"
	EventBatchCompleted AuditEvent = "batch_completed"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventDocumentScored: CategoryCompliance,
	EventDocumentFailed: CategoryCompliance,
	EventBatchCompleted: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Sink persists or forwards audit events.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// Store is a Sink that can also replay events per document.
type Store interface {
	Sink
	ListByDocument(ctx context.Context, documentID string) ([]Event, error)
}
