package handler

import (
	"time"

	"i9score/internal/decision"
	"i9score/pkg/platform/audit"
)

// ScoreResponse is the HTTP response for a single report.
type ScoreResponse struct {
	DocumentID      string                    `json:"document_id"`
	Status          string                    `json:"status"`
	Total           int                       `json:"total"`
	Bonus           int                       `json:"bonus"`
	BucketScores    map[decision.BucketID]int `json:"bucket_scores"`
	Citizenship     string                    `json:"citizenship"`
	FormType        string                    `json:"form_type,omitempty"`
	SignatureDate   string                    `json:"signature_date,omitempty"`
	SelectedPages   []int                     `json:"selected_pages,omitempty"`
	TieBreak        bool                      `json:"tie_break,omitempty"`
	PersonalData    decision.PersonalData     `json:"personal_data"`
	Documents       []decision.DocumentRef    `json:"documents"`
	Attachments     []decision.MatchResult    `json:"attachments"`
	Expiry          ExpiryResponse            `json:"expiry"`
	SupportingPages []int                     `json:"supporting_pages,omitempty"`
	Audit           []decision.AuditEntry     `json:"audit"`
	EvaluatedAt     time.Time                 `json:"evaluated_at"`
}

// ExpiryResponse is the expiry comparison portion of the response.
type ExpiryResponse struct {
	WorkAuthExpiry string `json:"work_auth_expiry,omitempty"`
	DocumentExpiry string `json:"document_expiry,omitempty"`
	Matched        bool   `json:"matched"`
}

// ReportSummaryResponse is one row of GET /decision/reports.
type ReportSummaryResponse struct {
	DocumentID string `json:"document_id"`
	Status     string `json:"status"`
	Total      int    `json:"total"`
	FormType   string `json:"form_type,omitempty"`
}

// ListResponse is the HTTP response for GET /decision/reports.
type ListResponse struct {
	Reports []ReportSummaryResponse `json:"reports"`
	Summary decision.Summary        `json:"summary"`
}

// FromReport converts a domain ScoreReport to an HTTP response.
func FromReport(report *decision.ScoreReport) *ScoreResponse {
	return &ScoreResponse{
		DocumentID:    report.DocumentID,
		Status:        string(report.Status),
		Total:         report.Total,
		Bonus:         report.Bonus,
		BucketScores:  report.BucketScores,
		Citizenship:   string(report.Citizenship),
		FormType:      string(report.FormType),
		SignatureDate: report.SignatureDate.String(),
		SelectedPages: report.SelectedPages,
		TieBreak:      report.TieBreak,
		PersonalData:  report.PersonalData,
		Documents:     report.Documents,
		Attachments:   report.Attachments,
		Expiry: ExpiryResponse{
			WorkAuthExpiry: report.Expiry.WorkAuthExpiry.String(),
			DocumentExpiry: report.Expiry.DocumentExpiry.String(),
			Matched:        report.Expiry.Matched,
		},
		SupportingPages: report.SupportingPages,
		Audit:           report.Audit,
		EvaluatedAt:     report.EvaluatedAt,
	}
}

// FromReports converts stored reports to the list response.
func FromReports(reports []*decision.ScoreReport) *ListResponse {
	rows := make([]ReportSummaryResponse, 0, len(reports))
	for _, r := range reports {
		rows = append(rows, ReportSummaryResponse{
			DocumentID: r.DocumentID,
			Status:     string(r.Status),
			Total:      r.Total,
			FormType:   string(r.FormType),
		})
	}
	return &ListResponse{Reports: rows, Summary: decision.Summarize(reports)}
}

// HistoryResponse is the HTTP response for GET /decision/reports/{id}/history.
type HistoryResponse struct {
	DocumentID string               `json:"document_id"`
	Runs       []HistoryRunResponse `json:"runs"`
}

// HistoryRunResponse is one stored run of a document.
type HistoryRunResponse struct {
	Status      string    `json:"status"`
	Total       int       `json:"total"`
	FormType    string    `json:"form_type,omitempty"`
	EvaluatedAt time.Time `json:"evaluated_at"`
}

func FromHistory(documentID string, runs []*decision.ScoreReport) *HistoryResponse {
	out := make([]HistoryRunResponse, 0, len(runs))
	for _, r := range runs {
		out = append(out, HistoryRunResponse{
			Status:      string(r.Status),
			Total:       r.Total,
			FormType:    string(r.FormType),
			EvaluatedAt: r.EvaluatedAt,
		})
	}
	return &HistoryResponse{DocumentID: documentID, Runs: out}
}

// EventsResponse is the HTTP response for GET /decision/reports/{id}/events.
type EventsResponse struct {
	DocumentID string          `json:"document_id"`
	Events     []EventResponse `json:"events"`
}

// EventResponse is one audit event.
type EventResponse struct {
	Action    string    `json:"action"`
	Category  string    `json:"category"`
	Timestamp time.Time `json:"timestamp"`
	RunID     string    `json:"run_id,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	Decision  string    `json:"decision,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Score     int       `json:"score"`
	FormType  string    `json:"form_type,omitempty"`
}

// FromEvents converts audit events to the HTTP response.
func FromEvents(documentID string, events []audit.Event) *EventsResponse {
	out := make([]EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, EventResponse{
			Action:    e.Action,
			Category:  string(e.Category),
			Timestamp: e.Timestamp,
			RunID:     e.RunID,
			RequestID: e.RequestID,
			Decision:  e.Decision,
			Reason:    e.Reason,
			Score:     e.Score,
			FormType:  e.FormType,
		})
	}
	return &EventsResponse{DocumentID: documentID, Events: out}
}
