package decision

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"strings"
)

// CSVHeader lists the flat report columns in output order.
var CSVHeader = []string{
	"document_id", "status", "total", "bonus",
	"personal_data", "form_detection", "business_rules", "work_authorization", "document_tracking",
	"form_type_selected", "selected_pages", "signature_date",
	"first_name", "middle_name", "last_name", "ssn", "date_of_birth", "citizenship_status",
	"authorized_to_work_until", "document_expiry", "expiry_date_matches",
	"documents_listed", "documents_found", "documents_not_found", "supporting_documents_count",
	"tie_break", "error",
}

// Row projects a report onto CSVHeader. The SSN is already masked.
func (r *ScoreReport) Row() []string {
	var listed, found, missing []string
	for _, d := range r.Documents {
		listed = append(listed, d.Title)
	}
	for _, m := range r.Attachments {
		if m.Attached {
			found = append(found, m.DocumentTitle)
		} else {
			missing = append(missing, m.DocumentTitle)
		}
	}
	pages := make([]string, 0, len(r.SelectedPages))
	for _, p := range r.SelectedPages {
		pages = append(pages, strconv.Itoa(p))
	}

	row := []string{r.DocumentID, string(r.Status), strconv.Itoa(r.Total), strconv.Itoa(r.Bonus)}
	for _, b := range Buckets {
		row = append(row, strconv.Itoa(r.BucketScores[b]))
	}
	return append(row,
		string(r.FormType),
		strings.Join(pages, " "),
		r.SignatureDate.String(),
		r.PersonalData.FirstName,
		r.PersonalData.MiddleName,
		r.PersonalData.LastName,
		r.PersonalData.SSN,
		r.PersonalData.DateOfBirth,
		string(r.Citizenship),
		r.Expiry.WorkAuthExpiry.String(),
		r.Expiry.DocumentExpiry.String(),
		strconv.FormatBool(r.Expiry.Matched),
		strings.Join(listed, "; "),
		strings.Join(found, "; "),
		strings.Join(missing, "; "),
		strconv.Itoa(len(r.SupportingPages)),
		strconv.FormatBool(r.TieBreak),
		"",
	)
}

// failedRow fills only the identity, status and error columns.
func failedRow(res BatchResult) []string {
	row := make([]string, len(CSVHeader))
	row[0] = res.DocumentID
	row[1] = string(StatusError)
	msg := ""
	if res.Err != nil {
		msg = res.Err.Error()
	}
	if res.Stage != "" {
		msg = res.Stage + ": " + msg
	}
	row[len(row)-1] = msg
	return row
}

// WriteCSV writes one row per batch result. Failed documents get an ERROR
// row with the failing stage.
func WriteCSV(w io.Writer, results []BatchResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, res := range results {
		row := failedRow(res)
		if res.Report != nil {
			row = res.Report.Row()
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// AuditRecord is the per-document JSON projection: the verdict plus the
// audit trail that produced it.
type AuditRecord struct {
	DocumentID string       `json:"document_id"`
	Status     Status       `json:"status"`
	Total      int          `json:"total,omitempty"`
	Stage      string       `json:"stage,omitempty"`
	Error      string       `json:"error,omitempty"`
	Report     *ScoreReport `json:"report,omitempty"`
}

// BatchOutput is the JSON document written for a batch run.
type BatchOutput struct {
	RunID     string        `json:"run_id,omitempty"`
	Documents []AuditRecord `json:"documents"`
	Summary   Summary       `json:"summary"`
}

// NewBatchOutput projects batch results for JSON output.
func NewBatchOutput(runID string, results []BatchResult, summary Summary) BatchOutput {
	out := BatchOutput{RunID: runID, Documents: make([]AuditRecord, 0, len(results)), Summary: summary}
	for _, res := range results {
		rec := AuditRecord{DocumentID: res.DocumentID, Report: res.Report}
		if res.Report != nil {
			rec.Status = res.Report.Status
			rec.Total = res.Report.Total
		} else {
			rec.Status = StatusError
			rec.Stage = res.Stage
			if res.Err != nil {
				rec.Error = res.Err.Error()
			}
		}
		out.Documents = append(out.Documents, rec)
	}
	return out
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
