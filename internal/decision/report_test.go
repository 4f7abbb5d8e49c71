package decision

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"i9score/internal/catalog"
)

func reportForRow() *ScoreReport {
	page := 5
	return &ScoreReport{
		DocumentID: "emp-1",
		Status:     StatusComplete,
		Total:      94,
		Bonus:      1,
		BucketScores: map[BucketID]int{
			BucketPersonalData:      25,
			BucketFormDetection:     16,
			BucketBusinessRules:     25,
			BucketWorkAuthorization: 12,
			BucketDocumentTracking:  15,
		},
		FormType:      CategorySection12,
		SelectedPages: []int{1, 2},
		SignatureDate: catalog.NewDate(2022, time.January, 7),
		Citizenship:   CitizenshipNonUS,
		PersonalData:  PersonalData{FirstName: "Ana", LastName: "Silva", SSN: "***-**-1234"},
		Expiry: ExpiryMatchResult{
			WorkAuthExpiry: catalog.NewDate(2029, time.April, 2),
			DocumentExpiry: catalog.NewDate(2029, time.April, 2),
			Matched:        true,
		},
		Documents: []DocumentRef{{Title: "Green Card"}, {Title: "Gym Membership"}},
		Attachments: []MatchResult{
			{DocumentTitle: "Green Card", Attached: true, MatchingPage: &page},
			{DocumentTitle: "Gym Membership"},
		},
		SupportingPages: []int{5, 6},
	}
}

func column(row []string, name string) string {
	for i, h := range CSVHeader {
		if h == name {
			return row[i]
		}
	}
	return "<missing column " + name + ">"
}

func TestRowProjection(t *testing.T) {
	row := reportForRow().Row()
	require.Len(t, row, len(CSVHeader))

	assert.Equal(t, "emp-1", column(row, "document_id"))
	assert.Equal(t, "COMPLETE_SUCCESS", column(row, "status"))
	assert.Equal(t, "94", column(row, "total"))
	assert.Equal(t, "12", column(row, "work_authorization"))
	assert.Equal(t, "1 2", column(row, "selected_pages"))
	assert.Equal(t, "01/07/2022", column(row, "signature_date"))
	assert.Equal(t, "***-**-1234", column(row, "ssn"))
	assert.Equal(t, "04/02/2029", column(row, "authorized_to_work_until"))
	assert.Equal(t, "true", column(row, "expiry_date_matches"))
	assert.Equal(t, "Green Card; Gym Membership", column(row, "documents_listed"))
	assert.Equal(t, "Green Card", column(row, "documents_found"))
	assert.Equal(t, "Gym Membership", column(row, "documents_not_found"))
	assert.Equal(t, "2", column(row, "supporting_documents_count"))
	assert.Equal(t, "", column(row, "error"))
}

func TestWriteCSVIncludesFailures(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, []BatchResult{
		{DocumentID: "emp-1", Report: reportForRow()},
		{DocumentID: "emp-2", Err: errors.New("decode catalog"), Stage: StageLoad},
	})
	require.NoError(t, err)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, CSVHeader, records[0])
	assert.Equal(t, "emp-1", records[1][0])
	assert.Equal(t, "emp-2", column(records[2], "document_id"))
	assert.Equal(t, "ERROR", column(records[2], "status"))
	assert.Equal(t, "load: decode catalog", column(records[2], "error"))
}

func TestBatchOutputJSON(t *testing.T) {
	results := []BatchResult{
		{DocumentID: "emp-1", Report: reportForRow()},
		{DocumentID: "emp-2", Err: errors.New("store down"), Stage: StageStore},
	}
	out := NewBatchOutput("run-1", results, Summarize([]*ScoreReport{results[0].Report, nil}))

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, out))

	var decoded struct {
		RunID     string `json:"run_id"`
		Documents []struct {
			DocumentID string `json:"document_id"`
			Status     string `json:"status"`
			Stage      string `json:"stage"`
			Error      string `json:"error"`
			Report     *struct {
				Total int `json:"total"`
			} `json:"report"`
		} `json:"documents"`
		Summary Summary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "run-1", decoded.RunID)
	require.Len(t, decoded.Documents, 2)
	require.NotNil(t, decoded.Documents[0].Report)
	assert.Equal(t, 94, decoded.Documents[0].Report.Total)
	assert.Equal(t, "ERROR", decoded.Documents[1].Status)
	assert.Equal(t, "store", decoded.Documents[1].Stage)
	assert.Equal(t, "store down", decoded.Documents[1].Error)
	assert.Nil(t, decoded.Documents[1].Report)
	assert.Equal(t, 1, decoded.Summary.Documents)
}
