package decision

// Summary aggregates a batch of reports.
type Summary struct {
	Documents    int            `json:"documents"`
	ByStatus     map[Status]int `json:"by_status"`
	ByFormType   map[string]int `json:"by_form_type"`
	AverageScore float64        `json:"average_score"`
	MinScore     int            `json:"min_score"`
	MaxScore     int            `json:"max_score"`
}

// NoFormType labels reports without a selected form in ByFormType.
const NoFormType = "none"

// Summarize counts statuses and form types and computes score statistics.
// Nil reports (documents that failed before scoring) are skipped.
func Summarize(reports []*ScoreReport) Summary {
	s := Summary{ByStatus: map[Status]int{}, ByFormType: map[string]int{}}
	sum := 0
	for _, r := range reports {
		if r == nil {
			continue
		}
		if s.Documents == 0 || r.Total < s.MinScore {
			s.MinScore = r.Total
		}
		if s.Documents == 0 || r.Total > s.MaxScore {
			s.MaxScore = r.Total
		}
		s.Documents++
		sum += r.Total
		s.ByStatus[r.Status]++
		form := string(r.FormType)
		if form == "" {
			form = NoFormType
		}
		s.ByFormType[form]++
	}
	if s.Documents > 0 {
		s.AverageScore = float64(sum) / float64(s.Documents)
	}
	return s
}
