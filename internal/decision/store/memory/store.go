package memory

import (
	"context"
	"sort"
	"sync"

	"i9score/internal/decision"
	"i9score/pkg/platform/sentinel"
)

// InMemoryReportStore keeps reports for the life of the process. Used by the
// CLI and as the server default.
type InMemoryReportStore struct {
	mu      sync.RWMutex
	reports map[string]*decision.ScoreReport
	history map[string][]*decision.ScoreReport
}

var _ decision.HistoryStore = (*InMemoryReportStore)(nil)

func NewInMemoryReportStore() *InMemoryReportStore {
	return &InMemoryReportStore{
		reports: make(map[string]*decision.ScoreReport),
		history: make(map[string][]*decision.ScoreReport),
	}
}

// Save replaces any earlier report for the same document and appends it to
// the document's history.
func (s *InMemoryReportStore) Save(_ context.Context, report *decision.ScoreReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[report.DocumentID] = report
	s.history[report.DocumentID] = append(s.history[report.DocumentID], report)
	return nil
}

func (s *InMemoryReportStore) Get(_ context.Context, documentID string) (*decision.ScoreReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	report, ok := s.reports[documentID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return report, nil
}

func (s *InMemoryReportStore) List(_ context.Context) ([]*decision.ScoreReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*decision.ScoreReport, 0, len(s.reports))
	for _, r := range s.reports {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DocumentID < out[j].DocumentID })
	return out, nil
}

// History returns every saved run of a document, oldest first.
func (s *InMemoryReportStore) History(_ context.Context, documentID string) ([]*decision.ScoreReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*decision.ScoreReport(nil), s.history[documentID]...), nil
}
