package memory

import (
	"context"
	"sync"

	audit "i9score/pkg/platform/audit"
)

// InMemoryStore keeps events per document for replay. Batch events have no
// document ID and are kept under "".
type InMemoryStore struct {
	mu     sync.RWMutex
	events map[string][]audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[string][]audit.Event)}
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.DocumentID] = append(s.events[event.DocumentID], event)
	return nil
}

func (s *InMemoryStore) ListByDocument(_ context.Context, documentID string) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event{}, s.events[documentID]...), nil
}
