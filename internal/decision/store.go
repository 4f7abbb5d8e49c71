package decision

import "context"

// Store persists score reports so they can be fetched after scoring. Swap with
// concrete storage without touching the service.
//
// Get returns sentinel.ErrNotFound for unknown document IDs. List orders
// reports by document ID.
type Store interface {
	Save(ctx context.Context, report *ScoreReport) error
	Get(ctx context.Context, documentID string) (*ScoreReport, error)
	List(ctx context.Context) ([]*ScoreReport, error)
}

// HistoryStore is implemented by stores that keep every run of a document,
// not only the latest. History returns the runs oldest first.
type HistoryStore interface {
	History(ctx context.Context, documentID string) ([]*ScoreReport, error)
}
