package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"i9score/internal/decision"
	"i9score/pkg/platform/sentinel"
	"i9score/pkg/platform/tx"
)

const schema = `
CREATE TABLE IF NOT EXISTS score_reports (
	document_id  TEXT PRIMARY KEY,
	status       TEXT NOT NULL,
	form_type    TEXT NOT NULL DEFAULT '',
	total        INTEGER NOT NULL,
	evaluated_at TIMESTAMPTZ NOT NULL,
	report       JSONB NOT NULL
);
CREATE TABLE IF NOT EXISTS score_report_history (
	id           BIGSERIAL PRIMARY KEY,
	document_id  TEXT NOT NULL,
	status       TEXT NOT NULL,
	total        INTEGER NOT NULL,
	evaluated_at TIMESTAMPTZ NOT NULL,
	report       JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS score_report_history_document_idx ON score_report_history (document_id, id)`

// ReportStore keeps the latest report per document plus an append-only
// history of every scoring run. The summary columns allow reporting queries
// without decoding the JSON.
type ReportStore struct {
	pool *pgxpool.Pool
}

var _ decision.HistoryStore = (*ReportStore)(nil)

func New(pool *pgxpool.Pool) *ReportStore {
	return &ReportStore{pool: pool}
}

// EnsureSchema creates the reports table if it does not exist.
func (s *ReportStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, schema)
	return err
}

// Save upserts the latest report and appends it to the history in one
// transaction.
func (s *ReportStore) Save(ctx context.Context, report *decision.ScoreReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}
	return tx.Run(ctx, s.pool, func(ctx context.Context) error {
		q := tx.QuerierFrom(ctx, s.pool)
		if _, err := q.Exec(ctx, `
		INSERT INTO score_reports (document_id, status, form_type, total, evaluated_at, report)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (document_id) DO UPDATE SET
			status = EXCLUDED.status,
			form_type = EXCLUDED.form_type,
			total = EXCLUDED.total,
			evaluated_at = EXCLUDED.evaluated_at,
			report = EXCLUDED.report`,
			report.DocumentID, string(report.Status), string(report.FormType), report.Total, report.EvaluatedAt, data,
		); err != nil {
			return err
		}
		_, err := q.Exec(ctx, `
			INSERT INTO score_report_history (document_id, status, total, evaluated_at, report)
			VALUES ($1, $2, $3, $4, $5)`,
			report.DocumentID, string(report.Status), report.Total, report.EvaluatedAt, data,
		)
		return err
	})
}

func (s *ReportStore) Get(ctx context.Context, documentID string) (*decision.ScoreReport, error) {
	var data []byte
	err := tx.QuerierFrom(ctx, s.pool).QueryRow(ctx, `SELECT report FROM score_reports WHERE document_id = $1`, documentID).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var report decision.ScoreReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (s *ReportStore) List(ctx context.Context) ([]*decision.ScoreReport, error) {
	return s.query(ctx, `SELECT report FROM score_reports ORDER BY document_id`)
}

// History returns every stored run for a document, oldest first.
func (s *ReportStore) History(ctx context.Context, documentID string) ([]*decision.ScoreReport, error) {
	return s.query(ctx, `SELECT report FROM score_report_history WHERE document_id = $1 ORDER BY id`, documentID)
}

func (s *ReportStore) query(ctx context.Context, sql string, args ...any) ([]*decision.ScoreReport, error) {
	rows, err := tx.QuerierFrom(ctx, s.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*decision.ScoreReport
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var report decision.ScoreReport
		if err := json.Unmarshal(data, &report); err != nil {
			return nil, err
		}
		out = append(out, &report)
	}
	return out, rows.Err()
}
