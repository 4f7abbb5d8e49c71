package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"i9score/internal/decision"
	"i9score/pkg/platform/sentinel"
)

const (
	keyPrefix = "i9score:report:"
	indexKey  = "i9score:reports"
)

// ReportStore caches score reports in Redis as JSON. A set indexes the
// document IDs so List does not need SCAN.
type ReportStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// New builds a store. A zero ttl keeps reports until overwritten.
func New(client redis.UniversalClient, ttl time.Duration) *ReportStore {
	return &ReportStore{client: client, ttl: ttl}
}

func reportKey(documentID string) string {
	return keyPrefix + documentID
}

func (s *ReportStore) Save(ctx context.Context, report *decision.ScoreReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, reportKey(report.DocumentID), data, s.ttl)
		pipe.SAdd(ctx, indexKey, report.DocumentID)
		return nil
	})
	return err
}

func (s *ReportStore) Get(ctx context.Context, documentID string) (*decision.ScoreReport, error) {
	data, err := s.client.Get(ctx, reportKey(documentID)).Bytes()
	if errors.Is(err, redis.Nil) {
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

// List returns the indexed reports that have not expired, by document ID.
func (s *ReportStore) List(ctx context.Context) ([]*decision.ScoreReport, error) {
	ids, err := s.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(ids)

	out := make([]*decision.ScoreReport, 0, len(ids))
	var expired []any
	for _, id := range ids {
		report, err := s.Get(ctx, id)
		if errors.Is(err, sentinel.ErrNotFound) {
			expired = append(expired, id)
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, report)
	}
	if len(expired) > 0 {
		_ = s.client.SRem(ctx, indexKey, expired...).Err()
	}
	return out, nil
}
