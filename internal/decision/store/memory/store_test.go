package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"i9score/internal/decision"
	"i9score/pkg/platform/sentinel"
)

func TestInMemoryReportStore(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryReportStore()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	require.NoError(t, s.Save(ctx, &decision.ScoreReport{DocumentID: "b", Total: 10}))
	require.NoError(t, s.Save(ctx, &decision.ScoreReport{DocumentID: "a", Total: 20}))
	require.NoError(t, s.Save(ctx, &decision.ScoreReport{DocumentID: "b", Total: 30}))

	got, err := s.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, 30, got.Total)

	all, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].DocumentID)
	assert.Equal(t, "b", all[1].DocumentID)

	runs, err := s.History(ctx, "b")
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, 10, runs[0].Total)
	assert.Equal(t, 30, runs[1].Total)

	none, err := s.History(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestInMemoryReportStoreConcurrentSave(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryReportStore()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Save(ctx, &decision.ScoreReport{DocumentID: string(rune('a' + i%26))})
		}()
	}
	wg.Wait()

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 26)
}
