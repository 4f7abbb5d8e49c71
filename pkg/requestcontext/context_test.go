package requestcontext

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	id "i9score/pkg/domain"
)

func TestRequestContextValues(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, RequestID(ctx))
	assert.True(t, RunID(ctx).IsNil())

	fixed := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	runID := id.NewRunID()
	ctx = WithRequestID(ctx, "req-1")
	ctx = WithRunID(ctx, runID)
	ctx = WithTime(ctx, fixed)

	assert.Equal(t, "req-1", RequestID(ctx))
	assert.Equal(t, runID, RunID(ctx))
	assert.Equal(t, fixed, Now(ctx))
}

func TestNowFallsBackToWallClock(t *testing.T) {
	before := time.Now()
	got := Now(context.Background())
	assert.False(t, got.Before(before))
}
