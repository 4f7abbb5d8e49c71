package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStoreSlidingWindow(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)
	s := NewInMemoryStore()
	s.now = func() time.Time { return now }

	for i := range 3 {
		res, err := s.Allow(ctx, "10.0.0.1", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, 2-i, res.Remaining)
	}

	res, err := s.Allow(ctx, "10.0.0.1", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
	assert.Equal(t, 60, res.RetryAfter)

	// other keys are independent
	res, err = s.Allow(ctx, "10.0.0.2", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	now = now.Add(time.Minute + time.Second)
	res, err = s.Allow(ctx, "10.0.0.1", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 2, res.Remaining)
}

func TestInMemoryStoreConcurrentAllow(t *testing.T) {
	s := NewInMemoryStore()
	allowed := make(chan bool, 50)
	for range 50 {
		go func() {
			res, err := s.Allow(context.Background(), "k", 10, time.Minute)
			allowed <- err == nil && res.Allowed
		}()
	}
	count := 0
	for range 50 {
		if <-allowed {
			count++
		}
	}
	assert.Equal(t, 10, count)
}
