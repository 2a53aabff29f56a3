package utils

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_BucketStartsFull(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)
	defer rl.Stop()

	assert.True(t, rl.TryWait())
	assert.True(t, rl.TryWait())
	assert.True(t, rl.TryWait())
	assert.False(t, rl.TryWait(), "bucket should be empty after rate tokens")
}

func TestRateLimiter_WaitContextCancellation(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour)
	defer rl.Stop()

	require.NoError(t, rl.WaitContext(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := rl.WaitContext(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRateLimiter_StopHaltsRefill(t *testing.T) {
	rl := NewRateLimiter(1, 30*time.Millisecond)

	require.True(t, rl.TryWait())
	rl.Stop()

	// Several refill intervals pass; a stopped limiter must not hand out
	// new tokens.
	time.Sleep(120 * time.Millisecond)
	assert.False(t, rl.TryWait())
}

func TestRateLimiter_Refills(t *testing.T) {
	rl := NewRateLimiter(2, 40*time.Millisecond)
	defer rl.Stop()

	require.True(t, rl.TryWait())
	require.True(t, rl.TryWait())
	require.False(t, rl.TryWait())

	// One token should come back within a refill interval.
	deadline := time.Now().Add(200 * time.Millisecond)
	for time.Now().Before(deadline) {
		if rl.TryWait() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("expected the bucket to refill")
}
