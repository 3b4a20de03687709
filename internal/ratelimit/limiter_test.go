package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryLimiterWindow(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	lim := NewInMemory(time.Minute)
	lim.now = func() time.Time { return now }

	for i := 1; i <= 3; i++ {
		d := lim.Allow(ctx, "login:alice", 3)
		require.True(t, d.Allowed, "attempt %d", i)
		assert.Equal(t, 3-i, d.Remaining)
	}

	d := lim.Allow(ctx, "login:alice", 3)
	assert.False(t, d.Allowed)
	assert.Equal(t, 4, d.Count)
	assert.Equal(t, time.Minute, d.RetryAfter(now))

	assert.True(t, lim.Allow(ctx, "login:bob", 3).Allowed, "keys are independent")

	now = now.Add(time.Minute)
	d = lim.Allow(ctx, "login:alice", 3)
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Count)
}

func TestInMemoryLimiterReset(t *testing.T) {
	ctx := context.Background()
	lim := NewInMemory(time.Hour)

	lim.Allow(ctx, "k", 1)
	assert.False(t, lim.Allow(ctx, "k", 1).Allowed)

	require.NoError(t, lim.Reset(ctx, "k"))
	assert.True(t, lim.Allow(ctx, "k", 1).Allowed)
}

func TestNonPositiveLimitAllowsOne(t *testing.T) {
	lim := NewInMemory(0)
	assert.Equal(t, time.Minute, lim.window)
	assert.True(t, lim.Allow(context.Background(), "k", 0).Allowed)
	assert.False(t, lim.Allow(context.Background(), "k", 0).Allowed)
}
