package ratelimit

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestMemoryLimiter_AllowsUpToRate(t *testing.T) {
	rl := NewMemoryLimiter(3, 15*time.Minute)
	defer rl.Close()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		res, err := rl.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, 2-i, res.Remaining)
	}

	res, err := rl.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
	assert.Equal(t, 3, res.Limit)

	// Other clients are counted separately.
	res, err = rl.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestMemoryLimiter_WindowSlides(t *testing.T) {
	rl := NewMemoryLimiter(2, time.Minute)
	defer rl.Close()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		res, _ := rl.Allow(ctx, "k")
		require.True(t, res.Allowed)
	}
	res, _ := rl.Allow(ctx, "k")
	require.False(t, res.Allowed)
	assert.Equal(t, now.Add(time.Minute), res.ResetAt)

	now = now.Add(time.Minute + time.Second)
	res, _ = rl.Allow(ctx, "k")
	assert.True(t, res.Allowed)
	assert.Equal(t, 1, res.Remaining)
}

func TestMemoryLimiter_Cleanup(t *testing.T) {
	rl := NewMemoryLimiter(5, time.Minute)
	defer rl.Close()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	_, _ = rl.Allow(context.Background(), "a")
	_, _ = rl.Allow(context.Background(), "b")
	require.Equal(t, 2, rl.keys())

	now = now.Add(2 * time.Minute)
	rl.cleanup()
	assert.Equal(t, 0, rl.keys())
}

func TestMemoryLimiter_Concurrent(t *testing.T) {
	rl := NewMemoryLimiter(50, time.Minute)
	defer rl.Close()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := rl.Allow(context.Background(), "shared")
			if err == nil && res.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, allowed)
}

func TestMemoryLimiter_CloseIdempotent(t *testing.T) {
	rl := NewMemoryLimiter(1, time.Second)
	require.NoError(t, rl.Close())
	require.NoError(t, rl.Close())
}

func TestRedisLimiter_WindowKey(t *testing.T) {
	rl := NewRedisLimiter(nil, "password", 3, 15*time.Minute)
	now := time.Date(2025, 1, 1, 12, 7, 30, 0, time.UTC)

	key, resetAt := rl.windowKey("10.0.0.1", now)
	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "ratelimit:password:10.0.0.1:"+strconv.FormatInt(start.Unix(), 10), key)
	assert.Equal(t, start.Add(15*time.Minute), resetAt)
	assert.Equal(t, 3, rl.Limit())
}

func TestNewRedisClient_BadURL(t *testing.T) {
	_, err := NewRedisClient("not a url")
	assert.Error(t, err)
}
