package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zlnvch/seodash/cache"
)

// These tests need a live server; set REDIS_TEST_ADDR to run them.
func newTestCache(t *testing.T) *RedisDashboardCache {
	t.Helper()
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	require.NoError(t, client.Ping(context.Background()).Err())
	t.Cleanup(func() { client.Close() })
	return NewWithClient(client)
}

func TestGetSet(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	key := cache.UserKey("test-get-set", "serp", "abc")

	_, err := c.Get(ctx, key)
	assert.ErrorIs(t, err, cache.ErrCacheMiss)

	require.NoError(t, c.Set(ctx, key, []byte(`{"ok":true}`), time.Minute))
	val, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, string(val))

	require.NoError(t, c.InvalidateUser(ctx, "test-get-set"))
}

func TestDailyCount(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	userId := "test-daily-count"
	t.Cleanup(func() { c.InvalidateUser(context.Background(), userId) })

	n, err := c.IncrementDailyCount(ctx, userId, "content_generated", "2026-10-15")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = c.IncrementDailyCount(ctx, userId, "content_generated", "2026-10-15")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.NoError(t, c.DecrementDailyCount(ctx, userId, "content_generated", "2026-10-15"))
	n, err = c.IncrementDailyCount(ctx, userId, "content_generated", "2026-10-15")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestInvalidateUser_LeavesOthers(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	mine := cache.UserKey("test-inv-a", "kw", "1")
	theirs := cache.UserKey("test-inv-b", "kw", "1")
	require.NoError(t, c.Set(ctx, mine, []byte("a"), time.Minute))
	require.NoError(t, c.Set(ctx, theirs, []byte("b"), time.Minute))
	t.Cleanup(func() { c.InvalidateUser(context.Background(), "test-inv-b") })

	require.NoError(t, c.InvalidateUser(ctx, "test-inv-a"))

	_, err := c.Get(ctx, mine)
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
	val, err := c.Get(ctx, theirs)
	require.NoError(t, err)
	assert.Equal(t, "b", string(val))
}

func TestUserKey(t *testing.T) {
	assert.Equal(t, "user:{u1}", cache.UserKey("u1"))
	assert.Equal(t, "user:{u1}:quota:content_generated:2026-10-15", buildDailyCountKey("u1", "content_generated", "2026-10-15"))
}
