//go:build integration

package redis

import (
	"context"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

//	TEST_REDIS_ADDR=... go test -tags integration ./pkg/redis/

func newTestClient(t *testing.T) *Client {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6380"
	}
	rdb := goredis.NewClient(&goredis.Options{Addr: addr, DB: 15})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Skipf("无法连接测试 Redis: %v", err)
	}
	require.NoError(t, rdb.FlushDB(context.Background()).Err())
	c := Wrap(rdb, zap.NewNop())
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestCheckRateLimit_SlidingWindow(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := c.CheckRateLimit(ctx, "rate_limit:test", 3, time.Second)
		require.NoError(t, err)
		require.True(t, allowed, "第 %d 次请求应放行", i+1)
	}

	allowed, err := c.CheckRateLimit(ctx, "rate_limit:test", 3, time.Second)
	require.NoError(t, err)
	require.False(t, allowed)

	// 其他 key 互不影响
	allowed, err = c.CheckRateLimit(ctx, "rate_limit:other", 3, time.Second)
	require.NoError(t, err)
	require.True(t, allowed)

	// 窗口滑过后恢复
	time.Sleep(1100 * time.Millisecond)
	allowed, err = c.CheckRateLimit(ctx, "rate_limit:test", 3, time.Second)
	require.NoError(t, err)
	require.True(t, allowed)
}

func TestBlacklist(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	revoked, err := c.IsBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	require.False(t, revoked)

	require.NoError(t, c.BlacklistToken(ctx, "jti-1", time.Minute))

	revoked, err = c.IsBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	require.True(t, revoked)

	ttl, err := c.Raw().TTL(ctx, blacklistPrefix+"jti-1").Result()
	require.NoError(t, err)
	require.Greater(t, ttl, time.Duration(0))
}
