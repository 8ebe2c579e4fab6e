//go:build integration

package redis

import (
	"context"
	"testing"
	"time"

	"github.com/dmehra2102/potter-book-bank/test/integration"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestStorageAgainstRedis(t *testing.T) {
	ctx := context.Background()
	env, err := integration.Setup(ctx, false)
	require.NoError(t, err)
	t.Cleanup(func() { env.Teardown(context.Background()) })

	rdb := redis.NewClient(&redis.Options{Addr: env.RedisAddr})
	t.Cleanup(func() { _ = rdb.Close() })
	s := NewStorage(rdb, time.Hour)

	_, ok, err := s.Get(ctx, "s1", "potter-cart")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Set(ctx, "s1", "potter-cart", `[]`))
	v, ok, err := s.Get(ctx, "s1", "potter-cart")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `[]`, v)

	ttl, err := rdb.TTL(ctx, s.Key("s1", "potter-cart")).Result()
	require.NoError(t, err)
	require.Greater(t, ttl, 59*time.Minute)
}
