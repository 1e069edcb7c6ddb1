package database

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisSummaryCache_GetSet(t *testing.T) {
	mr, client := setupMiniredis(t)
	cache := NewRedisSummaryCache(client, time.Hour, zap.NewNop())
	ctx := context.Background()

	_, ok, err := cache.Get(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Set(ctx, "abc", "Eldra is torn between two factions."))

	summary, ok, err := cache.Get(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Eldra is torn between two factions.", summary)
	assert.Equal(t, time.Hour, mr.TTL(summaryKeyPrefix+"abc"))
}

func TestRedisSummaryCache_Expires(t *testing.T) {
	mr, client := setupMiniredis(t)
	cache := NewRedisSummaryCache(client, time.Minute, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", "summary"))
	mr.FastForward(2 * time.Minute)

	_, ok, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisSummaryCache_ServerDown(t *testing.T) {
	mr, client := setupMiniredis(t)
	cache := NewRedisSummaryCache(client, 0, zap.NewNop())
	mr.Close()

	_, _, err := cache.Get(context.Background(), "k")
	assert.Error(t, err)
	assert.Error(t, cache.Set(context.Background(), "k", "v"))
}
