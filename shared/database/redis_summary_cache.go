package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"npc-server/shared/interfaces"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var _ interfaces.SummaryCache = (*redisSummaryCache)(nil)

const summaryKeyPrefix = "world_summary:"

type redisSummaryCache struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisSummaryCache создает кэш сводок мира. ttl <= 0 означает хранение без срока.
func NewRedisSummaryCache(client redis.UniversalClient, ttl time.Duration, logger *zap.Logger) interfaces.SummaryCache {
	return &redisSummaryCache{
		client: client,
		ttl:    ttl,
		logger: logger.Named("RedisSummaryCache"),
	}
}

func (c *redisSummaryCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.client.Get(ctx, summaryKeyPrefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		c.logger.Warn("Failed to read summary from redis", zap.String("key", key), zap.Error(err))
		return "", false, fmt.Errorf("failed to read summary %s: %w", key, err)
	}
	return val, true, nil
}

func (c *redisSummaryCache) Set(ctx context.Context, key string, summary string) error {
	ttl := c.ttl
	if ttl < 0 {
		ttl = 0
	}
	if err := c.client.Set(ctx, summaryKeyPrefix+key, summary, ttl).Err(); err != nil {
		c.logger.Warn("Failed to store summary in redis", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to store summary %s: %w", key, err)
	}
	c.logger.Debug("Summary cached", zap.String("key", key), zap.Duration("ttl", ttl))
	return nil
}
