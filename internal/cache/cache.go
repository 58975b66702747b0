package cache

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// AllProductsKey is the aggregate view over the whole catalog. Every
// successful write invalidates it.
const AllProductsKey = "all_products"

// Invalidator drops a cached aggregate entry. Implementations are
// best-effort: a miss is not an error and a failure must never abort the
// write that triggered it.
type Invalidator interface {
	Invalidate(ctx context.Context, key string) error
}

type redisCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisCache creates an Invalidator backed by Redis.
func NewRedisCache(client *redis.Client, logger *zap.Logger) Invalidator {
	return &redisCache{client: client, logger: logger}
}

// Invalidate removes the key. Deleting an absent key is a no-op.
func (c *redisCache) Invalidate(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Warn("Cache invalidation failed",
			zap.String("key", key),
			zap.Error(err),
		)
		return err
	}
	return nil
}
