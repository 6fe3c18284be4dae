// Package redis provides the Redis client and the cache-aside decorators
// that sit in front of the hot-path PostgreSQL lookups.
package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aegisai/aegis/internal/config"
	"github.com/aegisai/aegis/pkg/errors"
	"github.com/aegisai/aegis/pkg/logger"
)

// NewClient creates a Redis client and verifies connectivity.
func NewClient(ctx context.Context, cfg *config.RedisConfig, log logger.Logger) (*redis.Client, error) {
	if cfg == nil {
		return nil, errors.ErrInvalidConfig
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, errors.ErrCache.WithCause(err)
	}

	log.Info(ctx, "redis connection established", logger.Fields{"address": cfg.Address})
	return client, nil
}
