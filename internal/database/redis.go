package database

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/tuckshop/backend/internal/config"
	"go.uber.org/zap"
)

// InitRedis returns nil when Redis is unreachable; callers run without
// the token blacklist and rate limiting in that case.
func InitRedis(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis connection failed, continuing without redis", zap.Error(err))
		rdb.Close()
		return nil
	}

	logger.Info("redis connection established", zap.String("addr", cfg.Addr()))
	return rdb
}
