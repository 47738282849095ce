package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const blacklistPrefix = "blacklist:"

// Blacklist records revoked token ids until they would have expired.
type Blacklist interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// RedisBlacklist is a Blacklist backed by Redis keys with a TTL. A nil
// client disables revocation.
type RedisBlacklist struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisBlacklist(client *redis.Client) *RedisBlacklist {
	return &RedisBlacklist{client: client, now: time.Now}
}

var _ Blacklist = (*RedisBlacklist)(nil)

func (b *RedisBlacklist) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if b.client == nil {
		return nil
	}

	ttl := expiresAt.Sub(b.now())
	if ttl <= 0 {
		return nil
	}

	if err := b.client.Set(ctx, blacklistPrefix+tokenID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("blacklist token: %w", err)
	}
	return nil
}

func (b *RedisBlacklist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if b.client == nil {
		return false, nil
	}

	err := b.client.Get(ctx, blacklistPrefix+tokenID).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check blacklist: %w", err)
	}
	return true, nil
}
