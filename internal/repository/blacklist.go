package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const blacklistPrefix = "blacklist:"

// TokenBlacklist records revoked session tokens in Redis. Entries expire
// with the token itself, so the set never outgrows the live token
// population.
type TokenBlacklist struct {
	redis *redis.Client
}

func NewTokenBlacklist(redisClient *redis.Client) *TokenBlacklist {
	return &TokenBlacklist{redis: redisClient}
}

// Add revokes a token for the remainder of its lifetime.
func (b *TokenBlacklist) Add(ctx context.Context, token string, expiry time.Duration) error {
	if expiry <= 0 {
		// Already expired; verification will reject it anyway.
		return nil
	}
	return b.redis.Set(ctx, blacklistPrefix+token, "1", expiry).Err()
}

// IsBlacklisted reports whether a token has been revoked.
func (b *TokenBlacklist) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	val, err := b.redis.Exists(ctx, blacklistPrefix+token).Result()
	if err != nil {
		return false, err
	}
	return val > 0, nil
}
