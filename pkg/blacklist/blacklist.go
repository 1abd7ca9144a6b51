package blacklist

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenBlacklist keeps revoked access tokens in Redis until they would
// have expired anyway. Refresh-token revocation lives in the session
// table; this only hardens logout and password change for the short
// access-token window.
type TokenBlacklist struct {
	redis *redis.Client
}

func NewTokenBlacklist(redisClient *redis.Client) *TokenBlacklist {
	return &TokenBlacklist{
		redis: redisClient,
	}
}

// AddAccessToken blacklists an access token for its remaining lifetime.
func (b *TokenBlacklist) AddAccessToken(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)

	// Already expired, nothing to do.
	if ttl <= 0 {
		return nil
	}

	key := fmt.Sprintf("blacklist:token:%s", token)
	if err := b.redis.Set(ctx, key, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to add token to blacklist: %w", err)
	}

	return nil
}

// IsBlacklisted checks if a token is in the blacklist.
func (b *TokenBlacklist) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	key := fmt.Sprintf("blacklist:token:%s", token)

	exists, err := b.redis.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check blacklist: %w", err)
	}

	return exists > 0, nil
}

// BlacklistUser invalidates every token issued before now. Used after a
// password change; ttl must exceed the max access-token lifetime.
func (b *TokenBlacklist) BlacklistUser(ctx context.Context, userID string, ttl time.Duration) error {
	key := fmt.Sprintf("blacklist:user:%s", userID)

	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	invalidationTimestamp := time.Now().Unix()
	return b.redis.Set(ctx, key, invalidationTimestamp, ttl).Err()
}

// IsUserBlacklisted checks if a token was issued before the user's
// invalidation marker.
func (b *TokenBlacklist) IsUserBlacklisted(ctx context.Context, userID string, tokenIssuedAt time.Time) (bool, error) {
	key := fmt.Sprintf("blacklist:user:%s", userID)

	timestamp, err := b.redis.Get(ctx, key).Int64()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	invalidationTime := time.Unix(timestamp, 0)
	return tokenIssuedAt.Before(invalidationTime), nil
}
