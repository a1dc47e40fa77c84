package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const accessTokenBlacklistKeyPrefix = "auth:access:blacklist:"

type blacklistStore interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
}

// Blacklist 记录已注销的访问令牌（按 jti），直到令牌自然过期。
type Blacklist struct {
	redis blacklistStore
}

func NewBlacklist(client blacklistStore) *Blacklist {
	return &Blacklist{redis: client}
}

// Revoke 注销令牌。
func (b *Blacklist) Revoke(ctx context.Context, claims *TokenClaims) error {
	if claims == nil || claims.ID == "" {
		return errors.New("token missing jti")
	}
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if ttl <= 0 {
		ttl = time.Second
	}
	if err := b.redis.Set(ctx, accessTokenBlacklistKeyPrefix+claims.ID, "revoked", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked 判断令牌是否已注销。没有 jti 的令牌无法被注销。
func (b *Blacklist) IsRevoked(ctx context.Context, claims *TokenClaims) (bool, error) {
	if claims == nil || claims.ID == "" {
		return false, nil
	}
	n, err := b.redis.Exists(ctx, accessTokenBlacklistKeyPrefix+claims.ID).Result()
	if err != nil {
		return false, fmt.Errorf("blacklist lookup: %w", err)
	}
	return n > 0, nil
}
