package api

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// 计数窗口的时间格式。
const (
	hourWindow = "2006010215"
	dayWindow  = "20060102"
)

type redisRateCounter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// rateKey 生成按时间窗口分桶的计数键，例如 rate:enhance:7:2026101909。
func rateKey(scope string, userID uint, now time.Time, window string) string {
	return fmt.Sprintf("rate:%s:%d:%s", scope, userID, now.UTC().Format(window))
}

// incrWithTTL 自增计数，首次创建时设置过期时间。
func incrWithTTL(ctx context.Context, client redisRateCounter, key string, ttl time.Duration) (int64, error) {
	count, err := client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		_ = client.Expire(ctx, key, ttl).Err()
	}
	return count, nil
}
