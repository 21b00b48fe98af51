package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kashyapn/inrhedge/internal/domain"
)

// RateCache implements domain.RateCache using Redis hashes. Each currency
// pair's quote is stored as a hash at key "rate:{pair}" with fields "rate"
// and "ts" (Unix nanosecond timestamp). Entries expire after the configured
// TTL so a stale quote is never served as current.
type RateCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRateCache creates a RateCache backed by the given Client. A zero or
// negative ttl disables expiry.
func NewRateCache(c *Client, ttl time.Duration) *RateCache {
	return &RateCache{rdb: c.Underlying(), ttl: ttl}
}

func rateKey(pair string) string {
	return "rate:" + pair
}

// SetRate stores the latest quote and timestamp for a currency pair.
func (rc *RateCache) SetRate(ctx context.Context, pair string, rate float64, ts time.Time) error {
	if rate <= 0 {
		return fmt.Errorf("redis: set rate %s=%v: %w", pair, rate, domain.ErrInvalidRate)
	}

	key := rateKey(pair)
	fields := map[string]interface{}{
		"rate": strconv.FormatFloat(rate, 'f', -1, 64),
		"ts":   strconv.FormatInt(ts.UnixNano(), 10),
	}
	if err := rc.rdb.HSet(ctx, key, fields).Err(); err != nil {
		return fmt.Errorf("redis: set rate %s: %w", pair, err)
	}
	if rc.ttl > 0 {
		if err := rc.rdb.Expire(ctx, key, rc.ttl).Err(); err != nil {
			return fmt.Errorf("redis: expire rate %s: %w", pair, err)
		}
	}
	return nil
}

// GetRate retrieves the latest quote and timestamp for a currency pair.
// It returns domain.ErrNotFound when the key does not exist or has expired.
func (rc *RateCache) GetRate(ctx context.Context, pair string) (float64, time.Time, error) {
	vals, err := rc.rdb.HGetAll(ctx, rateKey(pair)).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis: get rate %s: %w", pair, err)
	}
	if len(vals) == 0 {
		return 0, time.Time{}, domain.ErrNotFound
	}

	rateStr, ok := vals["rate"]
	if !ok {
		return 0, time.Time{}, domain.ErrNotFound
	}
	rate, err := strconv.ParseFloat(rateStr, 64)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis: parse rate %s: %w", pair, err)
	}

	tsStr, ok := vals["ts"]
	if !ok {
		return 0, time.Time{}, domain.ErrNotFound
	}
	tsNano, err := strconv.ParseInt(tsStr, 10, 64)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis: parse rate ts %s: %w", pair, err)
	}

	return rate, time.Unix(0, tsNano), nil
}

// Compile-time interface check.
var _ domain.RateCache = (*RateCache)(nil)
