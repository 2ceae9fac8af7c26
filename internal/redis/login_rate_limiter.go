package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"
)

// LoginRateLimiter implements sliding window rate limiting for login attempts,
// keyed by the submitted identifier. It caps password guessing against a
// single account regardless of source address.
type LoginRateLimiter struct {
	rdb    *goredis.Client
	clock  clockwork.Clock
	limit  int
	window time.Duration
}

// NewLoginRateLimiter creates a new login rate limiter.
// limit: maximum attempts per window
// window: sliding window duration
func NewLoginRateLimiter(rdb *goredis.Client, clock clockwork.Clock, limit int, window time.Duration) *LoginRateLimiter {
	return &LoginRateLimiter{
		rdb:    rdb,
		clock:  clock,
		limit:  limit,
		window: window,
	}
}

// Allow checks whether a login attempt for the identifier is allowed and,
// if so, records it. Returns false when the limit is exhausted.
func (l *LoginRateLimiter) Allow(ctx context.Context, identifier string) (bool, error) {
	key := "rate_limit:login:" + strings.ToLower(identifier)
	now := l.clock.Now()
	cutoff := now.Add(-l.window).UnixMilli()

	pipe := l.rdb.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(cutoff, 10))
	countCmd := pipe.ZCard(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit check failed: %w", err)
	}

	if countCmd.Val() >= int64(l.limit) {
		return false, nil
	}

	pipe = l.rdb.Pipeline()
	pipe.ZAdd(ctx, key, goredis.Z{Score: float64(now.UnixMilli()), Member: uuid.NewString()})
	pipe.Expire(ctx, key, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit record failed: %w", err)
	}

	return true, nil
}
