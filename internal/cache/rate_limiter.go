package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter counts hits per key in fixed windows
type RateLimiter interface {
	// Allow records a hit and reports whether it is within the limit
	Allow(ctx context.Context, key string) (bool, error)
}

type rateLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

// NewRateLimiter allows limit hits per key and window. A non-positive limit
// disables limiting.
func NewRateLimiter(client *redis.Client, limit int, window time.Duration) RateLimiter {
	if client == nil || limit <= 0 || window <= 0 {
		return AllowAll{}
	}
	return &rateLimiter{
		client: client,
		limit:  int64(limit),
		window: window,
	}
}

func (l *rateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := fmt.Sprintf("ratelimit:%s", key)

	n, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return false, err
	}
	// first hit starts the window
	if n == 1 {
		if err := l.client.Expire(ctx, k, l.window).Err(); err != nil {
			return false, err
		}
	}
	return n <= l.limit, nil
}

// AllowAll never limits
type AllowAll struct{}

func (AllowAll) Allow(context.Context, string) (bool, error) { return true, nil }
