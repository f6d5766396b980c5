package middleware

import (
	"context"
	"coursehub/logger"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Counter counts hits on a key within a fixed window.
type Counter interface {
	Hit(ctx context.Context, key string, window time.Duration) (count int64, ttl time.Duration, err error)
}

// RedisCounter implements Counter with INCR plus EXPIRE on the first hit.
type RedisCounter struct {
	client *redis.Client
}

func NewRedisCounter(client *redis.Client) *RedisCounter {
	return &RedisCounter{client: client}
}

func (r *RedisCounter) Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, 0, err
	}
	if count == 1 {
		if err := r.client.Expire(ctx, key, window).Err(); err != nil {
			return count, window, err
		}
		return count, window, nil
	}
	ttl, err := r.client.TTL(ctx, key).Result()
	if err != nil {
		return count, window, nil
	}
	return count, ttl, nil
}

// RateLimiter throttles requests per client IP.
type RateLimiter struct {
	counter Counter
}

// NewRateLimiter returns a limiter. A nil counter disables limiting.
func NewRateLimiter(counter Counter) *RateLimiter {
	return &RateLimiter{counter: counter}
}

// Limit allows at most limit requests per window for keySuffix and IP.
// Counter failures let the request through.
func (rl *RateLimiter) Limit(keySuffix string, limit int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if rl == nil || rl.counter == nil || limit <= 0 {
			return c.Next()
		}
		key := fmt.Sprintf("rate_limit:%s:%s", keySuffix, c.IP())

		count, ttl, err := rl.counter.Hit(c.UserContext(), key, window)
		if err != nil {
			logger.Warn("rate limiter unavailable", zap.String("key", key), zap.Error(err))
			return c.Next()
		}
		if count > int64(limit) {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(ttl.Seconds())))
			return JsonResponse(c, fiber.StatusTooManyRequests, false, "Too many login attempts, please try again later", nil)
		}
		return c.Next()
	}
}
