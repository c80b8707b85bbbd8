package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/minkgkyaw9899/m-blog-server/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// FailPolicy defines the behavior when the rate limit store (Redis) is unavailable.
type FailPolicy int

const (
	// FailOpen allows the request to proceed if Redis is unavailable.
	FailOpen FailPolicy = iota
	// FailClosed blocks the request (503 Service Unavailable) if Redis is unavailable.
	FailClosed
)

// ErrRateLimitStoreUnavailable is returned when no Redis client is configured.
var ErrRateLimitStoreUnavailable = errors.New("rate limit store unavailable")

// Quota is the state of one identity's fixed window after a request was counted.
type Quota struct {
	Limit     int
	Used      int64
	ResetsIn  time.Duration
	Unlimited bool
}

// Allowed reports whether the counted request fits in the window.
func (q Quota) Allowed() bool {
	return q.Unlimited || q.Used <= int64(q.Limit)
}

// Remaining is how many more requests the window accepts.
func (q Quota) Remaining() int {
	if q.Used >= int64(q.Limit) {
		return 0
	}
	return q.Limit - int(q.Used)
}

func rateLimitBypassed() bool {
	switch os.Getenv("APP_ENV") {
	case "", "test", "development":
		return true
	}
	return false
}

// ConsumeQuota counts one request for id against resource in a fixed window
// of length window. Limits are off when APP_ENV is test or development.
func ConsumeQuota(ctx context.Context, rdb *redis.Client, resource, id string, limit int, window time.Duration) (Quota, error) {
	if rateLimitBypassed() {
		return Quota{Limit: limit, Unlimited: true}, nil
	}
	if rdb == nil {
		return Quota{}, ErrRateLimitStoreUnavailable
	}

	key := fmt.Sprintf("rl:%s:%s", resource, id)
	used, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		return Quota{}, err
	}
	if used == 1 {
		if err := rdb.Expire(ctx, key, window).Err(); err != nil {
			return Quota{}, err
		}
	}

	resetsIn, err := rdb.PTTL(ctx, key).Result()
	if err != nil || resetsIn < 0 {
		resetsIn = window
	}
	return Quota{Limit: limit, Used: used, ResetsIn: resetsIn}, nil
}

// CheckRateLimit reports whether one more request for id on resource is allowed.
func CheckRateLimit(ctx context.Context, rdb *redis.Client, resource, id string, limit int, window time.Duration) (bool, error) {
	q, err := ConsumeQuota(ctx, rdb, resource, id, limit, window)
	if err != nil {
		return false, err
	}
	return q.Allowed(), nil
}

// RateLimit limits a route to limit requests per window for each caller,
// keyed by the authenticated user when there is one and by IP otherwise.
// A missing or failing Redis lets requests through.
func RateLimit(rdb *redis.Client, limit int, window time.Duration, name ...string) fiber.Handler {
	return RateLimitWithPolicy(rdb, limit, window, FailOpen, name...)
}

// RateLimitWithPolicy is RateLimit with an explicit behavior for an unavailable store.
// Limited responses carry X-RateLimit-Limit, X-RateLimit-Remaining and, once
// exhausted, Retry-After.
func RateLimitWithPolicy(rdb *redis.Client, limit int, window time.Duration, policy FailPolicy, name ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var id string
		if uid := c.Locals("userID"); uid != nil {
			id = fmt.Sprintf("user:%v", uid)
		} else {
			id = "ip:" + c.IP()
		}

		resource := c.Path()
		if len(name) > 0 {
			resource = name[0]
		}

		q, err := ConsumeQuota(c.UserContext(), rdb, resource, id, limit, window)
		if err != nil {
			if policy == FailClosed {
				Logger.WarnContext(c.UserContext(), "rate limit fail-closed",
					slog.String("path", c.Path()),
					slog.String("resource", resource),
					slog.String("error", err.Error()),
				)
				return models.RespondWithError(c, fiber.StatusServiceUnavailable,
					fiber.NewError(fiber.StatusServiceUnavailable, "Rate limit unavailable"))
			}
			return c.Next()
		}
		if q.Unlimited {
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(q.Limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(q.Remaining()))
		if !q.Allowed() {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(math.Ceil(q.ResetsIn.Seconds()))))
			return models.RespondWithError(c, fiber.StatusTooManyRequests,
				fiber.NewError(fiber.StatusTooManyRequests, "Too many requests, please try again later."))
		}
		return c.Next()
	}
}
