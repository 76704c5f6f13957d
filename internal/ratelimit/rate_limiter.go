package ratelimit

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/flightdeck/flight-auth/internal/config"
	apperrors "github.com/flightdeck/flight-auth/pkg/util"
)

const keyPrefix = "flight-auth:ratelimit:"

// Limiter enforces a fixed-window request budget per client IP using Redis.
type Limiter struct {
	client *redis.Client
	cfg    config.RateLimitConfig
}

// NewLimiter builds a limiter. A nil client or zero budget disables limiting.
func NewLimiter(client *redis.Client, cfg config.RateLimitConfig) *Limiter {
	return &Limiter{client: client, cfg: cfg}
}

// Allow reports whether the caller is within budget for the current window.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	if l == nil || l.client == nil || !l.cfg.Enabled || l.cfg.Requests <= 0 {
		return true, nil
	}

	redisKey := keyPrefix + key
	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := l.client.Expire(ctx, redisKey, l.cfg.Window()).Err(); err != nil {
			return false, err
		}
	}
	return count <= int64(l.cfg.Requests), nil
}

// Middleware rejects over-budget requests with 429. Limiter failures pass the
// request through; rate limiting is protection, not a dependency.
func Middleware(limiter *Limiter, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		allowed, err := limiter.Allow(c.UserContext(), c.IP())
		if err != nil {
			logger.Warn("rate limit check failed", zap.Error(err))
			return c.Next()
		}
		if !allowed {
			return apperrors.NewTooManyRequests(fmt.Sprintf("rate limit exceeded for %s", c.Path()))
		}
		return c.Next()
	}
}
