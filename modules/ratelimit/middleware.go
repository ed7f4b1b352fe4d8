package ratelimit

import (
	"fmt"
	"strconv"

	"github.com/example/forum-chat-demo/domain/ratelimit"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Middleware limits requests per client IP using a sliding window.
type Middleware struct {
	limiter *SlidingWindowLimiter
	limit   int
}

// NewMiddleware creates rate limiting middleware with the given
// configuration and Redis key prefix.
func NewMiddleware(client *redis.Client, config ratelimit.Config, prefix string) *Middleware {
	return &Middleware{
		limiter: NewSlidingWindowLimiter(client, config, prefix),
		limit:   config.RequestsPerWindow,
	}
}

// Handler returns a Fiber handler that limits requests by client IP.
// When the limiter itself fails the request is allowed through rather
// than blocking all traffic on a Redis outage.
func (m *Middleware) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ip := c.IP()
		if ip == "" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":   "Forbidden",
				"message": "Unable to determine client IP address",
			})
		}

		result, err := m.limiter.Allow(c.Context(), ip)
		if err != nil {
			c.Set("X-RateLimit-Error", err.Error())
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(m.limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			retryAfter := int(result.RetryAfter.Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Set("Retry-After", strconv.Itoa(retryAfter))

			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       "Too Many Requests",
				"message":     fmt.Sprintf("Rate limit exceeded. Please retry after %d seconds.", retryAfter),
				"retry_after": retryAfter,
			})
		}

		return c.Next()
	}
}
