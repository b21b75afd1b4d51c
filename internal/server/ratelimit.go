package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"discovrr/internal/observability"

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

var errNoRateLimitStore = errors.New("rate limit store unavailable")

// CheckRateLimit counts one hit of id against resource and reports whether
// it stays within limit for the current window.
func CheckRateLimit(ctx context.Context, rdb *redis.Client, resource, id string, limit int, window time.Duration) (bool, error) {
	if rdb == nil {
		return false, errNoRateLimitStore
	}

	key := fmt.Sprintf("rl:%s:%s", resource, id)
	cnt, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if cnt == 1 {
		rdb.Expire(ctx, key, window)
	}
	return cnt <= int64(limit), nil
}

// RateLimit returns a middleware enforcing limit requests per window, keyed
// by the signed-in profile or else the remote IP. Development and test
// environments are not throttled.
func (s *Server) RateLimit(limit int, window time.Duration, resource string, policy FailPolicy) fiber.Handler {
	return func(c *fiber.Ctx) error {
		switch s.config.Env {
		case "", "test", "development":
			return c.Next()
		}

		id := "ip:" + c.IP()
		if profileID, ok := c.Locals("profileID").(string); ok && profileID != "" {
			id = "profile:" + profileID
		}

		allowed, err := CheckRateLimit(c.UserContext(), s.redis, resource, id, limit, window)
		if err != nil {
			if policy == FailClosed {
				observability.GlobalLogger.WarnContext(c.UserContext(), "rate limit fail-closed",
					"resource", resource, "path", c.Path(), "error", err)
				return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{Error: "rate limit unavailable"})
			}
			return c.Next()
		}
		if !allowed {
			return c.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse{Error: "rate limit exceeded"})
		}
		return c.Next()
	}
}
