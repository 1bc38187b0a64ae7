package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

// Allower decides whether one more request is admitted for a caller
// identity. Implemented by the sliding-window limiter service.
type Allower interface {
	Allow(key string) bool
}

// RateLimitConfig holds rate limit middleware configuration.
type RateLimitConfig struct {
	Limiter    Allower
	RetryAfter time.Duration
	OnRejected func(key string)
}

// RateLimit rejects callers over quota before any handler work runs.
// The caller identity is the remote network address (echo resolves
// X-Forwarded-For/X-Real-IP when configured to trust them).
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	if cfg.RetryAfter <= 0 {
		cfg.RetryAfter = time.Second
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.RealIP()

			if cfg.Limiter != nil && !cfg.Limiter.Allow(key) {
				if cfg.OnRejected != nil {
					cfg.OnRejected(key)
				}
				c.Response().Header().Set("Retry-After", strconv.Itoa(int(cfg.RetryAfter.Seconds())))
				return c.JSON(http.StatusTooManyRequests, map[string]interface{}{
					"status":  http.StatusTooManyRequests,
					"message": "Too Many Requests",
				})
			}

			return next(c)
		}
	}
}
