package middleware

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/fadilmartias/resume-scanner/internal/util"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// RateLimiter allows max requests per client IP within a sliding window.
// WebSocket upgrades are exempt: one socket carries a whole batch.
func RateLimiter(max int, expiration time.Duration) fiber.Handler {
	if max == 0 {
		max = 50
	}
	if expiration == 0 {
		expiration = 1 * time.Minute
	}
	// Retry-After takes whole seconds
	retryAfter := strconv.Itoa(int(math.Ceil(expiration.Seconds())))
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: expiration,
		Next: func(c *fiber.Ctx) bool {
			return strings.EqualFold(c.Get(fiber.HeaderUpgrade), "websocket")
		},
		LimitReached: func(c *fiber.Ctx) error {
			c.Set(fiber.HeaderRetryAfter, retryAfter)
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusTooManyRequests,
				Message: "Too many requests, please slow down",
			})
		},
		LimiterMiddleware: limiter.SlidingWindow{},
	})
}
