package serverutils

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// RateLimiter caps requests per window per caller. Callers are keyed by
// their session cookie, falling back to the remote address. A nil storage
// keeps counters in process memory.
func RateLimiter(max int, window time.Duration, cookieName string, storage fiber.Storage) fiber.Handler {
	if max <= 0 {
		max = 100
	}
	if window <= 0 {
		window = time.Minute
	}
	cfg := limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(ctx *fiber.Ctx) string {
			if session := ctx.Cookies(cookieName); session != "" {
				return "session:" + session
			}
			return "ip:" + ctx.IP()
		},
		LimitReached: func(ctx *fiber.Ctx) error {
			return ctx.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse(fiber.StatusTooManyRequests, "Rate limit exceeded"))
		},
	}
	if storage != nil {
		cfg.Storage = storage
	}
	return limiter.New(cfg)
}
