package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// DefaultLoginAttempts is the per-IP login budget per minute.
const DefaultLoginAttempts = 20

// LoginLimiter caps login attempts per client IP per minute.
// A nil storage keeps the counters in process memory.
func LoginLimiter(max int, storage fiber.Storage) fiber.Handler {
	if max <= 0 {
		max = DefaultLoginAttempts
	}
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: time.Minute,
		Storage:    storage,
		KeyGenerator: func(c *fiber.Ctx) string {
			return "login:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"message": "Too many login attempts. Try again in a minute.",
			})
		},
	})
}
