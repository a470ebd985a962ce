package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const RequestIdHeader = "X-Request-Id"

// RequestIdMiddleware tags every request with an id, keeping the caller's
// id when one is already present.
func RequestIdMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid := c.Get(RequestIdHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Locals("requestId", rid)
		c.Set(RequestIdHeader, rid)
		return c.Next()
	}
}
