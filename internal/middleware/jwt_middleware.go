package middleware

import (
	"strings"

	"github.com/Kamey12/Apex-Inventory-System/internal/models"
	"github.com/Kamey12/Apex-Inventory-System/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

const sessionKey = "session"

// AuthRequired is a Fiber middleware to check for a valid JWT token.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Not authorized, no token",
			})
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") && parts[1] != "") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		session, err := authService.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			log.Debug().Err(err).Str("path", c.Path()).Msg("token rejected")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Not authorized, token failed",
			})
		}

		c.Locals(sessionKey, session)
		return c.Next()
	}
}

// RequireRole rejects sessions whose role does not satisfy role. It must run after AuthRequired.
func RequireRole(role models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session := CurrentSession(c)
		if session == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Not authorized, no token",
			})
		}
		if !session.Role.Satisfies(role) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Access Denied. Admins only.",
			})
		}
		return c.Next()
	}
}

// AdminOnly is RequireRole(models.RoleAdmin).
func AdminOnly() fiber.Handler {
	return RequireRole(models.RoleAdmin)
}

// CurrentSession returns the session stored by AuthRequired, or nil.
func CurrentSession(c *fiber.Ctx) *models.Session {
	session, _ := c.Locals(sessionKey).(*models.Session)
	return session
}
