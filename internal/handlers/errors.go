package handlers

import (
	"errors"

	"github.com/Kamey12/Apex-Inventory-System/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

type errorMapping struct {
	target  error
	status  int
	message string
}

var errorMappings = []errorMapping{
	{services.ErrInvalidCredentials, fiber.StatusUnauthorized, "Invalid username or password"},
	{services.ErrInvalidToken, fiber.StatusUnauthorized, "Not authorized, token failed"},
	{services.ErrUserNotFound, fiber.StatusNotFound, "No account found with that username"},
	{services.ErrProductNotFound, fiber.StatusNotFound, "Product not found"},
	{services.ErrUsernameTaken, fiber.StatusConflict, "Username already exists"},
	{services.ErrSKUTaken, fiber.StatusConflict, "A product with this SKU already exists"},
	{services.ErrInvalidRole, fiber.StatusBadRequest, "Role must be admin or staff"},
	{services.ErrInvalidResetToken, fiber.StatusBadRequest, "Invalid or expired token"},
	{services.ErrPasswordMismatch, fiber.StatusBadRequest, "Passwords do not match"},
	{services.ErrInvalidProduct, fiber.StatusBadRequest, "Price, quantity and threshold must not be negative"},
	{services.ErrInvalidQuantity, fiber.StatusBadRequest, "Please provide a valid quantity"},
	{services.ErrInsufficientStock, fiber.StatusBadRequest, "Not enough stock!"},
}

// respondError writes the status and message that belong to err.
// Errors that are not domain errors become a 500 and are only detailed in the log.
func respondError(c *fiber.Ctx, err error, action string) error {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			log.Debug().Err(err).Str("path", c.Path()).Msg(action)
			return c.Status(m.status).JSON(fiber.Map{"message": m.message})
		}
	}

	log.Error().Err(err).Str("path", c.Path()).Msg(action)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Server error",
	})
}
