package middleware

import (
	"errors"
	"time"

	"github.com/Kamey12/Apex-Inventory-System/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// RequestLogger writes one structured line per request.
func RequestLogger(l *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}

		var evt *zerolog.Event
		switch {
		case status >= fiber.StatusInternalServerError:
			evt = l.Error().Err(err)
		case status >= fiber.StatusBadRequest:
			evt = l.Warn()
		default:
			evt = l.Info()
		}
		evt.Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("ip", c.IP()).
			Msg("request")
		return err
	}
}
