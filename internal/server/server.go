// Package server assembles the Fiber application: middleware, API routes and the static client.
package server

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/Kamey12/Apex-Inventory-System/internal/handlers"
	"github.com/Kamey12/Apex-Inventory-System/internal/middleware"
	"github.com/Kamey12/Apex-Inventory-System/internal/services"
	"github.com/Kamey12/Apex-Inventory-System/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// Options configures the application.
type Options struct {
	AuthService    *services.AuthService
	ProductService *services.ProductService
	Logger         *logger.Logger

	// LoginRateLimit is the number of login attempts allowed per IP per minute.
	LoginRateLimit int
	// LimiterStorage holds limiter counters. Nil keeps them in memory.
	LimiterStorage fiber.Storage
	// StaticDir, when set, is served at / with index.html as the fallback for client routes.
	StaticDir string
}

// New builds the Fiber application.
func New(opts Options) *fiber.App {
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}

	app := fiber.New(fiber.Config{
		AppName:      "Apex Inventory",
		ErrorHandler: errorHandler(opts.Logger),
	})

	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(opts.Logger))
	// Inside the request logger so recovered panics are still logged.
	app.Use(recover.New())
	app.Use(cors.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	api := app.Group("/api")
	protect := middleware.AuthRequired(opts.AuthService)

	handlers.NewAuthHandler(opts.AuthService).
		RegisterRoutes(api, protect, middleware.LoginLimiter(opts.LoginRateLimit, opts.LimiterStorage))
	handlers.NewProductHandler(opts.ProductService).RegisterRoutes(api, protect)

	api.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "Route not found")
	})

	if opts.StaticDir != "" {
		serveClient(app, opts.StaticDir)
	}
	return app
}

// serveClient serves the built client and falls back to index.html so client side routes load.
// It must be registered after the API catch-all.
func serveClient(app *fiber.App, dir string) {
	index := filepath.Join(dir, "index.html")
	app.Static("/", dir)
	app.Get("/*", func(c *fiber.Ctx) error {
		if _, err := os.Stat(index); err != nil {
			return fiber.ErrNotFound
		}
		return c.SendFile(index)
	})
}

func errorHandler(l *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Server error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		}
		if code >= fiber.StatusInternalServerError {
			l.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
			message = "Server error"
		}
		return c.Status(code).JSON(fiber.Map{"message": message})
	}
}
