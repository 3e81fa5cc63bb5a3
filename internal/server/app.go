// Package server assembles the Fiber application serving the catalog API.
package server

import (
	"errors"
	"log/slog"
	"time"

	"catalog/internal/handlers"
	"catalog/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// Pinger reports whether the backing store is reachable.
type Pinger func() error

// Options configures NewApp.
type Options struct {
	ProductService *services.ProductService
	// HealthCheck is consulted by GET /health; nil means the store is always reported up.
	HealthCheck Pinger
	// RequestLog enables fiber's access log middleware.
	RequestLog bool
}

// NewApp builds the Fiber app with middleware, health check and product routes.
func NewApp(opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "catalog",
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	if opts.RequestLog {
		app.Use(logger.New(logger.Config{
			Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
		}))
	}

	app.Get("/health", healthHandler(opts.HealthCheck))

	handlers.NewProductHandler(opts.ProductService).RegisterRoutes(app)

	return app
}

func healthHandler(check Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status, dbState := fiber.StatusOK, "connected"
		if check != nil {
			if err := check(); err != nil {
				slog.Warn("health_check_failed", "error", err)
				status, dbState = fiber.StatusServiceUnavailable, "unreachable"
			}
		}
		health := "healthy"
		if status != fiber.StatusOK {
			health = "unhealthy"
		}
		return c.Status(status).JSON(fiber.Map{
			"status":   health,
			"time":     time.Now().Format(time.RFC3339),
			"database": dbState,
		})
	}
}

// errorHandler renders errors that escape handlers, such as unknown routes, as JSON.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		slog.Error("unhandled_error", "method", c.Method(), "path", c.Path(), "error", err)
	}
	return c.Status(code).JSON(fiber.Map{
		"message": err.Error(),
	})
}
