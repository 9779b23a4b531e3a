package mockapi

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// NewServer wires the mock weather responder. Weather routes require a
// valid X-API-Key header; health and the index do not.
func NewServer(keys *KeyManager, gen *Generator, log *zap.SugaredLogger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "weather-api",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(recover.New())
	app.Use(logger.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message":        "Weather Data API",
			"authentication": "API key required - use the X-API-Key header",
			"endpoints": fiber.Map{
				"GET /weather":       "weather by ?city=&country=&unit= query parameters",
				"GET /weather/:city": "weather by city path parameter",
				"GET /health":        "health check, no authentication",
			},
		})
	})

	auth := requireAPIKey(keys, log)

	app.Get("/weather", auth, func(c *fiber.Ctx) error {
		city := c.Query("city")
		if city == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "City parameter is required",
			})
		}
		return c.JSON(gen.Generate(city, c.Query("country"), c.Query("unit", "m")))
	})

	app.Get("/weather/:city", auth, func(c *fiber.Ctx) error {
		return c.JSON(gen.Generate(c.Params("city"), c.Query("country"), c.Query("unit", "m")))
	})

	return app
}

// requireAPIKey rejects requests without a whitelisted key, with the
// structured error bodies the upstream API uses.
func requireAPIKey(keys *KeyManager, log *zap.SugaredLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		apiKey := c.Get("X-API-Key")

		if apiKey == "" {
			log.Warnw("request without API key", "ip", c.IP(), "path", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error": fiber.Map{
					"code": fiber.StatusUnauthorized,
					"type": "unauthorized",
					"info": "Invalid or missing API key. Please provide a valid API key in the X-API-Key header.",
				},
			})
		}

		if !keys.IsValid(apiKey) {
			log.Warnw("invalid API key attempt", "ip", c.IP(), "key_name", keys.Info(apiKey).Name)
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"error": fiber.Map{
					"code": fiber.StatusForbidden,
					"type": "forbidden",
					"info": "API key not authorized",
				},
			})
		}

		log.Infow("API request authorized", "key_name", keys.Info(apiKey).Name, "path", c.Path())
		return c.Next()
	}
}
