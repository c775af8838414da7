package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ecomlens/reviewradar/internal/store"
)

// RegisterRoutes wires the HTTP surface. cache may be nil when the result
// cache is disabled; the health probe then skips its check.
func RegisterRoutes(app *fiber.App, h *ScrapeHandler, cache store.Cache) {
	app.Use(recover.New())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		status := "ok"
		code := fiber.StatusOK
		checks := map[string]string{}

		if cache != nil {
			checks["cache"] = "ok"
			healthCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := cache.HealthCheck(healthCtx); err != nil {
				checks["cache"] = err.Error()
				status = "degraded"
				code = fiber.StatusServiceUnavailable
			}
		}

		resp := fiber.Map{
			"status":    status,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		}
		if len(checks) > 0 {
			resp["checks"] = checks
		}
		return c.Status(code).JSON(resp)
	})

	app.Post("/scrape", h.Scrape)
}
