package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"kodkariyer/ats-engine/internal/metrics"
)

// Register mounts the API under /api/v1 and the prometheus endpoint.
func Register(app *fiber.App, score *ScoreHandler, recalc *RecalculateHandler) {
	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	api.Post("/applications/:id/score", score.HandleScore)
	api.Get("/applications/:id/score", score.HandleGetScore)
	api.Post("/jobs/:id/recalculate", recalc.HandleRecalculate)

	app.Get("/metrics", metrics.MetricsHandler())
}
