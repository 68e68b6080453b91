package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"kodkariyer/ats-engine/internal/services"
)

// MsgAnalysisFailed is returned to clients for every non-NotFound failure.
// Details only go to the log.
const MsgAnalysisFailed = "Analiz başarısız oldu"

func errorResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrApplicationNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Application not found"})
	case errors.Is(err, services.ErrJobNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Job not found"})
	case errors.Is(err, services.ErrCandidateNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Candidate not found"})
	case errors.Is(err, services.ErrScoreNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Score not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": MsgAnalysisFailed})
	}
}
