package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"kodkariyer/ats-engine/internal/models"
	"kodkariyer/ats-engine/internal/services"
)

type RecalculateHandler struct {
	batchService     services.BatchService
	defaultBatchSize int
	log              *zap.Logger
}

func NewRecalculateHandler(batchService services.BatchService, defaultBatchSize int, log *zap.Logger) *RecalculateHandler {
	return &RecalculateHandler{
		batchService:     batchService,
		defaultBatchSize: defaultBatchSize,
		log:              log,
	}
}

// HandleRecalculate handles POST /jobs/:id/recalculate
func (h *RecalculateHandler) HandleRecalculate(c *fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid job ID format",
		})
	}

	var req models.RecalculateRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request payload",
			})
		}
	}

	if req.BatchSize < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "batch_size must be positive",
		})
	}
	if req.BatchSize == 0 {
		req.BatchSize = h.defaultBatchSize
	}

	result, err := h.batchService.RecalculateForJob(c.UserContext(), jobID, services.RecalculateOptions{
		AlgorithmVersion: req.AlgorithmVersion,
		BatchSize:        req.BatchSize,
	})
	if err != nil {
		h.log.Error("job recalculation failed", zap.String("job_id", jobID.String()), zap.Error(err))
		return errorResponse(c, err)
	}

	return c.JSON(NewRecalculateResponse(jobID, result))
}

func NewRecalculateResponse(jobID uuid.UUID, result *services.RecalculateResult) models.RecalculateResponse {
	resp := models.RecalculateResponse{
		JobID:          jobID.String(),
		Processed:      make([]string, 0, len(result.Processed)),
		Errors:         make([]models.RecalculateError, 0, len(result.Errors)),
		ProcessedCount: len(result.Processed),
		ErrorCount:     len(result.Errors),
	}

	for _, id := range result.Processed {
		resp.Processed = append(resp.Processed, id.String())
	}
	for _, e := range result.Errors {
		resp.Errors = append(resp.Errors, models.RecalculateError{ID: e.ID.String(), Error: e.Error})
	}

	return resp
}
