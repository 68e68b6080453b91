package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"kodkariyer/ats-engine/internal/models"
	"kodkariyer/ats-engine/internal/repositories"
	"kodkariyer/ats-engine/internal/services"
)

type ScoreHandler struct {
	appRepo    repositories.ApplicationRepository
	scoreRepo  repositories.ScoreRepository
	atsService services.ATSService
	worker     services.Worker
	log        *zap.Logger
}

func NewScoreHandler(
	appRepo repositories.ApplicationRepository,
	scoreRepo repositories.ScoreRepository,
	atsService services.ATSService,
	worker services.Worker,
	log *zap.Logger,
) *ScoreHandler {
	return &ScoreHandler{
		appRepo:    appRepo,
		scoreRepo:  scoreRepo,
		atsService: atsService,
		worker:     worker,
		log:        log,
	}
}

// HandleScore handles POST /applications/:id/score
func (h *ScoreHandler) HandleScore(c *fiber.Ctx) error {
	appID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid application ID format",
		})
	}

	var req models.ScoreRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request payload",
			})
		}
	}

	if req.Async {
		return h.enqueue(c, appID, req)
	}

	score, err := h.atsService.ComputeScore(c.UserContext(), appID, services.ComputeOptions{
		ForceRecalculate: req.ForceRecalculate,
		AlgorithmVersion: req.AlgorithmVersion,
	})
	if err != nil {
		h.log.Error("score computation failed", zap.String("application_id", appID.String()), zap.Error(err))
		return errorResponse(c, err)
	}

	return c.JSON(models.NewScoreResponse(score))
}

// enqueue returns a completed score straight away unless recalculation is
// forced. Otherwise it marks the row pending and hands it to the worker.
func (h *ScoreHandler) enqueue(c *fiber.Ctx, appID uuid.UUID, req models.ScoreRequest) error {
	ctx := c.UserContext()

	if _, err := h.appRepo.FindByID(ctx, appID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return errorResponse(c, services.ErrApplicationNotFound)
		}
		h.log.Error("failed to load application", zap.String("application_id", appID.String()), zap.Error(err))
		return errorResponse(c, err)
	}

	version := h.atsService.ResolveVersion(ctx, req.AlgorithmVersion)

	if !req.ForceRecalculate {
		existing, err := h.scoreRepo.FindByApplicationAndVersion(ctx, appID, version)
		if err == nil && existing.Status == models.StatusCompleted {
			return c.JSON(models.NewScoreResponse(existing))
		}
	}

	if err := h.scoreRepo.MarkPending(ctx, appID, version); err != nil {
		h.log.Error("failed to mark score pending", zap.String("application_id", appID.String()), zap.Error(err))
		return errorResponse(c, err)
	}

	h.worker.EnqueueApplication(appID, version)

	return c.Status(fiber.StatusAccepted).JSON(models.ScoreResponse{
		ApplicationID:    appID.String(),
		AlgorithmVersion: version,
		Status:           string(models.StatusPending),
	})
}

// HandleGetScore handles GET /applications/:id/score
func (h *ScoreHandler) HandleGetScore(c *fiber.Ctx) error {
	appID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid application ID format",
		})
	}

	score, err := h.atsService.GetScore(c.UserContext(), appID, c.Query("version"))
	if err != nil {
		if !errors.Is(err, services.ErrScoreNotFound) {
			h.log.Error("failed to load score", zap.String("application_id", appID.String()), zap.Error(err))
		}
		return errorResponse(c, err)
	}

	return c.JSON(models.NewScoreResponse(score))
}
