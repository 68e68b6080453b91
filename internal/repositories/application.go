package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"kodkariyer/ats-engine/internal/models"
)

type ApplicationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Application, error)
	ListIDsByJob(ctx context.Context, jobID uuid.UUID) ([]uuid.UUID, error)
	UpdateMatch(ctx context.Context, id uuid.UUID, update *MatchUpdate) error
}

// MatchUpdate is the denormalized copy of a score written to the
// application row.
type MatchUpdate struct {
	Score   int
	Reason  string
	Details models.ScoringBreakdown
}

type applicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	var app models.Application
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&app).Error; err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("application %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find application: %w", err)
	}
	return &app, nil
}

func (r *applicationRepository) ListIDsByJob(ctx context.Context, jobID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.Application{}).
		Where("job_id = ?", jobID).
		Order("created_at ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list applications for job: %w", err)
	}
	return ids, nil
}

// UpdateMatch overwrites the denormalized fields. Concurrent writers are
// not serialized; the last write wins.
func (r *applicationRepository) UpdateMatch(ctx context.Context, id uuid.UUID, update *MatchUpdate) error {
	result := r.db.WithContext(ctx).
		Model(&models.Application{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"match_score":   update.Score,
			"match_reason":  update.Reason,
			"match_details": datatypes.NewJSONType(update.Details),
			"updated_at":    time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update application match: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("application %s: %w", id, ErrNotFound)
	}

	return nil
}
