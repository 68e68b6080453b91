package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"kodkariyer/ats-engine/internal/models"
)

type ScoreRepository interface {
	FindByApplicationAndVersion(ctx context.Context, applicationID uuid.UUID, version string) (*models.ATSScore, error)
	Upsert(ctx context.Context, score *models.ATSScore) error
	MarkPending(ctx context.Context, applicationID uuid.UUID, version string) error
	UpdateStatus(ctx context.Context, applicationID uuid.UUID, version string, status models.ScoreStatus) error
	UpdateError(ctx context.Context, applicationID uuid.UUID, version string, errorMsg string) error
	FindPending(ctx context.Context, limit int) ([]models.ATSScore, error)
	ListByJob(ctx context.Context, jobID uuid.UUID, version string) ([]models.ATSScore, error)
}

var scoreKey = []clause.Column{{Name: "application_id"}, {Name: "algorithm_version"}}

type scoreRepository struct {
	db *gorm.DB
}

func NewScoreRepository(db *gorm.DB) ScoreRepository {
	return &scoreRepository{db: db}
}

func (r *scoreRepository) FindByApplicationAndVersion(ctx context.Context, applicationID uuid.UUID, version string) (*models.ATSScore, error) {
	var score models.ATSScore
	err := r.db.WithContext(ctx).
		Where("application_id = ? AND algorithm_version = ?", applicationID, version).
		First(&score).Error
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("score for application %s version %s: %w", applicationID, version, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find score: %w", err)
	}
	return &score, nil
}

// Upsert inserts the score or replaces the row with the same
// (application_id, algorithm_version). Rows of other versions are left
// alone. On return score.ID holds the persisted row's id.
func (r *scoreRepository) Upsert(ctx context.Context, score *models.ATSScore) error {
	if score.ID == uuid.Nil {
		score.ID = uuid.New()
	}
	score.UpdatedAt = time.Now()

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: scoreKey,
			DoUpdates: clause.AssignmentColumns([]string{
				"rule_score",
				"semantic_score",
				"final_score",
				"breakdown",
				"status",
				"error_message",
				"calculated_at",
				"updated_at",
			}),
		}).
		Create(score).Error
	if err != nil {
		return fmt.Errorf("failed to upsert score: %w", err)
	}

	var id uuid.UUID
	err = r.db.WithContext(ctx).
		Model(&models.ATSScore{}).
		Where("application_id = ? AND algorithm_version = ?", score.ApplicationID, score.AlgorithmVersion).
		Pluck("id", &id).Error
	if err == nil && id != uuid.Nil {
		score.ID = id
	}

	return nil
}

func (r *scoreRepository) MarkPending(ctx context.Context, applicationID uuid.UUID, version string) error {
	score := &models.ATSScore{
		ID:               uuid.New(),
		ApplicationID:    applicationID,
		AlgorithmVersion: version,
		Status:           models.StatusPending,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   scoreKey,
			DoUpdates: clause.AssignmentColumns([]string{"status", "error_message", "updated_at"}),
		}).
		Create(score).Error
	if err != nil {
		return fmt.Errorf("failed to mark score pending: %w", err)
	}
	return nil
}

func (r *scoreRepository) UpdateStatus(ctx context.Context, applicationID uuid.UUID, version string, status models.ScoreStatus) error {
	return r.update(ctx, applicationID, version, map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	})
}

func (r *scoreRepository) UpdateError(ctx context.Context, applicationID uuid.UUID, version string, errorMsg string) error {
	return r.update(ctx, applicationID, version, map[string]interface{}{
		"status":        models.StatusFailed,
		"error_message": errorMsg,
		"updated_at":    time.Now(),
	})
}

func (r *scoreRepository) update(ctx context.Context, applicationID uuid.UUID, version string, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&models.ATSScore{}).
		Where("application_id = ? AND algorithm_version = ?", applicationID, version).
		Updates(updates)

	if result.Error != nil {
		return fmt.Errorf("failed to update score: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("score for application %s version %s: %w", applicationID, version, ErrNotFound)
	}

	return nil
}

func (r *scoreRepository) FindPending(ctx context.Context, limit int) ([]models.ATSScore, error) {
	var scores []models.ATSScore
	err := r.db.WithContext(ctx).
		Where("status = ?", models.StatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&scores).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find pending scores: %w", err)
	}
	return scores, nil
}

// ListByJob returns the completed scores of a job's applications for one
// version, best first.
func (r *scoreRepository) ListByJob(ctx context.Context, jobID uuid.UUID, version string) ([]models.ATSScore, error) {
	db := r.db.WithContext(ctx)
	jobApplications := db.Model(&models.Application{}).Select("id").Where("job_id = ?", jobID)

	var scores []models.ATSScore
	err := db.
		Where("algorithm_version = ? AND status = ?", version, models.StatusCompleted).
		Where("application_id IN (?)", jobApplications).
		Order("final_score DESC").
		Find(&scores).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list scores for job: %w", err)
	}
	return scores, nil
}
