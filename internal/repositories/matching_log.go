package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"kodkariyer/ats-engine/internal/models"
)

type MatchingLogRepository interface {
	Create(ctx context.Context, entry *models.MatchingLog) error
}

type matchingLogRepository struct {
	db *gorm.DB
}

func NewMatchingLogRepository(db *gorm.DB) MatchingLogRepository {
	return &matchingLogRepository{db: db}
}

func (r *matchingLogRepository) Create(ctx context.Context, entry *models.MatchingLog) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create matching log: %w", err)
	}
	return nil
}
