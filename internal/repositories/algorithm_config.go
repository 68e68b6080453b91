package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"kodkariyer/ats-engine/internal/models"
)

type AlgorithmConfigRepository interface {
	FindActive(ctx context.Context) (*models.AlgorithmConfigRecord, error)
	FindByVersion(ctx context.Context, version string) (*models.AlgorithmConfigRecord, error)
}

type algorithmConfigRepository struct {
	db *gorm.DB
}

func NewAlgorithmConfigRepository(db *gorm.DB) AlgorithmConfigRepository {
	return &algorithmConfigRepository{db: db}
}

// FindActive returns the most recently created active configuration.
func (r *algorithmConfigRepository) FindActive(ctx context.Context) (*models.AlgorithmConfigRecord, error) {
	var rec models.AlgorithmConfigRecord
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at DESC").
		First(&rec).Error
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("active algorithm config: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find active algorithm config: %w", err)
	}
	return &rec, nil
}

func (r *algorithmConfigRepository) FindByVersion(ctx context.Context, version string) (*models.AlgorithmConfigRecord, error) {
	var rec models.AlgorithmConfigRecord
	if err := r.db.WithContext(ctx).Where("version = ?", version).First(&rec).Error; err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("algorithm config %s: %w", version, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find algorithm config: %w", err)
	}
	return &rec, nil
}
