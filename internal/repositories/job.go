package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"kodkariyer/ats-engine/internal/models"
)

type JobRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
	FindRequirements(ctx context.Context, id uuid.UUID) (*models.JobRequirements, error)
	FindMissingEmbeddings(ctx context.Context, limit int) ([]models.Job, error)
	SaveEmbedding(ctx context.Context, id uuid.UUID, embedding []float32) error
	MarkVectorIndexed(ctx context.Context, id uuid.UUID) error
}

type jobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{db: db}
}

func (r *jobRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	var job models.Job
	if err := r.db.WithContext(ctx).Preload("Skills").Where("id = ?", id).First(&job).Error; err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("job %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find job: %w", err)
	}
	return &job, nil
}

func (r *jobRepository) FindRequirements(ctx context.Context, id uuid.UUID) (*models.JobRequirements, error) {
	job, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return JobRequirementsFrom(job), nil
}

func (r *jobRepository) FindMissingEmbeddings(ctx context.Context, limit int) ([]models.Job, error) {
	var jobs []models.Job
	err := r.db.WithContext(ctx).
		Where("embedding IS NULL AND vector_indexed_at IS NULL").
		Order("created_at ASC").
		Limit(limit).
		Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find jobs without embeddings: %w", err)
	}
	return jobs, nil
}

func (r *jobRepository) SaveEmbedding(ctx context.Context, id uuid.UUID, embedding []float32) error {
	vec := pgvector.NewVector(embedding)
	result := r.db.WithContext(ctx).
		Model(&models.Job{}).
		Where("id = ?", id).
		Update("embedding", &vec)
	if result.Error != nil {
		return fmt.Errorf("failed to save job embedding: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	return nil
}

// MarkVectorIndexed records that the job vector was written to the external
// vector store, so later backfills skip the job.
func (r *jobRepository) MarkVectorIndexed(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&models.Job{}).
		Where("id = ?", id).
		Update("vector_indexed_at", time.Now())
	if result.Error != nil {
		return fmt.Errorf("failed to mark job indexed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	return nil
}

// JobRequirementsFrom converts a loaded job row into the value object used
// by the scorers.
func JobRequirementsFrom(job *models.Job) *models.JobRequirements {
	var required, optional []string
	for _, s := range job.Skills {
		if s.IsRequired {
			required = append(required, s.SkillName)
		} else {
			optional = append(optional, s.SkillName)
		}
	}

	req := &models.JobRequirements{
		JobID:                job.ID,
		Text:                 JobText(job),
		RequiredSkills:       models.NormalizeSkills(required),
		OptionalSkills:       models.NormalizeSkills(optional),
		MinExperienceYears:   job.MinExperienceYears,
		ExperienceLevel:      models.ParseExperienceLevel(job.ExperienceLevel),
		EducationRequirement: models.ParseEducationLevel(job.EducationRequirement),
	}
	if job.Embedding != nil {
		req.Embedding = job.Embedding.Slice()
	}
	return req
}

// JobText joins the free-text fields of a job into the text that is
// embedded and searched for field-of-study relevance.
func JobText(job *models.Job) string {
	var parts []string
	for _, p := range []string{job.Title, job.Description, job.Requirements, job.Responsibilities} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "\n\n")
}
