package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"kodkariyer/ats-engine/internal/models"
)

type CandidateRepository interface {
	FindProfile(ctx context.Context, developerID, cvID uuid.UUID) (*models.CandidateProfile, error)
	FindCVsMissingText(ctx context.Context, limit int) ([]models.CV, error)
	FindCVsMissingEmbeddings(ctx context.Context, limit int) ([]models.CV, error)
	SaveCVText(ctx context.Context, cvID uuid.UUID, text string) error
	SaveCVEmbedding(ctx context.Context, cvID uuid.UUID, embedding []float32) error
	MarkCVVectorIndexed(ctx context.Context, cvID uuid.UUID) error
}

type candidateRepository struct {
	db *gorm.DB
}

func NewCandidateRepository(db *gorm.DB) CandidateRepository {
	return &candidateRepository{db: db}
}

// FindProfile loads the developer with skills and education history and
// merges in the CV. A missing developer is ErrNotFound; a missing CV only
// leaves the CV-derived fields empty.
func (r *candidateRepository) FindProfile(ctx context.Context, developerID, cvID uuid.UUID) (*models.CandidateProfile, error) {
	db := r.db.WithContext(ctx)

	var dev models.Developer
	if err := db.Preload("Skills").Preload("Educations").Where("id = ?", developerID).First(&dev).Error; err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("developer %s: %w", developerID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find developer: %w", err)
	}

	var cv *models.CV
	var row models.CV
	err := db.Where("id = ?", cvID).First(&row).Error
	switch {
	case err == nil:
		cv = &row
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return nil, fmt.Errorf("failed to find cv: %w", err)
	}

	return CandidateProfileFrom(&dev, cv), nil
}

func (r *candidateRepository) FindCVsMissingText(ctx context.Context, limit int) ([]models.CV, error) {
	var cvs []models.CV
	err := r.db.WithContext(ctx).
		Where("(raw_text IS NULL OR raw_text = '') AND file_path <> ''").
		Order("created_at ASC").
		Limit(limit).
		Find(&cvs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find cvs without text: %w", err)
	}
	return cvs, nil
}

func (r *candidateRepository) FindCVsMissingEmbeddings(ctx context.Context, limit int) ([]models.CV, error) {
	var cvs []models.CV
	err := r.db.WithContext(ctx).
		Where("embedding IS NULL AND vector_indexed_at IS NULL AND raw_text <> ''").
		Order("created_at ASC").
		Limit(limit).
		Find(&cvs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find cvs without embeddings: %w", err)
	}
	return cvs, nil
}

func (r *candidateRepository) SaveCVText(ctx context.Context, cvID uuid.UUID, text string) error {
	return r.updateCV(ctx, cvID, "raw_text", text)
}

func (r *candidateRepository) SaveCVEmbedding(ctx context.Context, cvID uuid.UUID, embedding []float32) error {
	vec := pgvector.NewVector(embedding)
	return r.updateCV(ctx, cvID, "embedding", &vec)
}

// MarkCVVectorIndexed records that the CV vector was written to the
// external vector store.
func (r *candidateRepository) MarkCVVectorIndexed(ctx context.Context, cvID uuid.UUID) error {
	return r.updateCV(ctx, cvID, "vector_indexed_at", time.Now())
}

func (r *candidateRepository) updateCV(ctx context.Context, cvID uuid.UUID, column string, value interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&models.CV{}).
		Where("id = ?", cvID).
		Update(column, value)
	if result.Error != nil {
		return fmt.Errorf("failed to update cv %s: %w", column, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("cv %s: %w", cvID, ErrNotFound)
	}
	return nil
}

// CandidateProfileFrom builds the scoring view of a developer. cv may be nil.
func CandidateProfileFrom(dev *models.Developer, cv *models.CV) *models.CandidateProfile {
	profileSkills := make([]string, 0, len(dev.Skills))
	for _, s := range dev.Skills {
		profileSkills = append(profileSkills, s.SkillName)
	}

	profile := &models.CandidateProfile{
		DeveloperID:     dev.ID,
		ExperienceYears: dev.ExperienceYears,
		Seniority:       models.ParseExperienceLevel(dev.Seniority),
		Education:       highestEducation(dev.Educations),
	}

	if cv != nil {
		profile.CVID = cv.ID
		profile.CVText = cv.RawText
		profile.Skills = models.NormalizeSkills(profileSkills, cv.ParsedSkills)
		if cv.Embedding != nil {
			profile.Embedding = cv.Embedding.Slice()
		}
	} else {
		profile.Skills = models.NormalizeSkills(profileSkills)
	}

	return profile
}

// highestEducation picks the record with the highest degree on the ladder.
// Records with an unrecognized degree still count as education history.
func highestEducation(records []models.Education) *models.EducationRecord {
	if len(records) == 0 {
		return nil
	}

	best := models.EducationRecord{
		Degree:       models.ParseEducationLevel(records[0].Degree),
		FieldOfStudy: records[0].FieldOfStudy,
	}
	for _, rec := range records[1:] {
		degree := models.ParseEducationLevel(rec.Degree)
		if degree.Rank() > best.Degree.Rank() {
			best = models.EducationRecord{Degree: degree, FieldOfStudy: rec.FieldOfStudy}
		}
	}
	return &best
}
