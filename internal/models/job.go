package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type Job struct {
	ID                   uuid.UUID        `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Title                string           `gorm:"type:text" json:"title"`
	Description          string           `gorm:"type:text" json:"description"`
	Requirements         string           `gorm:"type:text" json:"requirements"`
	Responsibilities     string           `gorm:"type:text" json:"responsibilities"`
	MinExperienceYears   *int             `json:"min_experience_years,omitempty"`
	ExperienceLevel      string           `gorm:"type:text" json:"experience_level"`
	EducationRequirement string           `gorm:"type:text" json:"education_requirement"`
	Embedding            *pgvector.Vector `gorm:"type:vector(768)" json:"-"`
	VectorIndexedAt      *time.Time       `json:"-"`
	CreatedAt            time.Time        `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt            time.Time        `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`

	Skills []JobSkill `gorm:"foreignKey:JobID" json:"skills,omitempty"`
}

func (Job) TableName() string {
	return "jobs"
}

type JobSkill struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	JobID      uuid.UUID `gorm:"type:uuid;not null;index" json:"job_id"`
	SkillName  string    `gorm:"type:text;not null" json:"skill_name"`
	IsRequired bool      `gorm:"not null;default:true" json:"is_required"`
}

func (JobSkill) TableName() string {
	return "job_skills"
}
