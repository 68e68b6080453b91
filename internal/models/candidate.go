package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

type Developer struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	FullName        string    `gorm:"type:text" json:"full_name"`
	Seniority       string    `gorm:"type:text" json:"seniority"`
	ExperienceYears float64   `gorm:"type:decimal(4,1);default:0" json:"experience_years"`
	CreatedAt       time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`

	Skills     []DeveloperSkill `gorm:"foreignKey:DeveloperID" json:"skills,omitempty"`
	Educations []Education      `gorm:"foreignKey:DeveloperID" json:"educations,omitempty"`
}

func (Developer) TableName() string {
	return "developers"
}

type DeveloperSkill struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	DeveloperID uuid.UUID `gorm:"type:uuid;not null;index" json:"developer_id"`
	SkillName   string    `gorm:"type:text;not null" json:"skill_name"`
}

func (DeveloperSkill) TableName() string {
	return "developer_skills"
}

type Education struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	DeveloperID  uuid.UUID `gorm:"type:uuid;not null;index" json:"developer_id"`
	School       string    `gorm:"type:text" json:"school"`
	Degree       string    `gorm:"type:text" json:"degree"`
	FieldOfStudy string    `gorm:"type:text" json:"field_of_study"`
	EndYear      *int      `json:"end_year,omitempty"`
}

func (Education) TableName() string {
	return "educations"
}

// CV is an uploaded resume. RawText and ParsedSkills are filled by the
// parsing pipeline; Embedding, or VectorIndexedAt when vectors live in
// Qdrant, by scripts/index_embeddings.go.
type CV struct {
	ID           uuid.UUID        `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	DeveloperID  uuid.UUID        `gorm:"type:uuid;not null;index" json:"developer_id"`
	FilePath     string           `gorm:"type:text" json:"file_path"`
	RawText      string           `gorm:"type:text" json:"raw_text"`
	ParsedSkills pq.StringArray   `gorm:"type:text[]" json:"parsed_skills"`
	Embedding    *pgvector.Vector `gorm:"type:vector(768)" json:"-"`
	// VectorIndexedAt is set once the CV vector is stored in Qdrant.
	VectorIndexedAt *time.Time `json:"-"`
	CreatedAt       time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (CV) TableName() string {
	return "cvs"
}
