package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ScoreStatus string

const (
	StatusPending     ScoreStatus = "pending"
	StatusCalculating ScoreStatus = "calculating"
	StatusCompleted   ScoreStatus = "completed"
	StatusFailed      ScoreStatus = "failed"
)

// ATSScore is unique per (application, algorithm version). Rows for other
// versions are never touched when one version is recomputed.
type ATSScore struct {
	ID               uuid.UUID                            `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ApplicationID    uuid.UUID                            `gorm:"type:uuid;not null;uniqueIndex:idx_ats_scores_application_version" json:"application_id"`
	AlgorithmVersion string                               `gorm:"type:text;not null;uniqueIndex:idx_ats_scores_application_version" json:"algorithm_version"`
	RuleScore        int                                  `gorm:"not null;default:0" json:"rule_score"`
	SemanticScore    int                                  `gorm:"not null;default:0" json:"semantic_score"`
	FinalScore       int                                  `gorm:"not null;default:0" json:"final_score"`
	Breakdown        datatypes.JSONType[ScoringBreakdown] `gorm:"type:jsonb" json:"breakdown"`
	Status           ScoreStatus                          `gorm:"not null;default:'pending'" json:"status"`
	ErrorMessage     *string                              `gorm:"type:text" json:"error_message,omitempty"`
	CalculatedAt     *time.Time                           `json:"calculated_at,omitempty"`
	CreatedAt        time.Time                            `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time                            `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (ATSScore) TableName() string {
	return "ats_scores"
}

// MatchingLog is an append-only audit row written once per semantic
// computation.
type MatchingLog struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ApplicationID    uuid.UUID `gorm:"type:uuid;not null;index" json:"application_id"`
	JobID            uuid.UUID `gorm:"type:uuid;not null" json:"job_id"`
	CVID             uuid.UUID `gorm:"column:cv_id;type:uuid;not null" json:"cv_id"`
	AlgorithmVersion string    `gorm:"type:text" json:"algorithm_version"`
	Model            string    `gorm:"type:text" json:"model"`
	Source           string    `gorm:"type:text" json:"source"`
	CosineSimilarity *float64  `json:"cosine_similarity,omitempty"`
	Tokens           int       `json:"tokens"`
	LatencyMS        int64     `json:"latency_ms"`
	CreatedAt        time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (MatchingLog) TableName() string {
	return "matching_logs"
}

type AlgorithmConfigRecord struct {
	ID                  uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Version             string    `gorm:"type:text;not null;uniqueIndex" json:"version"`
	RuleWeight          float64   `gorm:"not null" json:"rule_weight"`
	SemanticWeight      float64   `gorm:"not null" json:"semantic_weight"`
	SkillWeight         float64   `gorm:"not null" json:"skill_weight"`
	ExperienceWeight    float64   `gorm:"not null" json:"experience_weight"`
	EducationWeight     float64   `gorm:"not null" json:"education_weight"`
	OptionalBonusWeight float64   `gorm:"not null" json:"optional_bonus_weight"`
	IsActive            bool      `gorm:"not null;default:false;index" json:"is_active"`
	CreatedAt           time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (AlgorithmConfigRecord) TableName() string {
	return "algorithm_configs"
}

func (r AlgorithmConfigRecord) Weights() AlgorithmWeights {
	return AlgorithmWeights{
		RuleWeight:          r.RuleWeight,
		SemanticWeight:      r.SemanticWeight,
		SkillWeight:         r.SkillWeight,
		ExperienceWeight:    r.ExperienceWeight,
		EducationWeight:     r.EducationWeight,
		OptionalBonusWeight: r.OptionalBonusWeight,
	}
}
