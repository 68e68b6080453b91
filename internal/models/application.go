package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Application links a developer's CV to a job. MatchScore, MatchReason and
// MatchDetails are a denormalized copy of the latest ATS result.
type Application struct {
	ID           uuid.UUID                             `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	JobID        uuid.UUID                             `gorm:"type:uuid;not null;index" json:"job_id"`
	DeveloperID  uuid.UUID                             `gorm:"type:uuid;not null;index" json:"developer_id"`
	CVID         uuid.UUID                             `gorm:"column:cv_id;type:uuid;not null" json:"cv_id"`
	MatchScore   *int                                  `json:"match_score,omitempty"`
	MatchReason  *string                               `gorm:"type:text" json:"match_reason,omitempty"`
	MatchDetails *datatypes.JSONType[ScoringBreakdown] `gorm:"type:jsonb" json:"match_details,omitempty"`
	CreatedAt    time.Time                             `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time                             `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Application) TableName() string {
	return "applications"
}
