package models

type ScoreRequest struct {
	ForceRecalculate bool   `json:"force_recalculate"`
	AlgorithmVersion string `json:"algorithm_version"`
	Async            bool   `json:"async"`
}

type ScoreResponse struct {
	ApplicationID    string            `json:"application_id"`
	AlgorithmVersion string            `json:"algorithm_version"`
	Status           string            `json:"status"`
	RuleScore        *int              `json:"rule_score,omitempty"`
	SemanticScore    *int              `json:"semantic_score,omitempty"`
	FinalScore       *int              `json:"final_score,omitempty"`
	Breakdown        *ScoringBreakdown `json:"breakdown,omitempty"`
	CalculatedAt     *string           `json:"calculated_at,omitempty"`
	ErrorMessage     *string           `json:"error_message,omitempty"`
}

type RecalculateRequest struct {
	AlgorithmVersion string `json:"algorithm_version"`
	BatchSize        int    `json:"batch_size"`
}

type RecalculateResponse struct {
	JobID          string             `json:"job_id"`
	Processed      []string           `json:"processed"`
	Errors         []RecalculateError `json:"errors"`
	ProcessedCount int                `json:"processed_count"`
	ErrorCount     int                `json:"error_count"`
}

type RecalculateError struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// NewScoreResponse flattens a stored score for API consumers. Score fields
// are only exposed for completed rows.
func NewScoreResponse(s *ATSScore) ScoreResponse {
	resp := ScoreResponse{
		ApplicationID:    s.ApplicationID.String(),
		AlgorithmVersion: s.AlgorithmVersion,
		Status:           string(s.Status),
		ErrorMessage:     s.ErrorMessage,
	}

	if s.Status == StatusCompleted {
		rule, semantic, final := s.RuleScore, s.SemanticScore, s.FinalScore
		breakdown := s.Breakdown.Data()
		resp.RuleScore = &rule
		resp.SemanticScore = &semantic
		resp.FinalScore = &final
		resp.Breakdown = &breakdown
	}

	if s.CalculatedAt != nil {
		ts := s.CalculatedAt.Format("2006-01-02T15:04:05Z07:00")
		resp.CalculatedAt = &ts
	}

	return resp
}
