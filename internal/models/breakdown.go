package models

const BreakdownSchemaVersion = 1

type EmbeddingSource string

const (
	SourceStored    EmbeddingSource = "stored"
	SourceGenerated EmbeddingSource = "generated"
	SourceNone      EmbeddingSource = ""
)

// ScoringBreakdown is stored as JSON next to every score. It carries its
// own algorithm version and schema version so rows produced by older
// weight sets stay readable.
type ScoringBreakdown struct {
	SchemaVersion    int                `json:"schema_version"`
	AlgorithmVersion string             `json:"algorithm_version"`
	RuleWeight       float64            `json:"rule_weight"`
	SemanticWeight   float64            `json:"semantic_weight"`
	RuleScore        int                `json:"rule_score"`
	SemanticScore    int                `json:"semantic_score"`
	FinalScore       int                `json:"final_score"`
	Components       ComponentBreakdown `json:"components"`
	Skills           SkillMatch         `json:"skills"`
	Semantic         SemanticMetadata   `json:"semantic"`
	PositiveFactors  []string           `json:"positive_factors"`
	NegativeFactors  []string           `json:"negative_factors"`
}

type ComponentBreakdown struct {
	Skill         ComponentScore `json:"skill"`
	Experience    ComponentScore `json:"experience"`
	Education     ComponentScore `json:"education"`
	OptionalBonus ComponentScore `json:"optional_bonus"`
}

type ComponentScore struct {
	Score    int     `json:"score"`
	Weight   float64 `json:"weight"`
	Weighted float64 `json:"weighted"`
}

type SkillMatch struct {
	Matching         []string `json:"matching"`
	MissingRequired  []string `json:"missing_required"`
	MatchingOptional []string `json:"matching_optional"`
}

type SemanticMetadata struct {
	CosineSimilarity *float64        `json:"cosine_similarity"`
	Model            string          `json:"model,omitempty"`
	Source           EmbeddingSource `json:"source"`
	Tokens           int             `json:"tokens,omitempty"`
	LatencyMS        int64           `json:"latency_ms,omitempty"`
}
