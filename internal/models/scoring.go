package models

import (
	"strings"

	"github.com/google/uuid"
)

type ExperienceLevel string

const (
	LevelJunior ExperienceLevel = "junior"
	LevelMid    ExperienceLevel = "mid"
	LevelSenior ExperienceLevel = "senior"
	LevelLead   ExperienceLevel = "lead"
)

var experienceRanks = map[ExperienceLevel]int{
	LevelJunior: 0,
	LevelMid:    1,
	LevelSenior: 2,
	LevelLead:   3,
}

// Rank returns the position of the level on the junior..lead ladder, or -1
// for an unknown or empty level.
func (l ExperienceLevel) Rank() int {
	if r, ok := experienceRanks[l]; ok {
		return r
	}
	return -1
}

func ParseExperienceLevel(s string) ExperienceLevel {
	l := ExperienceLevel(strings.ToLower(strings.TrimSpace(s)))
	if l.Rank() < 0 {
		return ""
	}
	return l
}

type EducationLevel string

const (
	EducationHighSchool EducationLevel = "high_school"
	EducationAssociate  EducationLevel = "associate"
	EducationBachelor   EducationLevel = "bachelor"
	EducationMaster     EducationLevel = "master"
	EducationPhD        EducationLevel = "phd"
	EducationAny        EducationLevel = "any"
)

var educationRanks = map[EducationLevel]int{
	EducationHighSchool: 0,
	EducationAssociate:  1,
	EducationBachelor:   2,
	EducationMaster:     3,
	EducationPhD:        4,
}

// Rank returns the position on the high_school..phd ladder, or -1 for
// "any", empty and unknown values.
func (l EducationLevel) Rank() int {
	if r, ok := educationRanks[l]; ok {
		return r
	}
	return -1
}

func ParseEducationLevel(s string) EducationLevel {
	l := EducationLevel(strings.ToLower(strings.TrimSpace(s)))
	if l == EducationAny || l.Rank() >= 0 {
		return l
	}
	return ""
}

// JobRequirements is the validated view of a job used by the scorers.
type JobRequirements struct {
	JobID                uuid.UUID
	Text                 string
	RequiredSkills       []string
	OptionalSkills       []string
	MinExperienceYears   *int
	ExperienceLevel      ExperienceLevel
	EducationRequirement EducationLevel
	Embedding            []float32
}

type EducationRecord struct {
	Degree       EducationLevel
	FieldOfStudy string
}

// CandidateProfile is the validated view of an applicant used by the
// scorers. Skills holds profile skills merged with CV-parsed skills.
type CandidateProfile struct {
	DeveloperID     uuid.UUID
	CVID            uuid.UUID
	Skills          []string
	ExperienceYears float64
	Seniority       ExperienceLevel
	Education       *EducationRecord
	CVText          string
	Embedding       []float32
}

type AlgorithmWeights struct {
	RuleWeight          float64 `json:"rule_weight"`
	SemanticWeight      float64 `json:"semantic_weight"`
	SkillWeight         float64 `json:"skill_weight"`
	ExperienceWeight    float64 `json:"experience_weight"`
	EducationWeight     float64 `json:"education_weight"`
	OptionalBonusWeight float64 `json:"optional_bonus_weight"`
}

type AlgorithmConfig struct {
	Version string
	Weights AlgorithmWeights
}

// NormalizeSkill is the canonical form used for skill set comparisons.
func NormalizeSkill(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// NormalizeSkills lower-cases, trims and de-duplicates skill names while
// keeping the first-seen order.
func NormalizeSkills(names ...[]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, list := range names {
		for _, n := range list {
			s := NormalizeSkill(n)
			if s == "" {
				continue
			}
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}
