package services

import (
	"fmt"
	"math"
	"strings"

	"kodkariyer/ats-engine/internal/models"
)

// Tunable thresholds of the experience "near match" tier.
const (
	NearMatchLevelGap       = 1
	NearMatchYearsTolerance = 1.0
)

const (
	optionalSkillFactor = 0.2

	strongRequiredMatchRate = 0.8
	weakRequiredMatchRate   = 0.5

	noRequiredSkillsWithSkills    = 70
	noRequiredSkillsWithoutSkills = 30

	experienceFull        = 100
	experienceNear        = 75
	experienceMismatch    = 40
	experienceUnspecified = 50

	seniorMinYears = 5.0
	midMinYears    = 2.0

	educationFull              = 100
	educationLevelMet          = 80
	educationOneBelow          = 60
	educationBelow             = 40
	educationMissing           = 30
	educationOpenRelevant      = 80
	educationOpenNotRelevant   = 60
	educationRequiredLevelStep = 1
)

var relevantFieldKeywords = []string{"bilgisayar", "yazılım", "computer", "software"}

const (
	FactorStrongSkillMatch   = "zorunlu yeteneklerin büyük kısmı karşılanıyor"
	FactorMissingSkills      = "eksik zorunlu yetenekler: %s"
	FactorExperienceMatch    = "deneyim seviyesi uygun"
	FactorExperienceNear     = "deneyim seviyesi yakın"
	FactorExperienceMismatch = "deneyim seviyesi yetersiz"
	FactorEducationFull      = "eğitim seviyesi ve alanı uygun"
	FactorEducationLevel     = "eğitim seviyesi uygun"
	FactorEducationOneBelow  = "eğitim seviyesi bir kademe altında"
	FactorEducationBelow     = "eğitim seviyesi yetersiz"
	FactorEducationMissing   = "eğitim bilgisi eksik"
)

type RuleResult struct {
	Score           int
	Components      models.ComponentBreakdown
	Skills          models.SkillMatch
	PositiveFactors []string
	NegativeFactors []string
}

func (r *RuleResult) positive(f string) { r.PositiveFactors = append(r.PositiveFactors, f) }
func (r *RuleResult) negative(f string) { r.NegativeFactors = append(r.NegativeFactors, f) }

type RuleScorer interface {
	Score(job *models.JobRequirements, candidate *models.CandidateProfile, weights models.AlgorithmWeights) RuleResult
}

type ruleScorer struct{}

func NewRuleScorer() RuleScorer {
	return &ruleScorer{}
}

// Score is deterministic and never fails. The four sub-scores are weighted
// and divided by the sum of their weights, so the result stays within
// [0,100] whatever the configured sub-weights add up to.
func (s *ruleScorer) Score(job *models.JobRequirements, candidate *models.CandidateProfile, weights models.AlgorithmWeights) RuleResult {
	result := RuleResult{
		PositiveFactors: []string{},
		NegativeFactors: []string{},
	}

	skills := toSet(candidate.Skills)

	skillScore := s.scoreSkills(job, skills, &result)
	experienceScore := s.scoreExperience(job, candidate, &result)
	educationScore := s.scoreEducation(job, candidate, &result)
	bonusScore := s.scoreOptionalBonus(job, skills)

	w := weights
	sum := w.SkillWeight + w.ExperienceWeight + w.EducationWeight + w.OptionalBonusWeight
	if sum <= 0 {
		w = DefaultWeights
		sum = w.SkillWeight + w.ExperienceWeight + w.EducationWeight + w.OptionalBonusWeight
	}

	result.Components = models.ComponentBreakdown{
		Skill:         component(skillScore, w.SkillWeight, sum),
		Experience:    component(experienceScore, w.ExperienceWeight, sum),
		Education:     component(educationScore, w.EducationWeight, sum),
		OptionalBonus: component(bonusScore, w.OptionalBonusWeight, sum),
	}

	total := result.Components.Skill.Weighted +
		result.Components.Experience.Weighted +
		result.Components.Education.Weighted +
		result.Components.OptionalBonus.Weighted
	result.Score = toScore(total)

	return result
}

func component(score int, weight, sum float64) models.ComponentScore {
	return models.ComponentScore{
		Score:    score,
		Weight:   weight,
		Weighted: float64(score) * weight / sum,
	}
}

// scoreSkills matches required and optional skills. A skill listed as both
// required and optional counts toward both rates.
func (s *ruleScorer) scoreSkills(job *models.JobRequirements, skills map[string]struct{}, result *RuleResult) int {
	matching, missing := partition(job.RequiredSkills, skills)
	matchingOptional, _ := partition(job.OptionalSkills, skills)

	result.Skills = models.SkillMatch{
		Matching:         matching,
		MissingRequired:  missing,
		MatchingOptional: matchingOptional,
	}

	if len(job.RequiredSkills) == 0 {
		if len(skills) > 0 {
			return noRequiredSkillsWithSkills
		}
		return noRequiredSkillsWithoutSkills
	}

	requiredRate := float64(len(matching)) / float64(len(job.RequiredSkills))
	optionalRate := 0.0
	if len(job.OptionalSkills) > 0 {
		optionalRate = float64(len(matchingOptional)) / float64(len(job.OptionalSkills))
	}

	if requiredRate >= strongRequiredMatchRate {
		result.positive(FactorStrongSkillMatch)
	} else if requiredRate < weakRequiredMatchRate {
		result.negative(fmt.Sprintf(FactorMissingSkills, strings.Join(missing, ", ")))
	}

	return toScore((requiredRate + optionalRate*optionalSkillFactor) * 100)
}

func (s *ruleScorer) scoreExperience(job *models.JobRequirements, candidate *models.CandidateProfile, result *RuleResult) int {
	requiredRank := job.ExperienceLevel.Rank()
	levelSpecified := requiredRank >= 0
	yearsSpecified := job.MinExperienceYears != nil && *job.MinExperienceYears > 0

	if !levelSpecified && !yearsSpecified {
		return experienceUnspecified
	}

	candidateRank := InferExperienceLevel(candidate).Rank()
	years := candidate.ExperienceYears

	levelMet := !levelSpecified || candidateRank >= requiredRank
	yearsMet := !yearsSpecified || years >= float64(*job.MinExperienceYears)

	if levelMet && yearsMet {
		result.positive(FactorExperienceMatch)
		return experienceFull
	}

	levelNear := levelSpecified && candidateRank == requiredRank-NearMatchLevelGap
	yearsNear := yearsSpecified && years+NearMatchYearsTolerance >= float64(*job.MinExperienceYears)
	if levelNear || yearsNear {
		result.positive(FactorExperienceNear)
		return experienceNear
	}

	result.negative(FactorExperienceMismatch)
	return experienceMismatch
}

// InferExperienceLevel prefers the explicit seniority label and otherwise
// derives a level from years of experience.
func InferExperienceLevel(candidate *models.CandidateProfile) models.ExperienceLevel {
	if candidate.Seniority.Rank() >= 0 {
		return candidate.Seniority
	}
	switch {
	case candidate.ExperienceYears >= seniorMinYears:
		return models.LevelSenior
	case candidate.ExperienceYears >= midMinYears:
		return models.LevelMid
	default:
		return models.LevelJunior
	}
}

func (s *ruleScorer) scoreEducation(job *models.JobRequirements, candidate *models.CandidateProfile, result *RuleResult) int {
	if candidate.Education == nil {
		result.negative(FactorEducationMissing)
		return educationMissing
	}

	relevant := isFieldRelevant(job.Text, candidate.Education.FieldOfStudy)

	requiredRank := job.EducationRequirement.Rank()
	if requiredRank < 0 {
		if relevant {
			return educationOpenRelevant
		}
		return educationOpenNotRelevant
	}

	candidateRank := candidate.Education.Degree.Rank()
	levelMet := candidateRank >= requiredRank

	switch {
	case levelMet && relevant:
		result.positive(FactorEducationFull)
		return educationFull
	case levelMet:
		result.positive(FactorEducationLevel)
		return educationLevelMet
	case candidateRank >= 0 && candidateRank == requiredRank-educationRequiredLevelStep:
		result.negative(FactorEducationOneBelow)
		return educationOneBelow
	default:
		result.negative(FactorEducationBelow)
		return educationBelow
	}
}

func isFieldRelevant(jobText, field string) bool {
	field = strings.ToLower(strings.TrimSpace(field))
	if field == "" {
		return false
	}

	if strings.Contains(strings.ToLower(jobText), field) {
		return true
	}

	for _, kw := range relevantFieldKeywords {
		if strings.Contains(field, kw) {
			return true
		}
	}
	return false
}

func (s *ruleScorer) scoreOptionalBonus(job *models.JobRequirements, skills map[string]struct{}) int {
	if len(job.OptionalSkills) == 0 {
		return 0
	}
	matched, _ := partition(job.OptionalSkills, skills)
	return toScore(float64(len(matched)) / float64(len(job.OptionalSkills)) * 100)
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[models.NormalizeSkill(it)] = struct{}{}
	}
	return set
}

func partition(wanted []string, have map[string]struct{}) (matched, missing []string) {
	matched = []string{}
	missing = []string{}
	for _, w := range wanted {
		if _, ok := have[models.NormalizeSkill(w)]; ok {
			matched = append(matched, w)
		} else {
			missing = append(missing, w)
		}
	}
	return matched, missing
}

// toScore clamps to [0,100] and rounds to the nearest integer.
func toScore(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	return int(math.Round(math.Max(0, math.Min(100, v))))
}
