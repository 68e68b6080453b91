package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	"kodkariyer/ats-engine/internal/metrics"
	"kodkariyer/ats-engine/internal/models"
	"kodkariyer/ats-engine/internal/repositories"
)

const (
	ReasonVeryStrong = "very strong match"
	ReasonSuitable   = "suitable match"
	ReasonLimited    = "limited fit"
)

type ComputeOptions struct {
	ForceRecalculate bool
	AlgorithmVersion string
}

type ATSService interface {
	ComputeScore(ctx context.Context, applicationID uuid.UUID, opts ComputeOptions) (*models.ATSScore, error)
	GetScore(ctx context.Context, applicationID uuid.UUID, version string) (*models.ATSScore, error)
	JobRanking(ctx context.Context, jobID uuid.UUID, version string) ([]models.ATSScore, error)
	ResolveVersion(ctx context.Context, version string) string
}

type atsService struct {
	appRepo       repositories.ApplicationRepository
	jobRepo       repositories.JobRepository
	candidateRepo repositories.CandidateRepository
	scoreRepo     repositories.ScoreRepository
	logRepo       repositories.MatchingLogRepository
	configLoader  AlgorithmConfigLoader
	ruleScorer    RuleScorer
	semScorer     SemanticScorer
	log           *zap.Logger
}

func NewATSService(
	appRepo repositories.ApplicationRepository,
	jobRepo repositories.JobRepository,
	candidateRepo repositories.CandidateRepository,
	scoreRepo repositories.ScoreRepository,
	logRepo repositories.MatchingLogRepository,
	configLoader AlgorithmConfigLoader,
	ruleScorer RuleScorer,
	semScorer SemanticScorer,
	log *zap.Logger,
) ATSService {
	return &atsService{
		appRepo:       appRepo,
		jobRepo:       jobRepo,
		candidateRepo: candidateRepo,
		scoreRepo:     scoreRepo,
		logRepo:       logRepo,
		configLoader:  configLoader,
		ruleScorer:    ruleScorer,
		semScorer:     semScorer,
		log:           log,
	}
}

// ComputeScore scores one application under one algorithm version. Unless
// forced, an existing completed row for the same version is returned as is
// and nothing is written.
func (s *atsService) ComputeScore(ctx context.Context, applicationID uuid.UUID, opts ComputeOptions) (*models.ATSScore, error) {
	app, err := s.appRepo.FindByID(ctx, applicationID)
	if err != nil {
		metrics.ScoreComputations.WithLabelValues("failed").Inc()
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrApplicationNotFound, err)
		}
		return nil, fmt.Errorf("failed to load application: %w", err)
	}

	cfg := s.configLoader.LoadVersion(ctx, opts.AlgorithmVersion)

	if !opts.ForceRecalculate {
		existing, err := s.scoreRepo.FindByApplicationAndVersion(ctx, app.ID, cfg.Version)
		if err == nil && existing.Status == models.StatusCompleted {
			metrics.ScoreComputations.WithLabelValues("cached").Inc()
			return existing, nil
		}
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			s.log.Warn("score cache lookup failed, recomputing",
				zap.String("application_id", app.ID.String()),
				zap.Error(err),
			)
		}
	}

	start := time.Now()
	score, err := s.compute(ctx, app, cfg)
	if err != nil {
		metrics.ScoreComputations.WithLabelValues("failed").Inc()
		return nil, err
	}

	metrics.ScoreComputations.WithLabelValues("computed").Inc()
	metrics.ScoreDuration.Observe(time.Since(start).Seconds())
	metrics.FinalScores.Observe(float64(score.FinalScore))

	return score, nil
}

func (s *atsService) compute(ctx context.Context, app *models.Application, cfg models.AlgorithmConfig) (*models.ATSScore, error) {
	job, err := s.jobRepo.FindRequirements(ctx, app.JobID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrJobNotFound, err)
		}
		return nil, fmt.Errorf("failed to load job requirements: %w", err)
	}

	candidate, err := s.candidateRepo.FindProfile(ctx, app.DeveloperID, app.CVID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrCandidateNotFound, err)
		}
		return nil, fmt.Errorf("failed to load candidate profile: %w", err)
	}

	var (
		rule     RuleResult
		semantic SemanticResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rule = s.ruleScorer.Score(job, candidate, cfg.Weights)
		return nil
	})
	g.Go(func() error {
		semantic = s.semScorer.Score(gctx, job, candidate)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	final := combine(rule.Score, semantic.Score, cfg.Weights)
	breakdown := buildBreakdown(cfg, rule, semantic, final)

	now := time.Now()
	score := &models.ATSScore{
		ID:               uuid.New(),
		ApplicationID:    app.ID,
		AlgorithmVersion: cfg.Version,
		RuleScore:        rule.Score,
		SemanticScore:    semantic.Score,
		FinalScore:       final,
		Breakdown:        datatypes.NewJSONType(breakdown),
		Status:           models.StatusCompleted,
		CalculatedAt:     &now,
	}

	if err := s.scoreRepo.Upsert(ctx, score); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	err = s.appRepo.UpdateMatch(ctx, app.ID, &repositories.MatchUpdate{
		Score:   final,
		Reason:  MatchReason(final),
		Details: breakdown,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	s.audit(ctx, app, cfg, semantic)

	s.log.Info("application scored",
		zap.String("application_id", app.ID.String()),
		zap.String("algorithm_version", cfg.Version),
		zap.Int("rule_score", rule.Score),
		zap.Int("semantic_score", semantic.Score),
		zap.Int("final_score", final),
	)

	return score, nil
}

// audit appends the matching log. A failed write is logged and counted but
// never fails the computation.
func (s *atsService) audit(ctx context.Context, app *models.Application, cfg models.AlgorithmConfig, semantic SemanticResult) {
	entry := &models.MatchingLog{
		ID:               uuid.New(),
		ApplicationID:    app.ID,
		JobID:            app.JobID,
		CVID:             app.CVID,
		AlgorithmVersion: cfg.Version,
		Model:            semantic.Model,
		Source:           string(semantic.Source),
		CosineSimilarity: semantic.CosineSimilarity,
		Tokens:           semantic.Tokens,
		LatencyMS:        semantic.LatencyMS,
		CreatedAt:        time.Now(),
	}

	if err := s.logRepo.Create(ctx, entry); err != nil {
		metrics.AuditFailures.Inc()
		s.log.Warn("failed to write matching log",
			zap.String("application_id", app.ID.String()),
			zap.Error(err),
		)
	}
}

func (s *atsService) GetScore(ctx context.Context, applicationID uuid.UUID, version string) (*models.ATSScore, error) {
	version = s.ResolveVersion(ctx, version)

	score, err := s.scoreRepo.FindByApplicationAndVersion(ctx, applicationID, version)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrScoreNotFound, err)
		}
		return nil, err
	}
	return score, nil
}

// JobRanking lists the completed scores of a job's applications, best first.
func (s *atsService) JobRanking(ctx context.Context, jobID uuid.UUID, version string) ([]models.ATSScore, error) {
	return s.scoreRepo.ListByJob(ctx, jobID, s.ResolveVersion(ctx, version))
}

// ResolveVersion returns version unchanged, or the active version when it
// is empty.
func (s *atsService) ResolveVersion(ctx context.Context, version string) string {
	if version != "" {
		return version
	}
	return s.configLoader.Load(ctx).Version
}

func combine(rule, semantic int, w models.AlgorithmWeights) int {
	return toScore(math.Round(float64(rule)*w.RuleWeight + float64(semantic)*w.SemanticWeight))
}

func buildBreakdown(cfg models.AlgorithmConfig, rule RuleResult, semantic SemanticResult, final int) models.ScoringBreakdown {
	return models.ScoringBreakdown{
		SchemaVersion:    models.BreakdownSchemaVersion,
		AlgorithmVersion: cfg.Version,
		RuleWeight:       cfg.Weights.RuleWeight,
		SemanticWeight:   cfg.Weights.SemanticWeight,
		RuleScore:        rule.Score,
		SemanticScore:    semantic.Score,
		FinalScore:       final,
		Components:       rule.Components,
		Skills:           rule.Skills,
		Semantic:         semantic.Metadata(),
		PositiveFactors:  rule.PositiveFactors,
		NegativeFactors:  rule.NegativeFactors,
	}
}

// MatchReason is the templated summary stored on the application.
func MatchReason(final int) string {
	switch {
	case final >= 80:
		return ReasonVeryStrong
	case final >= 60:
		return ReasonSuitable
	default:
		return ReasonLimited
	}
}
