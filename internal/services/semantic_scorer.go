package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"kodkariyer/ats-engine/internal/metrics"
	"kodkariyer/ats-engine/internal/models"
)

type SemanticResult struct {
	CosineSimilarity *float64
	Score            int
	Source           models.EmbeddingSource
	Model            string
	Tokens           int
	LatencyMS        int64
}

func (r SemanticResult) Metadata() models.SemanticMetadata {
	return models.SemanticMetadata{
		CosineSimilarity: r.CosineSimilarity,
		Model:            r.Model,
		Source:           r.Source,
		Tokens:           r.Tokens,
		LatencyMS:        r.LatencyMS,
	}
}

// SemanticScorer never returns an error. When no vectors can be obtained
// the contribution is 0 with an empty source.
type SemanticScorer interface {
	Score(ctx context.Context, job *models.JobRequirements, candidate *models.CandidateProfile) SemanticResult
}

type semanticScorer struct {
	provider EmbeddingProvider
	store    VectorStore
	log      *zap.Logger
}

// NewSemanticScorer accepts a nil provider (no credential configured) and a
// nil store (no vector store configured).
func NewSemanticScorer(provider EmbeddingProvider, store VectorStore, log *zap.Logger) SemanticScorer {
	return &semanticScorer{provider: provider, store: store, log: log}
}

func (s *semanticScorer) Score(ctx context.Context, job *models.JobRequirements, candidate *models.CandidateProfile) SemanticResult {
	result := s.score(ctx, job, candidate)
	metrics.SemanticSource.WithLabelValues(sourceLabel(result.Source)).Inc()
	return result
}

func (s *semanticScorer) score(ctx context.Context, job *models.JobRequirements, candidate *models.CandidateProfile) SemanticResult {
	jobVec, cvVec := job.Embedding, candidate.Embedding

	if (len(jobVec) == 0 || len(cvVec) == 0) && s.store != nil {
		storedJob, storedCV, err := s.store.StoredVectors(ctx, job.JobID, candidate.CVID)
		if err != nil {
			s.log.Debug("vector store lookup failed", zap.Error(err))
		}
		if len(jobVec) == 0 {
			jobVec = storedJob
		}
		if len(cvVec) == 0 && candidate.CVID != uuid.Nil {
			cvVec = storedCV
		}
	}

	if len(jobVec) > 0 && len(cvVec) > 0 {
		cos := CosineSimilarity(jobVec, cvVec)
		return SemanticResult{
			CosineSimilarity: &cos,
			Score:            similarityToScore(cos),
			Source:           models.SourceStored,
		}
	}

	return s.generated(ctx, job, candidate)
}

func (s *semanticScorer) generated(ctx context.Context, job *models.JobRequirements, candidate *models.CandidateProfile) SemanticResult {
	if s.provider == nil {
		return SemanticResult{Source: models.SourceNone}
	}

	if strings.TrimSpace(job.Text) == "" || strings.TrimSpace(candidate.CVText) == "" {
		return SemanticResult{Source: models.SourceNone}
	}

	model := s.provider.Model()
	start := time.Now()

	jobVec, jobTokens, err := s.provider.GenerateEmbedding(ctx, job.Text)
	if err != nil {
		s.log.Warn("job embedding failed, semantic score degraded to 0",
			zap.String("job_id", job.JobID.String()),
			zap.String("model", model),
			zap.Error(err),
		)
		return SemanticResult{Source: models.SourceNone}
	}

	cvVec, cvTokens, err := s.provider.GenerateEmbedding(ctx, candidate.CVText)
	if err != nil {
		s.log.Warn("cv embedding failed, semantic score degraded to 0",
			zap.String("cv_id", candidate.CVID.String()),
			zap.String("model", model),
			zap.Error(err),
		)
		return SemanticResult{Source: models.SourceNone}
	}

	latency := time.Since(start).Milliseconds()
	tokens := jobTokens + cvTokens
	if tokens > 0 {
		metrics.EmbeddingTokens.WithLabelValues(model).Add(float64(tokens))
	}

	cos := CosineSimilarity(jobVec, cvVec)
	return SemanticResult{
		CosineSimilarity: &cos,
		Score:            similarityToScore(cos),
		Source:           models.SourceGenerated,
		Model:            model,
		Tokens:           tokens,
		LatencyMS:        latency,
	}
}

func sourceLabel(s models.EmbeddingSource) string {
	if s == models.SourceNone {
		return "none"
	}
	return string(s)
}
