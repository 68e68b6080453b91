package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"kodkariyer/ats-engine/internal/repositories"
)

type IndexStats struct {
	Indexed int
	Failed  int
}

// EmbeddingIndexer backfills the stored embeddings the semantic scorer
// prefers over generating vectors at scoring time.
type EmbeddingIndexer interface {
	FillCVText(ctx context.Context, limit int) (IndexStats, error)
	IndexJobs(ctx context.Context, limit int) (IndexStats, error)
	IndexCVs(ctx context.Context, limit int) (IndexStats, error)
}

type embeddingIndexer struct {
	jobRepo       repositories.JobRepository
	candidateRepo repositories.CandidateRepository
	provider      EmbeddingProvider
	store         VectorStore
	extractor     CVTextExtractor
	log           *zap.Logger
}

// NewEmbeddingIndexer writes vectors to store when it is non-nil and to the
// pgvector columns otherwise.
func NewEmbeddingIndexer(
	jobRepo repositories.JobRepository,
	candidateRepo repositories.CandidateRepository,
	provider EmbeddingProvider,
	store VectorStore,
	extractor CVTextExtractor,
	log *zap.Logger,
) EmbeddingIndexer {
	return &embeddingIndexer{
		jobRepo:       jobRepo,
		candidateRepo: candidateRepo,
		provider:      provider,
		store:         store,
		extractor:     extractor,
		log:           log,
	}
}

// FillCVText extracts raw text from the stored PDF of CVs that have none.
func (i *embeddingIndexer) FillCVText(ctx context.Context, limit int) (IndexStats, error) {
	var stats IndexStats

	cvs, err := i.candidateRepo.FindCVsMissingText(ctx, limit)
	if err != nil {
		return stats, err
	}

	for _, cv := range cvs {
		log := i.log.With(zap.String("cv_id", cv.ID.String()), zap.String("path", cv.FilePath))

		content, err := i.extractor.ExtractText(cv.FilePath)
		if err != nil {
			log.Warn("failed to extract cv text", zap.Error(err))
			stats.Failed++
			continue
		}
		if len(content.SkippedPages) > 0 {
			log.Debug("some pages could not be decoded", zap.Ints("pages", content.SkippedPages))
		}

		if err := i.candidateRepo.SaveCVText(ctx, cv.ID, content.Text); err != nil {
			log.Warn("failed to save cv text", zap.Error(err))
			stats.Failed++
			continue
		}
		stats.Indexed++
	}

	return stats, nil
}

func (i *embeddingIndexer) IndexJobs(ctx context.Context, limit int) (IndexStats, error) {
	var stats IndexStats
	if i.provider == nil {
		return stats, fmt.Errorf("no embedding provider configured")
	}

	jobs, err := i.jobRepo.FindMissingEmbeddings(ctx, limit)
	if err != nil {
		return stats, err
	}

	for _, job := range jobs {
		log := i.log.With(zap.String("job_id", job.ID.String()))

		vec, _, err := i.provider.GenerateEmbedding(ctx, repositories.JobText(&job))
		if err != nil {
			log.Warn("failed to embed job", zap.Error(err))
			stats.Failed++
			continue
		}

		if i.store != nil {
			err = i.store.UpsertVector(ctx, VectorKindJob, job.ID, vec)
			if err == nil {
				err = i.jobRepo.MarkVectorIndexed(ctx, job.ID)
			}
		} else {
			err = i.jobRepo.SaveEmbedding(ctx, job.ID, vec)
		}
		if err != nil {
			log.Warn("failed to store job embedding", zap.Error(err))
			stats.Failed++
			continue
		}
		stats.Indexed++
	}

	return stats, nil
}

func (i *embeddingIndexer) IndexCVs(ctx context.Context, limit int) (IndexStats, error) {
	var stats IndexStats
	if i.provider == nil {
		return stats, fmt.Errorf("no embedding provider configured")
	}

	cvs, err := i.candidateRepo.FindCVsMissingEmbeddings(ctx, limit)
	if err != nil {
		return stats, err
	}

	for _, cv := range cvs {
		log := i.log.With(zap.String("cv_id", cv.ID.String()))

		if cv.RawText == "" {
			log.Debug("cv has no text yet, skipping")
			continue
		}

		vec, _, err := i.provider.GenerateEmbedding(ctx, cv.RawText)
		if err != nil {
			log.Warn("failed to embed cv", zap.Error(err))
			stats.Failed++
			continue
		}

		if i.store != nil {
			err = i.store.UpsertVector(ctx, VectorKindCV, cv.ID, vec)
			if err == nil {
				err = i.candidateRepo.MarkCVVectorIndexed(ctx, cv.ID)
			}
		} else {
			err = i.candidateRepo.SaveCVEmbedding(ctx, cv.ID, vec)
		}
		if err != nil {
			log.Warn("failed to store cv embedding", zap.Error(err))
			stats.Failed++
			continue
		}
		stats.Indexed++
	}

	return stats, nil
}
