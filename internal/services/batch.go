package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"kodkariyer/ats-engine/internal/metrics"
	"kodkariyer/ats-engine/internal/models"
	"kodkariyer/ats-engine/internal/repositories"
)

const DefaultBatchSize = 10

// ScoreComputer is the part of ATSService the batch coordinator drives.
type ScoreComputer interface {
	ComputeScore(ctx context.Context, applicationID uuid.UUID, opts ComputeOptions) (*models.ATSScore, error)
}

type RecalculateOptions struct {
	AlgorithmVersion string
	BatchSize        int
}

type BatchError struct {
	ID    uuid.UUID
	Error string
}

// RecalculateResult covers every application of the job exactly once,
// either in Processed or in Errors.
type RecalculateResult struct {
	Processed []uuid.UUID
	Errors    []BatchError
}

type BatchService interface {
	RecalculateForJob(ctx context.Context, jobID uuid.UUID, opts RecalculateOptions) (*RecalculateResult, error)
}

type batchService struct {
	appRepo  repositories.ApplicationRepository
	computer ScoreComputer
	log      *zap.Logger
}

func NewBatchService(appRepo repositories.ApplicationRepository, computer ScoreComputer, log *zap.Logger) BatchService {
	return &batchService{appRepo: appRepo, computer: computer, log: log}
}

// RecalculateForJob force-recomputes every application of a job. Batches
// run one after another; applications inside a batch run concurrently.
// Only a failure to list the job's applications is returned as an error.
func (b *batchService) RecalculateForJob(ctx context.Context, jobID uuid.UUID, opts RecalculateOptions) (*RecalculateResult, error) {
	ids, err := b.appRepo.ListIDsByJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications for job %s: %w", jobID, err)
	}

	size := opts.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}

	result := &RecalculateResult{
		Processed: []uuid.UUID{},
		Errors:    []BatchError{},
	}

	b.log.Info("recalculating job",
		zap.String("job_id", jobID.String()),
		zap.Int("applications", len(ids)),
		zap.Int("batch_size", size),
	)

	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		b.runBatch(ctx, ids[start:end], opts.AlgorithmVersion, result)
	}

	b.log.Info("job recalculated",
		zap.String("job_id", jobID.String()),
		zap.Int("processed", len(result.Processed)),
		zap.Int("errors", len(result.Errors)),
	)

	return result, nil
}

func (b *batchService) runBatch(ctx context.Context, batch []uuid.UUID, version string, result *RecalculateResult) {
	var mu sync.Mutex
	var g errgroup.Group

	for _, id := range batch {
		g.Go(func() error {
			_, err := b.computer.ComputeScore(ctx, id, ComputeOptions{
				ForceRecalculate: true,
				AlgorithmVersion: version,
			})

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				metrics.BatchApplications.WithLabelValues("failed").Inc()
				b.log.Warn("application recalculation failed",
					zap.String("application_id", id.String()),
					zap.Error(err),
				)
				result.Errors = append(result.Errors, BatchError{ID: id, Error: err.Error()})
				return nil
			}

			metrics.BatchApplications.WithLabelValues("processed").Inc()
			result.Processed = append(result.Processed, id)
			return nil
		})
	}

	// Per-application failures are collected above, so Wait never errors.
	_ = g.Wait()
}
