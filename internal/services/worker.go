package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"kodkariyer/ats-engine/internal/models"
	"kodkariyer/ats-engine/internal/repositories"
)

type Worker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueApplication(applicationID uuid.UUID, version string) bool
}

type scoreTask struct {
	applicationID uuid.UUID
	version       string
}

type worker struct {
	scoreRepo    repositories.ScoreRepository
	atsService   ScoreComputer
	queue        chan scoreTask
	concurrency  int
	pollInterval time.Duration
	log          *zap.Logger
	wg           sync.WaitGroup
	stopChan     chan struct{}
	stopOnce     sync.Once

	// inflight holds tasks that are queued or being processed. The poller
	// sees such rows as still pending and must not queue them twice.
	mu       sync.Mutex
	inflight map[scoreTask]struct{}
}

func NewWorker(
	scoreRepo repositories.ScoreRepository,
	atsService ScoreComputer,
	concurrency int,
	queueSize int,
	pollInterval time.Duration,
	log *zap.Logger,
) Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	if queueSize < 1 {
		queueSize = 100
	}
	if pollInterval <= 0 {
		pollInterval = 10 * time.Second
	}
	return &worker{
		scoreRepo:    scoreRepo,
		atsService:   atsService,
		queue:        make(chan scoreTask, queueSize),
		concurrency:  concurrency,
		pollInterval: pollInterval,
		log:          log,
		stopChan:     make(chan struct{}),
		inflight:     make(map[scoreTask]struct{}),
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	w.log.Info("starting score worker", zap.Int("concurrency", w.concurrency))

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processTasks(ctx, i+1)
	}

	w.wg.Add(1)
	go w.pollPending(ctx)
}

// Stop implements Worker.
func (w *worker) Stop() {
	w.stopOnce.Do(func() {
		w.log.Info("stopping score worker")
		close(w.stopChan)
	})
	w.wg.Wait()
	w.log.Info("score worker stopped")
}

// EnqueueApplication implements Worker. It never blocks: it reports false
// when the worker is stopped or the queue is full, and the pending row is
// then left for the poller. A task already queued or running is not added
// again.
func (w *worker) EnqueueApplication(applicationID uuid.UUID, version string) bool {
	select {
	case <-w.stopChan:
		w.log.Warn("worker stopped, cannot enqueue application", zap.String("application_id", applicationID.String()))
		return false
	default:
	}

	task := scoreTask{applicationID: applicationID, version: version}
	if !w.claim(task) {
		w.log.Debug("application already queued", zap.String("application_id", applicationID.String()))
		return true
	}

	select {
	case w.queue <- task:
		w.log.Debug("application enqueued", zap.String("application_id", applicationID.String()))
		return true
	default:
		w.release(task)
		w.log.Warn("score queue full, leaving application to the poller", zap.String("application_id", applicationID.String()))
		return false
	}
}

func (w *worker) claim(task scoreTask) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.inflight[task]; ok {
		return false
	}
	w.inflight[task] = struct{}{}
	return true
}

func (w *worker) release(task scoreTask) {
	w.mu.Lock()
	delete(w.inflight, task)
	w.mu.Unlock()
}

func (w *worker) processTasks(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case task := <-w.queue:
			w.process(ctx, workerID, task)
		}
	}
}

func (w *worker) process(ctx context.Context, workerID int, task scoreTask) {
	defer w.release(task)

	log := w.log.With(
		zap.Int("worker", workerID),
		zap.String("application_id", task.applicationID.String()),
		zap.String("algorithm_version", task.version),
	)

	err := w.scoreRepo.UpdateStatus(ctx, task.applicationID, task.version, models.StatusCalculating)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		log.Warn("failed to mark score calculating", zap.Error(err))
	}

	_, err = w.atsService.ComputeScore(ctx, task.applicationID, ComputeOptions{
		ForceRecalculate: true,
		AlgorithmVersion: task.version,
	})
	if err != nil {
		log.Error("score computation failed", zap.Error(err))
		if uerr := w.scoreRepo.UpdateError(ctx, task.applicationID, task.version, err.Error()); uerr != nil {
			log.Warn("failed to record score failure", zap.Error(uerr))
		}
		return
	}

	log.Debug("score computed")
}

func (w *worker) pollPending(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			pending, err := w.scoreRepo.FindPending(ctx, cap(w.queue))
			if err != nil {
				w.log.Warn("failed to fetch pending scores", zap.Error(err))
				continue
			}

			if len(pending) > 0 {
				w.log.Info("found pending scores", zap.Int("count", len(pending)))
			}

			for _, p := range pending {
				if !w.EnqueueApplication(p.ApplicationID, p.AlgorithmVersion) {
					break
				}
			}
		}
	}
}
