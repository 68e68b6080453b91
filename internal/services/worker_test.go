package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"kodkariyer/ats-engine/internal/models"
)

type funcComputer func(ctx context.Context, id uuid.UUID, opts ComputeOptions) (*models.ATSScore, error)

func (f funcComputer) ComputeScore(ctx context.Context, id uuid.UUID, opts ComputeOptions) (*models.ATSScore, error) {
	return f(ctx, id, opts)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}

func TestWorker_ProcessesQueuedApplication(t *testing.T) {
	db := newMemDB()
	appID := uuid.New()
	repo := fakeScoreRepo{db}
	_ = repo.MarkPending(context.Background(), appID, "1.0.0")

	done := make(chan ComputeOptions, 1)
	computer := funcComputer(func(_ context.Context, id uuid.UUID, opts ComputeOptions) (*models.ATSScore, error) {
		if s := db.score(id, opts.AlgorithmVersion); s == nil || s.Status != models.StatusCalculating {
			t.Errorf("row should be calculating before compute, got %+v", s)
		}
		done <- opts
		return &models.ATSScore{}, nil
	})

	w := NewWorker(repo, computer, 1, 4, time.Hour, zap.NewNop())
	w.Start(context.Background())
	defer w.Stop()

	if !w.EnqueueApplication(appID, "1.0.0") {
		t.Fatalf("enqueue rejected")
	}

	select {
	case opts := <-done:
		if !opts.ForceRecalculate || opts.AlgorithmVersion != "1.0.0" {
			t.Fatalf("unexpected options: %+v", opts)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("application was not processed")
	}
}

func TestWorker_RecordsFailure(t *testing.T) {
	db := newMemDB()
	appID := uuid.New()
	repo := fakeScoreRepo{db}
	_ = repo.MarkPending(context.Background(), appID, "1.0.0")

	computer := funcComputer(func(context.Context, uuid.UUID, ComputeOptions) (*models.ATSScore, error) {
		return nil, errors.New("job missing")
	})

	w := NewWorker(repo, computer, 1, 4, time.Hour, zap.NewNop())
	w.Start(context.Background())
	defer w.Stop()

	w.EnqueueApplication(appID, "1.0.0")

	waitFor(t, func() bool {
		s := db.score(appID, "1.0.0")
		db.mu.Lock()
		defer db.mu.Unlock()
		return s.Status == models.StatusFailed && s.ErrorMessage != nil && *s.ErrorMessage == "job missing"
	})
}

func TestWorker_PollsPendingRows(t *testing.T) {
	db := newMemDB()
	appID := uuid.New()
	repo := fakeScoreRepo{db}
	_ = repo.MarkPending(context.Background(), appID, "2.0.0")

	done := make(chan uuid.UUID, 4)
	computer := funcComputer(func(_ context.Context, id uuid.UUID, _ ComputeOptions) (*models.ATSScore, error) {
		select {
		case done <- id:
		default:
		}
		return &models.ATSScore{}, nil
	})

	w := NewWorker(repo, computer, 2, 4, 10*time.Millisecond, zap.NewNop())
	w.Start(context.Background())
	defer w.Stop()

	select {
	case id := <-done:
		if id != appID {
			t.Fatalf("processed %s, want %s", id, appID)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("pending row was not picked up")
	}
}

func TestWorker_EnqueueAfterStop(t *testing.T) {
	w := NewWorker(fakeScoreRepo{newMemDB()}, funcComputer(nil), 1, 1, time.Hour, zap.NewNop())
	w.Start(context.Background())
	w.Stop()

	if w.EnqueueApplication(uuid.New(), "1.0.0") {
		t.Fatalf("enqueue after stop should be rejected")
	}
}

func TestWorker_EnqueueQueueFull(t *testing.T) {
	// Not started, so nothing drains the single-slot queue.
	w := NewWorker(fakeScoreRepo{newMemDB()}, funcComputer(nil), 1, 1, time.Hour, zap.NewNop())

	if !w.EnqueueApplication(uuid.New(), "1.0.0") {
		t.Fatalf("first enqueue should fit the queue")
	}
	if w.EnqueueApplication(uuid.New(), "1.0.0") {
		t.Fatalf("enqueue on a full queue should be rejected without blocking")
	}
}

func TestWorker_PendingRowComputedOnceWhilePoolBusy(t *testing.T) {
	db := newMemDB()
	repo := fakeScoreRepo{db}
	blocker, target := uuid.New(), uuid.New()

	release := make(chan struct{})
	var mu sync.Mutex
	counts := map[uuid.UUID]int{}
	computer := funcComputer(func(_ context.Context, id uuid.UUID, _ ComputeOptions) (*models.ATSScore, error) {
		if id == blocker {
			<-release
		}
		mu.Lock()
		counts[id]++
		mu.Unlock()
		return &models.ATSScore{}, nil
	})
	computed := func(id uuid.UUID) int {
		mu.Lock()
		defer mu.Unlock()
		return counts[id]
	}

	w := NewWorker(repo, computer, 1, 10, 5*time.Millisecond, zap.NewNop())
	w.Start(context.Background())
	defer w.Stop()

	if !w.EnqueueApplication(blocker, "1.0.0") {
		t.Fatalf("blocker should be enqueued")
	}
	_ = repo.MarkPending(context.Background(), target, "1.0.0")

	// Several poll ticks pass while the only worker is busy.
	time.Sleep(80 * time.Millisecond)
	close(release)

	waitFor(t, func() bool { return computed(target) > 0 })
	time.Sleep(50 * time.Millisecond)

	if n := computed(target); n != 1 {
		t.Fatalf("pending row computed %d times, want 1", n)
	}
}

func TestWorker_EnqueueDeduplicates(t *testing.T) {
	w := NewWorker(fakeScoreRepo{newMemDB()}, funcComputer(nil), 1, 4, time.Hour, zap.NewNop())
	id := uuid.New()

	for i := 0; i < 3; i++ {
		if !w.EnqueueApplication(id, "1.0.0") {
			t.Fatalf("enqueue %d rejected", i)
		}
	}
	if n := len(w.(*worker).queue); n != 1 {
		t.Fatalf("queue holds %d tasks, want 1", n)
	}

	// Another version of the same application is a separate task.
	w.EnqueueApplication(id, "2.0.0")
	if n := len(w.(*worker).queue); n != 2 {
		t.Fatalf("queue holds %d tasks, want 2", n)
	}
}
