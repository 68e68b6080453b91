package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"kodkariyer/ats-engine/internal/models"
	"kodkariyer/ats-engine/internal/repositories"
	"kodkariyer/ats-engine/internal/services"
)

type fakeATS struct {
	score    *models.ATSScore
	err      error
	lastOpts services.ComputeOptions
	calls    int
}

func (f *fakeATS) ComputeScore(_ context.Context, _ uuid.UUID, opts services.ComputeOptions) (*models.ATSScore, error) {
	f.calls++
	f.lastOpts = opts
	return f.score, f.err
}

func (f *fakeATS) GetScore(context.Context, uuid.UUID, string) (*models.ATSScore, error) {
	return f.score, f.err
}

func (f *fakeATS) JobRanking(context.Context, uuid.UUID, string) ([]models.ATSScore, error) {
	return nil, nil
}

func (f *fakeATS) ResolveVersion(_ context.Context, version string) string {
	if version == "" {
		return "1.0.0"
	}
	return version
}

type fakeBatch struct {
	result   *services.RecalculateResult
	err      error
	lastOpts services.RecalculateOptions
}

func (f *fakeBatch) RecalculateForJob(_ context.Context, _ uuid.UUID, opts services.RecalculateOptions) (*services.RecalculateResult, error) {
	f.lastOpts = opts
	return f.result, f.err
}

type fakeWorker struct {
	enqueued []uuid.UUID
}

func (f *fakeWorker) Start(context.Context) {}
func (f *fakeWorker) Stop()                 {}
func (f *fakeWorker) EnqueueApplication(id uuid.UUID, _ string) bool {
	f.enqueued = append(f.enqueued, id)
	return true
}

type fakeApps struct {
	known map[uuid.UUID]bool
}

func (f fakeApps) FindByID(_ context.Context, id uuid.UUID) (*models.Application, error) {
	if !f.known[id] {
		return nil, repositories.ErrNotFound
	}
	return &models.Application{ID: id}, nil
}

func (f fakeApps) ListIDsByJob(context.Context, uuid.UUID) ([]uuid.UUID, error) { return nil, nil }

func (f fakeApps) UpdateMatch(context.Context, uuid.UUID, *repositories.MatchUpdate) error {
	return nil
}

type fakeScores struct {
	existing *models.ATSScore
	pending  []uuid.UUID
}

func (f *fakeScores) FindByApplicationAndVersion(context.Context, uuid.UUID, string) (*models.ATSScore, error) {
	if f.existing == nil {
		return nil, repositories.ErrNotFound
	}
	return f.existing, nil
}

func (f *fakeScores) Upsert(context.Context, *models.ATSScore) error { return nil }

func (f *fakeScores) MarkPending(_ context.Context, id uuid.UUID, _ string) error {
	f.pending = append(f.pending, id)
	return nil
}

func (f *fakeScores) UpdateStatus(context.Context, uuid.UUID, string, models.ScoreStatus) error {
	return nil
}

func (f *fakeScores) UpdateError(context.Context, uuid.UUID, string, string) error { return nil }

func (f *fakeScores) FindPending(context.Context, int) ([]models.ATSScore, error) { return nil, nil }

func (f *fakeScores) ListByJob(context.Context, uuid.UUID, string) ([]models.ATSScore, error) {
	return nil, nil
}

type testEnv struct {
	app    *fiber.App
	ats    *fakeATS
	batch  *fakeBatch
	worker *fakeWorker
	scores *fakeScores
	appID  uuid.UUID
}

func newTestEnv() *testEnv {
	appID := uuid.New()
	env := &testEnv{
		ats:    &fakeATS{},
		batch:  &fakeBatch{},
		worker: &fakeWorker{},
		scores: &fakeScores{},
		appID:  appID,
	}

	log := zap.NewNop()
	score := NewScoreHandler(fakeApps{known: map[uuid.UUID]bool{appID: true}}, env.scores, env.ats, env.worker, log)
	recalc := NewRecalculateHandler(env.batch, 10, log)

	env.app = fiber.New()
	Register(env.app, score, recalc)
	return env
}

func (e *testEnv) do(t *testing.T, method, path, body string) (int, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("invalid json %q: %v", raw, err)
		}
	}
	return resp.StatusCode, out
}

func completedScore(appID uuid.UUID) *models.ATSScore {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return &models.ATSScore{
		ApplicationID:    appID,
		AlgorithmVersion: "1.0.0",
		RuleScore:        80,
		SemanticScore:    50,
		FinalScore:       68,
		Status:           models.StatusCompleted,
		CalculatedAt:     &now,
	}
}

func TestHandleScore_Sync(t *testing.T) {
	env := newTestEnv()
	env.ats.score = completedScore(env.appID)

	status, body := env.do(t, "POST", "/api/v1/applications/"+env.appID.String()+"/score", `{"force_recalculate": true, "algorithm_version": "1.0.0"}`)

	if status != fiber.StatusOK {
		t.Fatalf("status = %d, body %v", status, body)
	}
	if body["final_score"] != float64(68) {
		t.Fatalf("final_score = %v", body["final_score"])
	}
	if body["calculated_at"] != "2026-01-02T03:04:05Z" {
		t.Fatalf("calculated_at = %v", body["calculated_at"])
	}
	if !env.ats.lastOpts.ForceRecalculate || env.ats.lastOpts.AlgorithmVersion != "1.0.0" {
		t.Fatalf("options not forwarded: %+v", env.ats.lastOpts)
	}
}

func TestHandleScore_EmptyBody(t *testing.T) {
	env := newTestEnv()
	env.ats.score = completedScore(env.appID)

	status, _ := env.do(t, "POST", "/api/v1/applications/"+env.appID.String()+"/score", "")
	if status != fiber.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if env.ats.lastOpts.ForceRecalculate {
		t.Fatalf("force must default to false")
	}
}

func TestHandleScore_Errors(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		body       string
		err        error
		wantStatus int
		wantError  string
	}{
		{name: "bad id", path: "not-a-uuid", wantStatus: 400},
		{name: "bad body", body: `{"force_recalculate": "yes"`, wantStatus: 400},
		{name: "application missing", err: fmt.Errorf("%w: x", services.ErrApplicationNotFound), wantStatus: 404},
		{name: "job missing", err: fmt.Errorf("%w: x", services.ErrJobNotFound), wantStatus: 404},
		{name: "persistence", err: fmt.Errorf("%w: timeout", services.ErrPersistence), wantStatus: 500, wantError: MsgAnalysisFailed},
		{name: "unexpected", err: errors.New("boom"), wantStatus: 500, wantError: MsgAnalysisFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			env.ats.err = tt.err

			id := tt.path
			if id == "" {
				id = env.appID.String()
			}

			status, body := env.do(t, "POST", "/api/v1/applications/"+id+"/score", tt.body)
			if status != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%v)", status, tt.wantStatus, body)
			}
			if tt.wantError != "" && body["error"] != tt.wantError {
				t.Fatalf("error = %v, want %q", body["error"], tt.wantError)
			}
		})
	}
}

func TestHandleScore_Async(t *testing.T) {
	env := newTestEnv()

	status, body := env.do(t, "POST", "/api/v1/applications/"+env.appID.String()+"/score", `{"async": true}`)

	if status != fiber.StatusAccepted {
		t.Fatalf("status = %d, body %v", status, body)
	}
	if body["status"] != string(models.StatusPending) || body["algorithm_version"] != "1.0.0" {
		t.Fatalf("unexpected body: %v", body)
	}
	if len(env.scores.pending) != 1 || len(env.worker.enqueued) != 1 {
		t.Fatalf("pending=%d enqueued=%d", len(env.scores.pending), len(env.worker.enqueued))
	}
	if env.ats.calls != 0 {
		t.Fatalf("async request must not compute inline")
	}
}

func TestHandleScore_AsyncReturnsCompleted(t *testing.T) {
	env := newTestEnv()
	env.scores.existing = completedScore(env.appID)

	status, body := env.do(t, "POST", "/api/v1/applications/"+env.appID.String()+"/score", `{"async": true}`)

	if status != fiber.StatusOK || body["final_score"] != float64(68) {
		t.Fatalf("status = %d, body %v", status, body)
	}
	if len(env.worker.enqueued) != 0 {
		t.Fatalf("completed score must not be re-enqueued")
	}
}

func TestHandleScore_AsyncUnknownApplication(t *testing.T) {
	env := newTestEnv()

	status, _ := env.do(t, "POST", "/api/v1/applications/"+uuid.NewString()+"/score", `{"async": true}`)
	if status != fiber.StatusNotFound {
		t.Fatalf("status = %d, want 404", status)
	}
	if len(env.scores.pending) != 0 {
		t.Fatalf("no pending row may be created for an unknown application")
	}
}

func TestHandleGetScore(t *testing.T) {
	env := newTestEnv()

	env.ats.err = fmt.Errorf("%w: x", services.ErrScoreNotFound)
	status, _ := env.do(t, "GET", "/api/v1/applications/"+env.appID.String()+"/score?version=2.0.0", "")
	if status != fiber.StatusNotFound {
		t.Fatalf("status = %d, want 404", status)
	}

	env.ats.err = nil
	env.ats.score = completedScore(env.appID)
	status, body := env.do(t, "GET", "/api/v1/applications/"+env.appID.String()+"/score", "")
	if status != fiber.StatusOK || body["status"] != "completed" {
		t.Fatalf("status = %d, body %v", status, body)
	}
}

func TestHandleRecalculate(t *testing.T) {
	env := newTestEnv()
	ok, failed := uuid.New(), uuid.New()
	env.batch.result = &services.RecalculateResult{
		Processed: []uuid.UUID{ok},
		Errors:    []services.BatchError{{ID: failed, Error: "job not found"}},
	}

	status, body := env.do(t, "POST", "/api/v1/jobs/"+uuid.NewString()+"/recalculate", `{"algorithm_version": "2.0.0"}`)

	if status != fiber.StatusOK {
		t.Fatalf("status = %d, body %v", status, body)
	}
	if body["processed_count"] != float64(1) || body["error_count"] != float64(1) {
		t.Fatalf("unexpected counts: %v", body)
	}
	if env.batch.lastOpts.BatchSize != 10 || env.batch.lastOpts.AlgorithmVersion != "2.0.0" {
		t.Fatalf("unexpected options: %+v", env.batch.lastOpts)
	}
}

func TestHandleRecalculate_Errors(t *testing.T) {
	env := newTestEnv()

	if status, _ := env.do(t, "POST", "/api/v1/jobs/nope/recalculate", ""); status != fiber.StatusBadRequest {
		t.Fatalf("bad id status = %d", status)
	}
	if status, _ := env.do(t, "POST", "/api/v1/jobs/"+uuid.NewString()+"/recalculate", `{"batch_size": -1}`); status != fiber.StatusBadRequest {
		t.Fatalf("negative batch status = %d", status)
	}

	env.batch.err = errors.New("db down")
	status, body := env.do(t, "POST", "/api/v1/jobs/"+uuid.NewString()+"/recalculate", "")
	if status != fiber.StatusInternalServerError || body["error"] != MsgAnalysisFailed {
		t.Fatalf("status = %d, body %v", status, body)
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv()
	status, body := env.do(t, "GET", "/api/v1/health", "")
	if status != fiber.StatusOK || body["status"] != "healthy" {
		t.Fatalf("status = %d, body %v", status, body)
	}
}
