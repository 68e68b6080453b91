package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"kodkariyer/ats-engine/internal/models"
	"kodkariyer/ats-engine/internal/repositories"
)

type scoreKey struct {
	app     uuid.UUID
	version string
}

// memDB backs the in-memory repositories below and counts every write.
type memDB struct {
	mu       sync.Mutex
	apps     map[uuid.UUID]*models.Application
	jobs     map[uuid.UUID]*models.JobRequirements
	profiles map[uuid.UUID]*models.CandidateProfile
	scores   map[scoreKey]*models.ATSScore
	logs     []models.MatchingLog
	configs  []models.AlgorithmConfigRecord
	writes   int

	upsertErr error
	matchErr  error
	logErr    error
	listErr   error
}

func newMemDB() *memDB {
	return &memDB{
		apps:     map[uuid.UUID]*models.Application{},
		jobs:     map[uuid.UUID]*models.JobRequirements{},
		profiles: map[uuid.UUID]*models.CandidateProfile{},
		scores:   map[scoreKey]*models.ATSScore{},
	}
}

func (db *memDB) writeCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.writes
}

func (db *memDB) score(app uuid.UUID, version string) *models.ATSScore {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.scores[scoreKey{app, version}]
}

type fakeApplicationRepo struct{ db *memDB }

func (r fakeApplicationRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Application, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	app, ok := r.db.apps[id]
	if !ok {
		return nil, fmt.Errorf("application %s: %w", id, repositories.ErrNotFound)
	}
	cp := *app
	return &cp, nil
}

func (r fakeApplicationRepo) ListIDsByJob(_ context.Context, jobID uuid.UUID) ([]uuid.UUID, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.listErr != nil {
		return nil, r.db.listErr
	}
	var ids []uuid.UUID
	for _, app := range r.db.apps {
		if app.JobID == jobID {
			ids = append(ids, app.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids, nil
}

func (r fakeApplicationRepo) UpdateMatch(_ context.Context, id uuid.UUID, update *repositories.MatchUpdate) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.matchErr != nil {
		return r.db.matchErr
	}
	app, ok := r.db.apps[id]
	if !ok {
		return repositories.ErrNotFound
	}
	r.db.writes++
	score, reason := update.Score, update.Reason
	app.MatchScore = &score
	app.MatchReason = &reason
	return nil
}

type fakeJobRepo struct{ db *memDB }

func (r fakeJobRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Job, error) {
	return nil, repositories.ErrNotFound
}

func (r fakeJobRepo) FindRequirements(_ context.Context, id uuid.UUID) (*models.JobRequirements, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	job, ok := r.db.jobs[id]
	if !ok {
		return nil, fmt.Errorf("job %s: %w", id, repositories.ErrNotFound)
	}
	return job, nil
}

func (r fakeJobRepo) FindMissingEmbeddings(context.Context, int) ([]models.Job, error) {
	return nil, nil
}

func (r fakeJobRepo) SaveEmbedding(context.Context, uuid.UUID, []float32) error { return nil }

func (r fakeJobRepo) MarkVectorIndexed(context.Context, uuid.UUID) error { return nil }

type fakeCandidateRepo struct{ db *memDB }

func (r fakeCandidateRepo) FindProfile(_ context.Context, developerID, _ uuid.UUID) (*models.CandidateProfile, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.profiles[developerID]
	if !ok {
		return nil, fmt.Errorf("developer %s: %w", developerID, repositories.ErrNotFound)
	}
	return p, nil
}

func (r fakeCandidateRepo) FindCVsMissingText(context.Context, int) ([]models.CV, error) {
	return nil, nil
}

func (r fakeCandidateRepo) FindCVsMissingEmbeddings(context.Context, int) ([]models.CV, error) {
	return nil, nil
}

func (r fakeCandidateRepo) SaveCVText(context.Context, uuid.UUID, string) error { return nil }

func (r fakeCandidateRepo) SaveCVEmbedding(context.Context, uuid.UUID, []float32) error { return nil }

func (r fakeCandidateRepo) MarkCVVectorIndexed(context.Context, uuid.UUID) error { return nil }

type fakeScoreRepo struct{ db *memDB }

func (r fakeScoreRepo) FindByApplicationAndVersion(_ context.Context, app uuid.UUID, version string) (*models.ATSScore, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	s, ok := r.db.scores[scoreKey{app, version}]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r fakeScoreRepo) Upsert(_ context.Context, score *models.ATSScore) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.upsertErr != nil {
		return r.db.upsertErr
	}
	r.db.writes++
	key := scoreKey{score.ApplicationID, score.AlgorithmVersion}
	if existing, ok := r.db.scores[key]; ok {
		score.ID = existing.ID
	}
	cp := *score
	r.db.scores[key] = &cp
	return nil
}

func (r fakeScoreRepo) MarkPending(_ context.Context, app uuid.UUID, version string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.writes++
	key := scoreKey{app, version}
	if s, ok := r.db.scores[key]; ok {
		s.Status = models.StatusPending
		return nil
	}
	r.db.scores[key] = &models.ATSScore{ID: uuid.New(), ApplicationID: app, AlgorithmVersion: version, Status: models.StatusPending}
	return nil
}

func (r fakeScoreRepo) UpdateStatus(_ context.Context, app uuid.UUID, version string, status models.ScoreStatus) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	s, ok := r.db.scores[scoreKey{app, version}]
	if !ok {
		return repositories.ErrNotFound
	}
	r.db.writes++
	s.Status = status
	return nil
}

func (r fakeScoreRepo) UpdateError(_ context.Context, app uuid.UUID, version string, msg string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	s, ok := r.db.scores[scoreKey{app, version}]
	if !ok {
		return repositories.ErrNotFound
	}
	r.db.writes++
	s.Status = models.StatusFailed
	s.ErrorMessage = &msg
	return nil
}

func (r fakeScoreRepo) FindPending(_ context.Context, limit int) ([]models.ATSScore, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []models.ATSScore
	for _, s := range r.db.scores {
		if s.Status == models.StatusPending && len(out) < limit {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r fakeScoreRepo) ListByJob(_ context.Context, jobID uuid.UUID, version string) ([]models.ATSScore, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []models.ATSScore
	for k, s := range r.db.scores {
		if app, ok := r.db.apps[k.app]; ok && app.JobID == jobID && k.version == version && s.Status == models.StatusCompleted {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FinalScore > out[j].FinalScore })
	return out, nil
}

type fakeMatchingLogRepo struct{ db *memDB }

func (r fakeMatchingLogRepo) Create(_ context.Context, entry *models.MatchingLog) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.logErr != nil {
		return r.db.logErr
	}
	r.db.writes++
	r.db.logs = append(r.db.logs, *entry)
	return nil
}

type fakeConfigRepo struct{ db *memDB }

func (r fakeConfigRepo) FindActive(context.Context) (*models.AlgorithmConfigRecord, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var best *models.AlgorithmConfigRecord
	for i := range r.db.configs {
		c := &r.db.configs[i]
		if c.IsActive && (best == nil || c.CreatedAt.After(best.CreatedAt)) {
			best = c
		}
	}
	if best == nil {
		return nil, repositories.ErrNotFound
	}
	cp := *best
	return &cp, nil
}

func (r fakeConfigRepo) FindByVersion(_ context.Context, version string) (*models.AlgorithmConfigRecord, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, c := range r.db.configs {
		if c.Version == version {
			cp := c
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

// stubSemantic returns a fixed result.
type stubSemantic struct {
	result SemanticResult
}

func (s stubSemantic) Score(context.Context, *models.JobRequirements, *models.CandidateProfile) SemanticResult {
	return s.result
}

// stubRule returns a fixed rule score.
type stubRule struct {
	score int
}

func (s stubRule) Score(*models.JobRequirements, *models.CandidateProfile, models.AlgorithmWeights) RuleResult {
	return RuleResult{Score: s.score, PositiveFactors: []string{}, NegativeFactors: []string{}}
}

// stubProvider returns canned vectors keyed by input text.
type stubProvider struct {
	mu      sync.Mutex
	vectors map[string][]float32
	tokens  int
	err     error
	calls   int
}

func (p *stubProvider) GenerateEmbedding(_ context.Context, text string) ([]float32, int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return nil, 0, p.err
	}
	return p.vectors[text], p.tokens, nil
}

func (p *stubProvider) Model() string { return "stub-embedding" }

type fixture struct {
	db      *memDB
	service ATSService
	jobID   uuid.UUID
	appID   uuid.UUID
}

// newFixture seeds one job, one developer and one application and wires the
// service with the given scorers.
func newFixture(rule RuleScorer, semantic SemanticScorer) *fixture {
	db := newMemDB()

	jobID, devID, cvID, appID := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	db.jobs[jobID] = &models.JobRequirements{
		JobID:          jobID,
		Text:           "Backend developer",
		RequiredSkills: []string{"go", "postgresql"},
	}
	db.profiles[devID] = &models.CandidateProfile{
		DeveloperID:     devID,
		CVID:            cvID,
		Skills:          []string{"go"},
		ExperienceYears: 4,
		CVText:          "Go developer",
	}
	db.apps[appID] = &models.Application{ID: appID, JobID: jobID, DeveloperID: devID, CVID: cvID}

	svc := NewATSService(
		fakeApplicationRepo{db},
		fakeJobRepo{db},
		fakeCandidateRepo{db},
		fakeScoreRepo{db},
		fakeMatchingLogRepo{db},
		NewAlgorithmConfigLoader(fakeConfigRepo{db}, zap.NewNop()),
		rule,
		semantic,
		zap.NewNop(),
	)

	return &fixture{db: db, service: svc, jobID: jobID, appID: appID}
}
