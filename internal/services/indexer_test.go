package services

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"kodkariyer/ats-engine/internal/models"
)

type indexJobRepo struct {
	fakeJobRepo
	missing []models.Job
	saved   map[uuid.UUID][]float32
	marked  []uuid.UUID
}

// FindMissingEmbeddings mirrors the repository filter: no pgvector column
// and no external vector marker.
func (r *indexJobRepo) FindMissingEmbeddings(context.Context, int) ([]models.Job, error) {
	var out []models.Job
	for _, j := range r.missing {
		if _, ok := r.saved[j.ID]; ok || slices.Contains(r.marked, j.ID) {
			continue
		}
		out = append(out, j)
	}
	return out, nil
}

func (r *indexJobRepo) MarkVectorIndexed(_ context.Context, id uuid.UUID) error {
	r.marked = append(r.marked, id)
	return nil
}

func (r *indexJobRepo) SaveEmbedding(_ context.Context, id uuid.UUID, vec []float32) error {
	r.saved[id] = vec
	return nil
}

type indexCandidateRepo struct {
	fakeCandidateRepo
	missingText []models.CV
	missingVec  []models.CV
	texts       map[uuid.UUID]string
	saved       map[uuid.UUID][]float32
	marked      []uuid.UUID
}

func (r *indexCandidateRepo) MarkCVVectorIndexed(_ context.Context, id uuid.UUID) error {
	r.marked = append(r.marked, id)
	return nil
}

func (r *indexCandidateRepo) FindCVsMissingText(context.Context, int) ([]models.CV, error) {
	return r.missingText, nil
}

func (r *indexCandidateRepo) FindCVsMissingEmbeddings(context.Context, int) ([]models.CV, error) {
	var out []models.CV
	for _, cv := range r.missingVec {
		if _, ok := r.saved[cv.ID]; ok || slices.Contains(r.marked, cv.ID) {
			continue
		}
		out = append(out, cv)
	}
	return out, nil
}

func (r *indexCandidateRepo) SaveCVText(_ context.Context, id uuid.UUID, text string) error {
	r.texts[id] = text
	return nil
}

func (r *indexCandidateRepo) SaveCVEmbedding(_ context.Context, id uuid.UUID, vec []float32) error {
	r.saved[id] = vec
	return nil
}

type stubExtractor struct {
	text map[string]string
}

func (s stubExtractor) ExtractText(path string) (*CVContent, error) {
	t, ok := s.text[path]
	if !ok {
		return nil, errors.New("file does not exist")
	}
	return &CVContent{Text: t, PageCount: 1}, nil
}

type recordingStore struct {
	stubStore
	upserts map[VectorKind][]uuid.UUID
}

func (r *recordingStore) UpsertVector(_ context.Context, kind VectorKind, id uuid.UUID, _ []float32) error {
	r.upserts[kind] = append(r.upserts[kind], id)
	return nil
}

func TestEmbeddingIndexer_Postgres(t *testing.T) {
	job := models.Job{ID: uuid.New(), Title: "Go Developer", Description: "Build APIs"}
	withText := models.CV{ID: uuid.New(), RawText: "Go, PostgreSQL"}
	withoutText := models.CV{ID: uuid.New()}

	jobs := &indexJobRepo{missing: []models.Job{job}, saved: map[uuid.UUID][]float32{}}
	cands := &indexCandidateRepo{missingVec: []models.CV{withText, withoutText}, saved: map[uuid.UUID][]float32{}}
	provider := &stubProvider{vectors: map[string][]float32{
		"Go Developer\n\nBuild APIs": {1, 0},
		"Go, PostgreSQL":             {0, 1},
	}}

	idx := NewEmbeddingIndexer(jobs, cands, provider, nil, stubExtractor{}, zap.NewNop())
	ctx := context.Background()

	js, err := idx.IndexJobs(ctx, 10)
	if err != nil || js.Indexed != 1 {
		t.Fatalf("IndexJobs = %+v, %v", js, err)
	}
	if len(jobs.saved[job.ID]) != 2 {
		t.Fatalf("job embedding not saved")
	}

	cs, err := idx.IndexCVs(ctx, 10)
	if err != nil || cs.Indexed != 1 || cs.Failed != 0 {
		t.Fatalf("IndexCVs = %+v, %v", cs, err)
	}
	if _, ok := cands.saved[withoutText.ID]; ok {
		t.Fatalf("cv without text must be skipped")
	}
}

func TestEmbeddingIndexer_VectorStore(t *testing.T) {
	job := models.Job{ID: uuid.New(), Title: "Go Developer"}
	jobs := &indexJobRepo{missing: []models.Job{job}, saved: map[uuid.UUID][]float32{}}
	cands := &indexCandidateRepo{saved: map[uuid.UUID][]float32{}}
	store := &recordingStore{upserts: map[VectorKind][]uuid.UUID{}}

	idx := NewEmbeddingIndexer(jobs, cands, &stubProvider{}, store, stubExtractor{}, zap.NewNop())
	if _, err := idx.IndexJobs(context.Background(), 10); err != nil {
		t.Fatalf("IndexJobs: %v", err)
	}

	if len(store.upserts[VectorKindJob]) != 1 || len(jobs.saved) != 0 {
		t.Fatalf("expected the vector store to receive the job vector, got %+v / %d", store.upserts, len(jobs.saved))
	}
}

func TestEmbeddingIndexer_ProviderFailure(t *testing.T) {
	jobs := &indexJobRepo{missing: []models.Job{{ID: uuid.New(), Title: "x"}}, saved: map[uuid.UUID][]float32{}}
	idx := NewEmbeddingIndexer(jobs, &indexCandidateRepo{}, &stubProvider{err: errors.New("quota")}, nil, stubExtractor{}, zap.NewNop())

	stats, err := idx.IndexJobs(context.Background(), 10)
	if err != nil || stats.Failed != 1 || stats.Indexed != 0 {
		t.Fatalf("stats = %+v, err = %v", stats, err)
	}
}

func TestEmbeddingIndexer_NoProvider(t *testing.T) {
	idx := NewEmbeddingIndexer(&indexJobRepo{}, &indexCandidateRepo{}, nil, nil, stubExtractor{}, zap.NewNop())

	if _, err := idx.IndexJobs(context.Background(), 10); err == nil {
		t.Fatalf("expected error without a provider")
	}
}

func TestEmbeddingIndexer_FillCVText(t *testing.T) {
	ok := models.CV{ID: uuid.New(), FilePath: "cv.pdf"}
	missing := models.CV{ID: uuid.New(), FilePath: "gone.pdf"}
	cands := &indexCandidateRepo{missingText: []models.CV{ok, missing}, texts: map[uuid.UUID]string{}}

	idx := NewEmbeddingIndexer(&indexJobRepo{}, cands, nil, nil, stubExtractor{text: map[string]string{"cv.pdf": "Go developer"}}, zap.NewNop())

	stats, err := idx.FillCVText(context.Background(), 10)
	if err != nil {
		t.Fatalf("FillCVText: %v", err)
	}
	if stats.Indexed != 1 || stats.Failed != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if cands.texts[ok.ID] != "Go developer" {
		t.Fatalf("text not saved: %v", cands.texts)
	}
}

func TestCleanText(t *testing.T) {
	got := CleanText("  Ada Lovelace \n\n\n  Go, SQL  \n")
	if got != "Ada Lovelace\nGo, SQL" {
		t.Fatalf("CleanText() = %q", got)
	}
}

func TestEmbeddingIndexer_VectorStoreSkipsIndexedRows(t *testing.T) {
	job := models.Job{ID: uuid.New(), Title: "Go Developer"}
	cv := models.CV{ID: uuid.New(), RawText: "Go, PostgreSQL"}
	jobs := &indexJobRepo{missing: []models.Job{job}, saved: map[uuid.UUID][]float32{}}
	cands := &indexCandidateRepo{missingVec: []models.CV{cv}, saved: map[uuid.UUID][]float32{}}
	store := &recordingStore{upserts: map[VectorKind][]uuid.UUID{}}
	provider := &stubProvider{}

	idx := NewEmbeddingIndexer(jobs, cands, provider, store, stubExtractor{}, zap.NewNop())
	ctx := context.Background()

	for run := 0; run < 2; run++ {
		if _, err := idx.IndexJobs(ctx, 10); err != nil {
			t.Fatalf("IndexJobs run %d: %v", run, err)
		}
		if _, err := idx.IndexCVs(ctx, 10); err != nil {
			t.Fatalf("IndexCVs run %d: %v", run, err)
		}
	}

	if len(store.upserts[VectorKindJob]) != 1 {
		t.Fatalf("job upserted %d times, want 1", len(store.upserts[VectorKindJob]))
	}
	if !slices.Equal(jobs.marked, []uuid.UUID{job.ID}) || !slices.Equal(cands.marked, []uuid.UUID{cv.ID}) {
		t.Fatalf("marked jobs %v, cvs %v", jobs.marked, cands.marked)
	}
	if provider.calls != 2 {
		t.Fatalf("provider called %d times, want 2", provider.calls)
	}
}
