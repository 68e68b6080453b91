package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"
)

type VectorKind string

const (
	VectorKindJob VectorKind = "job"
	VectorKindCV  VectorKind = "cv"
)

// VectorStore keeps job and CV embeddings outside postgres. Points are keyed
// by the job or CV id and tagged with their kind.
type VectorStore interface {
	InitCollection(ctx context.Context) error
	UpsertVector(ctx context.Context, kind VectorKind, id uuid.UUID, embedding []float32) error
	StoredVectors(ctx context.Context, jobID, cvID uuid.UUID) (job []float32, cv []float32, err error)
}

type qdrantStore struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
	log            *zap.Logger
}

func NewQdrantStore(urlStr, apiKey, collectionName string, vectorSize int, log *zap.Logger) (VectorStore, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// gRPC port
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &qdrantStore{
		client:         client,
		collectionName: collectionName,
		vectorSize:     uint64(vectorSize),
		log:            log,
	}, nil
}

// InitCollection implements VectorStore.
func (q *qdrantStore) InitCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		q.log.Debug("qdrant collection already exists", zap.String("collection", q.collectionName))
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	q.log.Info("qdrant collection created", zap.String("collection", q.collectionName))
	return nil
}

// UpsertVector implements VectorStore.
func (q *qdrantStore) UpsertVector(ctx context.Context, kind VectorKind, id uuid.UUID, embedding []float32) error {
	point := &qdrant.PointStruct{
		Id:      qdrant.NewID(id.String()),
		Vectors: qdrant.NewVectors(embedding...),
		Payload: qdrant.NewValueMap(map[string]any{
			"kind":      string(kind),
			"entity_id": id.String(),
		}),
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert point: %w", err)
	}

	return nil
}

// StoredVectors implements VectorStore. Missing points come back as nil
// slices, not as an error.
func (q *qdrantStore) StoredVectors(ctx context.Context, jobID, cvID uuid.UUID) ([]float32, []float32, error) {
	ids := []*qdrant.PointId{qdrant.NewID(jobID.String())}
	if cvID != uuid.Nil {
		ids = append(ids, qdrant.NewID(cvID.String()))
	}

	points, err := q.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: q.collectionName,
		Ids:            ids,
		WithVectors:    qdrant.NewWithVectors(true),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get points: %w", err)
	}

	var job, cv []float32
	for _, p := range points {
		data := p.GetVectors().GetVector().GetData()
		switch p.GetId().GetUuid() {
		case jobID.String():
			job = data
		case cvID.String():
			cv = data
		}
	}

	return job, cv, nil
}
