package app

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"kodkariyer/ats-engine/internal/config"
	"kodkariyer/ats-engine/internal/repositories"
	"kodkariyer/ats-engine/internal/services"
)

const embeddingRetryBackoff = 500 * time.Millisecond

// Container holds the wired dependencies shared by the API server, the
// operator CLI and the backfill script.
type Container struct {
	Config *config.Config
	Log    *zap.Logger
	DB     *gorm.DB

	Applications repositories.ApplicationRepository
	Jobs         repositories.JobRepository
	Candidates   repositories.CandidateRepository
	Scores       repositories.ScoreRepository

	// Provider is nil when no embedding credential is configured.
	Provider services.EmbeddingProvider
	// VectorStore is nil unless Qdrant is configured.
	VectorStore services.VectorStore

	ATS     services.ATSService
	Batch   services.BatchService
	Indexer services.EmbeddingIndexer

	redis *redis.Client
}

func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Container, error) {
	db, err := config.InitDatabase(cfg, log)
	if err != nil {
		return nil, err
	}

	c := &Container{
		Config:       cfg,
		Log:          log,
		DB:           db,
		Applications: repositories.NewApplicationRepository(db),
		Jobs:         repositories.NewJobRepository(db),
		Candidates:   repositories.NewCandidateRepository(db),
		Scores:       repositories.NewScoreRepository(db),
	}

	if err := c.initEmbeddings(ctx); err != nil {
		return nil, err
	}

	configLoader := services.NewAlgorithmConfigLoader(repositories.NewAlgorithmConfigRepository(db), log)
	semantic := services.NewSemanticScorer(c.Provider, c.VectorStore, log)

	c.ATS = services.NewATSService(
		c.Applications,
		c.Jobs,
		c.Candidates,
		c.Scores,
		repositories.NewMatchingLogRepository(db),
		configLoader,
		services.NewRuleScorer(),
		semantic,
		log,
	)
	c.Batch = services.NewBatchService(c.Applications, c.ATS, log)
	c.Indexer = services.NewEmbeddingIndexer(c.Jobs, c.Candidates, c.Provider, c.IndexStore(), services.NewPDFExtractor(), log)

	return c, nil
}

func (c *Container) initEmbeddings(ctx context.Context) error {
	cfg := c.Config

	if key := cfg.EmbeddingAPIKey(); key == "" {
		c.Log.Warn("no embedding credential configured, semantic scores will be 0 unless embeddings are stored",
			zap.String("provider", cfg.Embedding.Provider))
	} else {
		var provider services.EmbeddingProvider
		switch cfg.Embedding.Provider {
		case config.ProviderOpenAI:
			provider = services.NewOpenAIProvider(key, cfg.EmbeddingModel())
		case config.ProviderGemini:
			p, err := services.NewGeminiProvider(ctx, key, cfg.EmbeddingModel(), cfg.Embedding.Dimensions)
			if err != nil {
				return err
			}
			provider = p
		default:
			return fmt.Errorf("unknown embedding provider %q", cfg.Embedding.Provider)
		}

		provider = services.WithRetry(provider, cfg.Embedding.MaxRetries, embeddingRetryBackoff, c.Log)

		if cfg.RedisEnabled() {
			client, err := services.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
			if err != nil {
				c.Log.Warn("embedding cache disabled", zap.Error(err))
			} else {
				c.redis = client
				provider = services.WithCache(provider, services.NewRedisEmbeddingCache(client, cfg.Scoring.EmbeddingCacheTTL), c.Log)
			}
		}

		c.Provider = provider
		c.Log.Info("embedding provider ready", zap.String("provider", cfg.Embedding.Provider), zap.String("model", provider.Model()))
	}

	if cfg.QdrantEnabled() {
		store, err := services.NewQdrantStore(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection, cfg.Embedding.Dimensions, c.Log)
		if err != nil {
			return err
		}
		if err := store.InitCollection(ctx); err != nil {
			return err
		}
		c.VectorStore = store
	} else if cfg.Embedding.Store == config.StoreQdrant {
		return fmt.Errorf("EMBEDDING_STORE=%s requires QDRANT_URL", config.StoreQdrant)
	}

	return nil
}

// IndexStore returns the vector store the backfill writes to, or nil for
// the pgvector columns.
func (c *Container) IndexStore() services.VectorStore {
	if c.Config.Embedding.Store == config.StoreQdrant {
		return c.VectorStore
	}
	return nil
}

func (c *Container) NewWorker() services.Worker {
	return services.NewWorker(
		c.Scores,
		c.ATS,
		c.Config.Worker.Concurrency,
		c.Config.Worker.QueueSize,
		c.Config.Worker.PollInterval,
		c.Log,
	)
}

func (c *Container) Close() {
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			c.Log.Warn("failed to close redis client", zap.Error(err))
		}
	}

	if sqlDB, err := c.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			c.Log.Warn("failed to close database", zap.Error(err))
		}
	}
}
