package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"kodkariyer/ats-engine/internal/metrics"
)

type EmbeddingCache interface {
	Get(ctx context.Context, model, text string) ([]float32, bool, error)
	Set(ctx context.Context, model, text string, embedding []float32) error
}

type redisEmbeddingCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

func NewRedisEmbeddingCache(client *redis.Client, ttl time.Duration) EmbeddingCache {
	return &redisEmbeddingCache{client: client, ttl: ttl}
}

// embeddingKey scopes cached vectors by model so switching providers never
// mixes vector spaces.
func embeddingKey(model, text string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("embedding:%s:%s", model, hex.EncodeToString(sum[:]))
}

func (c *redisEmbeddingCache) Get(ctx context.Context, model, text string) ([]float32, bool, error) {
	data, err := c.client.Get(ctx, embeddingKey(model, text)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get embedding cache: %w", err)
	}

	var embedding []float32
	if err := json.Unmarshal(data, &embedding); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal embedding: %w", err)
	}

	return embedding, true, nil
}

func (c *redisEmbeddingCache) Set(ctx context.Context, model, text string, embedding []float32) error {
	data, err := json.Marshal(embedding)
	if err != nil {
		return fmt.Errorf("failed to marshal embedding: %w", err)
	}

	if err := c.client.Set(ctx, embeddingKey(model, text), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set embedding cache: %w", err)
	}
	return nil
}

type cachedProvider struct {
	next  EmbeddingProvider
	cache EmbeddingCache
	log   *zap.Logger
}

// WithCache serves repeated texts from cache. Cache errors are logged and
// the provider is called as if the cache were absent. Hits report 0 tokens.
func WithCache(p EmbeddingProvider, cache EmbeddingCache, log *zap.Logger) EmbeddingProvider {
	return &cachedProvider{next: p, cache: cache, log: log}
}

func (c *cachedProvider) Model() string { return c.next.Model() }

func (c *cachedProvider) GenerateEmbedding(ctx context.Context, text string) ([]float32, int, error) {
	model := c.next.Model()

	vec, ok, err := c.cache.Get(ctx, model, text)
	if err != nil {
		c.log.Warn("embedding cache lookup failed", zap.Error(err))
	}
	if ok {
		metrics.EmbeddingCache.WithLabelValues("hit").Inc()
		return vec, 0, nil
	}
	metrics.EmbeddingCache.WithLabelValues("miss").Inc()

	vec, tokens, err := c.next.GenerateEmbedding(ctx, text)
	if err != nil {
		return nil, 0, err
	}

	if err := c.cache.Set(ctx, model, text, vec); err != nil {
		c.log.Warn("embedding cache write failed", zap.Error(err))
	}

	return vec, tokens, nil
}
