package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"kodkariyer/ats-engine/internal/metrics"
)

// maxEmbeddingInput bounds the text sent to a provider, roughly 10k tokens.
const maxEmbeddingInput = 40000

// EmbeddingProvider turns text into a vector. Tokens is 0 when the provider
// does not report usage.
type EmbeddingProvider interface {
	GenerateEmbedding(ctx context.Context, text string) (vec []float32, tokens int, err error)
	Model() string
}

func truncateInput(text string) string {
	if len(text) <= maxEmbeddingInput {
		return text
	}
	// Step back to a rune boundary.
	cut := maxEmbeddingInput
	for cut > 0 && text[cut]&0xC0 == 0x80 {
		cut--
	}
	return text[:cut]
}

type retryingProvider struct {
	next       EmbeddingProvider
	maxRetries int
	backoff    time.Duration
	log        *zap.Logger
}

// WithRetry retries failed embedding calls up to maxRetries attempts in
// total, waiting a linearly growing backoff between attempts.
func WithRetry(p EmbeddingProvider, maxRetries int, backoff time.Duration, log *zap.Logger) EmbeddingProvider {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &retryingProvider{next: p, maxRetries: maxRetries, backoff: backoff, log: log}
}

func (r *retryingProvider) Model() string { return r.next.Model() }

func (r *retryingProvider) GenerateEmbedding(ctx context.Context, text string) ([]float32, int, error) {
	var lastErr error

	for attempt := 1; attempt <= r.maxRetries; attempt++ {
		vec, tokens, err := r.next.GenerateEmbedding(ctx, text)
		if err == nil {
			return vec, tokens, nil
		}
		lastErr = err
		metrics.EmbeddingErrors.WithLabelValues(r.next.Model()).Inc()

		if attempt == r.maxRetries {
			break
		}

		r.log.Warn("embedding attempt failed, retrying",
			zap.Int("attempt", attempt),
			zap.String("model", r.next.Model()),
			zap.Error(err),
		)

		if ctx.Err() != nil {
			return nil, 0, fmt.Errorf("context cancelled: %w", ctx.Err())
		}

		select {
		case <-ctx.Done():
			return nil, 0, fmt.Errorf("context cancelled: %w", ctx.Err())
		case <-time.After(time.Duration(attempt) * r.backoff):
		}
	}

	return nil, 0, fmt.Errorf("failed after %d attempts: %w", r.maxRetries, lastErr)
}
