package services

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

type geminiProvider struct {
	client     *genai.Client
	embedModel string
	dimensions int32
}

func NewGeminiProvider(ctx context.Context, apiKey, model string, dimensions int) (EmbeddingProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiProvider{
		client:     client,
		embedModel: model,
		dimensions: int32(dimensions),
	}, nil
}

func (g *geminiProvider) Model() string { return g.embedModel }

// GenerateEmbedding implements EmbeddingProvider.
func (g *geminiProvider) GenerateEmbedding(ctx context.Context, text string) ([]float32, int, error) {
	var cfg *genai.EmbedContentConfig
	if g.dimensions > 0 {
		cfg = &genai.EmbedContentConfig{OutputDimensionality: &g.dimensions}
	}

	result, err := g.client.Models.EmbedContent(ctx, g.embedModel, genai.Text(truncateInput(text)), cfg)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if result == nil || len(result.Embeddings) == 0 {
		return nil, 0, fmt.Errorf("empty embedding result")
	}

	emb := result.Embeddings[0]
	tokens := 0
	// Usage statistics are only reported by some backends.
	if emb.Statistics != nil {
		tokens = int(emb.Statistics.TokenCount)
	}

	return emb.Values, tokens, nil
}
