package services

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

type openAIProvider struct {
	client *openai.Client
	model  string
}

func NewOpenAIProvider(apiKey, model string) EmbeddingProvider {
	return &openAIProvider{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (o *openAIProvider) Model() string { return o.model }

// GenerateEmbedding implements EmbeddingProvider.
func (o *openAIProvider) GenerateEmbedding(ctx context.Context, text string) ([]float32, int, error) {
	resp, err := o.client.CreateEmbeddings(
		ctx,
		openai.EmbeddingRequest{
			Input: []string{truncateInput(text)},
			Model: openai.EmbeddingModel(o.model),
		},
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if len(resp.Data) == 0 {
		return nil, 0, fmt.Errorf("empty embedding result")
	}

	return resp.Data[0].Embedding, resp.Usage.TotalTokens, nil
}
