package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/embedding"
)

const DefaultModel = "text-embedding-3-small"

type OpenAIProvider struct {
	client     *openai.Client
	model      string
	dimensions int
}

var _ embedding.EmbeddingProvider = &OpenAIProvider{}

// NewOpenAIProvider embeds through the OpenAI Embeddings API. dimensions > 0
// asks text-embedding-3 models for a shortened vector so it fits the
// pgvector column.
func NewOpenAIProvider(apiKey, baseURL, model string, dimensions int) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, errors.New("openai: api key is required")
	}
	if model == "" {
		model = DefaultModel
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(opts...)

	return &OpenAIProvider{client: &client, model: model, dimensions: dimensions}, nil
}

func (p *OpenAIProvider) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	params := openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)},
		Model: openai.EmbeddingModel(p.model),
	}
	if p.dimensions > 0 {
		params.Dimensions = openai.Int(int64(p.dimensions))
	}

	resp, err := p.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai embedding: %w", err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, errors.New("openai: empty embedding in response")
	}

	values := make([]float32, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		values[i] = float32(v)
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: embedding.Normalize(values)},
	}, nil
}
