package jina

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/embedding"
)

const (
	DefaultBaseURL = "https://api.jina.ai/v1/embeddings"
	DefaultModel   = "jina-embeddings-v2-base-en"
)

type JinaProvider struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

var _ embedding.EmbeddingProvider = &JinaProvider{}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
	Task  string   `json:"task,omitempty"`
}

type embeddingResponse struct {
	Data []struct {
		Object    string    `json:"object"`
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Detail string `json:"detail,omitempty"`
}

func NewJinaProvider(apiKey, baseURL, model string) *JinaProvider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &JinaProvider{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (p *JinaProvider) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	jsonData, err := json.Marshal(embeddingRequest{
		Model: p.model,
		Input: []string{text},
		Task:  p.task(taskType),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jina api error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var jinaResp embeddingResponse
	if err := json.Unmarshal(bodyBytes, &jinaResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(jinaResp.Data) == 0 || len(jinaResp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("empty embeddings from jina api")
	}

	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{
			Values: embedding.Normalize(jinaResp.Data[0].Embedding),
		},
	}, nil
}

// Only v3 models accept a task adapter.
func (p *JinaProvider) task(taskType string) string {
	if !strings.Contains(p.model, "v3") {
		return ""
	}
	switch taskType {
	case embedding.TaskRetrievalQuery:
		return "retrieval.query"
	case embedding.TaskRetrievalDocument:
		return "retrieval.passage"
	}
	return ""
}
