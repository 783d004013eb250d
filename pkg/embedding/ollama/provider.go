package ollama

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
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "nomic-embed-text"
)

// OllamaProvider implements EmbeddingProvider for local Ollama models (e.g., nomic-embed-text)
type OllamaProvider struct {
	BaseURL string
	Model   string
	Client  *http.Client
}

var _ embedding.EmbeddingProvider = &OllamaProvider{}

func NewOllamaProvider(baseURL string, model string) *OllamaProvider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &OllamaProvider{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Model:   model,
		Client:  &http.Client{Timeout: 60 * time.Second},
	}
}

type embeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embeddingResponse struct {
	Embedding []float64 `json:"embedding"`
	Error     string    `json:"error,omitempty"`
}

func (p *OllamaProvider) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	body, err := json.Marshal(embeddingRequest{
		Model:  p.Model,
		Prompt: p.taskPrefix(taskType) + text,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama embedding request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama embedding error (status %d): %s", resp.StatusCode, string(raw))
	}

	var out embeddingResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("ollama embedding error: %s", out.Error)
	}
	if len(out.Embedding) == 0 {
		return nil, fmt.Errorf("empty embedding from ollama")
	}

	values := make([]float32, len(out.Embedding))
	for i, v := range out.Embedding {
		values[i] = float32(v)
	}

	// pgvector cosine distance assumes unit vectors
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: embedding.Normalize(values)},
	}, nil
}

// nomic-embed models are trained with task prefixes on the input text.
func (p *OllamaProvider) taskPrefix(taskType string) string {
	if !strings.HasPrefix(p.Model, "nomic-embed") {
		return ""
	}
	switch taskType {
	case embedding.TaskRetrievalQuery:
		return "search_query: "
	case embedding.TaskRetrievalDocument:
		return "search_document: "
	}
	return ""
}
