package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/embedding"
)

func TestOllamaProvider_Generate(t *testing.T) {
	var got embeddingRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embeddings", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"embedding":[3,4]}`))
	}))
	defer srv.Close()

	res, err := NewOllamaProvider(srv.URL, "").Generate(context.Background(), "what is a stack", embedding.TaskRetrievalQuery)

	require.NoError(t, err)
	assert.Equal(t, DefaultModel, got.Model)
	assert.Equal(t, "search_query: what is a stack", got.Prompt)
	assert.InDeltaSlice(t, []float32{0.6, 0.8}, res.Embedding.Values, 1e-6)
}

func TestOllamaProvider_NoPrefixForOtherModels(t *testing.T) {
	p := NewOllamaProvider("", "mxbai-embed-large")

	assert.Equal(t, "", p.taskPrefix(embedding.TaskRetrievalDocument))
	assert.Equal(t, DefaultBaseURL, p.BaseURL)
}

func TestOllamaProvider_EmptyEmbedding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"embedding":[]}`))
	}))
	defer srv.Close()

	_, err := NewOllamaProvider(srv.URL, "").Generate(context.Background(), "x", embedding.TaskRetrievalDocument)
	assert.Error(t, err)
}
