package server

import (
	"context"
	"io"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamfranciscoalmeida/flashly-ai-sub001/internal/bootstrap"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		App: config.AppConfig{
			Port:               "0",
			Environment:        "test",
			LogFilePath:        filepath.Join(t.TempDir(), "app.log"),
			LogLevel:           "error",
			CorsAllowedOrigins: "*",
			IndexTopic:         "INDEX_DOCUMENT",
			MemoryStore:        true,
		},
		Database: config.DatabaseConfig{MemoryStore: true},
		Ai: config.AIConfig{
			EmbeddingProvider:  "ollama",
			OllamaBaseURL:      "http://127.0.0.1:1",
			OllamaModel:        "nomic-embed-text",
			EmbeddingDimension: 768,
			LLMProvider:        "none",
		},
		Chunking: config.ChunkingConfig{
			MaxTokens:           1500,
			OverlapTokens:       100,
			ContextWindowTokens: 200,
			PreserveBoundaries:  true,
			AdaptiveSizing:      true,
		},
		Retrieval: config.RetrievalConfig{TopK: 8, ExpansionDepth: 1, ContextExpansion: true},
	}
}

func TestServer_Routes(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, cfg.Validate())

	container := bootstrap.NewContainer(nil, cfg)
	t.Cleanup(container.Close)
	require.NoError(t, container.StartBackground(context.Background()))

	app := New(cfg, container).GetApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/api/cache/v1/stats", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	req := httptest.NewRequest("POST", "/api/document/v1/not-a-uuid/chunks/preview", strings.NewReader(`{"content":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "go_goroutines")
}
