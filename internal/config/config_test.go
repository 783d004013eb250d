package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_CONNECTION_STRING", "postgres://localhost/flashly")

	cfg := Load()

	assert.Equal(t, "3000", cfg.App.Port)
	assert.Equal(t, 1500, cfg.Chunking.MaxTokens)
	assert.Equal(t, 100, cfg.Chunking.OverlapTokens)
	assert.Equal(t, 200, cfg.Chunking.ContextWindowTokens)
	assert.True(t, cfg.Chunking.PreserveBoundaries)
	assert.Equal(t, 8, cfg.Retrieval.TopK)
	assert.Equal(t, 1, cfg.Retrieval.ExpansionDepth)
	require.NoError(t, cfg.Validate())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("MEMORY_STORE", "true")
	t.Setenv("CHUNK_MAX_TOKENS", "800")
	t.Setenv("RETRIEVAL_RERANK", "false")
	t.Setenv("CACHE_EMBEDDING_TTL", "90m")
	t.Setenv("RETRIEVAL_TOP_K", "not-a-number")

	cfg := Load()

	assert.True(t, cfg.App.MemoryStore)
	assert.Equal(t, 800, cfg.Chunking.MaxTokens)
	assert.False(t, cfg.Retrieval.Rerank)
	assert.Equal(t, 90*time.Minute, cfg.Cache.EmbeddingTTL)
	assert.Equal(t, 8, cfg.Retrieval.TopK)
	require.NoError(t, cfg.Validate(), "memory store does not need a database")
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing database", func(c *Config) { c.Database.Connection = "" }},
		{"overlap not below max", func(c *Config) { c.Chunking.OverlapTokens = c.Chunking.MaxTokens }},
		{"zero top k", func(c *Config) { c.Retrieval.TopK = 0 }},
		{"unknown llm", func(c *Config) { c.Ai.LLMProvider = "gemini" }},
		{"bad environment", func(c *Config) { c.App.Environment = "staging" }},
		{"bad log level", func(c *Config) { c.App.LogLevel = "trace" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DB_CONNECTION_STRING", "postgres://localhost/flashly")
			cfg := Load()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
