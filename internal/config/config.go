package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Keys      APIKeys
	Ai        AIConfig
	Cache     CacheConfig
	Chunking  ChunkingConfig
	Retrieval RetrievalConfig
}

type AppConfig struct {
	Port               string `validate:"required"`
	Environment        string `validate:"oneof=development production test"`
	LogFilePath        string `validate:"required"`
	LogLevel           string `validate:"oneof=debug info warn error"`
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	IndexTopic         string `validate:"required"`
	// MemoryStore keeps chunks in process instead of Postgres (dev/test only)
	MemoryStore bool
}

type DatabaseConfig struct {
	Connection string `validate:"required_if=MemoryStore false"`
	// mirrored from App so the validator can see it
	MemoryStore bool
}

type APIKeys struct {
	OpenAI string
	Jina   string
}

type AIConfig struct {
	EmbeddingProvider    string `validate:"oneof=ollama jina openai"`
	OllamaBaseURL        string
	OllamaModel          string // embedding model
	OpenAIBaseURL        string
	OpenAIEmbeddingModel string
	EmbeddingDimension   int    `validate:"gte=1"`
	LLMProvider          string `validate:"oneof=ollama openai none"`
	LLMModel             string // e.g. "llama3", "gpt-4o-mini"
}

type CacheConfig struct {
	EmbeddingTTL  time.Duration
	GenerationTTL time.Duration
}

type ChunkingConfig struct {
	MaxTokens           int `validate:"gte=1"`
	OverlapTokens       int `validate:"gte=0,ltfield=MaxTokens"`
	ContextWindowTokens int `validate:"gte=0"`
	PreserveBoundaries  bool
	AdaptiveSizing      bool
	TokenizerEncoding   string
}

type RetrievalConfig struct {
	TopK             int `validate:"gte=1,lte=100"`
	HybridSearch     bool
	QueryExpansion   bool
	ContextExpansion bool
	ExpansionDepth   int `validate:"gte=0,lte=5"`
	Rerank           bool
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	memoryStore := getEnvAsBool("MEMORY_STORE", false)

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			LogLevel:           getEnv("LOG_LEVEL", "info"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			IndexTopic:         getEnv("INDEX_DOCUMENT_TOPIC", "INDEX_DOCUMENT"),
			MemoryStore:        memoryStore,
		},
		Database: DatabaseConfig{
			Connection:  getEnv("DB_CONNECTION_STRING", ""),
			MemoryStore: memoryStore,
		},
		Keys: APIKeys{
			OpenAI: getEnv("OPENAI_API_KEY", ""),
			Jina:   getEnv("JINA_API_KEY", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider:    getEnv("EMBEDDING_PROVIDER", "ollama"),
			OllamaBaseURL:        getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:          getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			OpenAIBaseURL:        getEnv("OPENAI_BASE_URL", ""),
			OpenAIEmbeddingModel: getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
			EmbeddingDimension:   getEnvAsInt("EMBEDDING_DIMENSION", 768),
			LLMProvider:          getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:             getEnv("LLM_MODEL", "llama3"),
		},
		Cache: CacheConfig{
			EmbeddingTTL:  getEnvAsDuration("CACHE_EMBEDDING_TTL", 0),
			GenerationTTL: getEnvAsDuration("CACHE_GENERATION_TTL", 0),
		},
		Chunking: ChunkingConfig{
			MaxTokens:           getEnvAsInt("CHUNK_MAX_TOKENS", 1500),
			OverlapTokens:       getEnvAsInt("CHUNK_OVERLAP_TOKENS", 100),
			ContextWindowTokens: getEnvAsInt("CHUNK_CONTEXT_WINDOW_TOKENS", 200),
			PreserveBoundaries:  getEnvAsBool("CHUNK_PRESERVE_BOUNDARIES", true),
			AdaptiveSizing:      getEnvAsBool("CHUNK_ADAPTIVE_SIZING", true),
			TokenizerEncoding:   getEnv("TOKENIZER_ENCODING", "cl100k_base"),
		},
		Retrieval: RetrievalConfig{
			TopK:             getEnvAsInt("RETRIEVAL_TOP_K", 8),
			HybridSearch:     getEnvAsBool("RETRIEVAL_HYBRID_SEARCH", true),
			QueryExpansion:   getEnvAsBool("RETRIEVAL_QUERY_EXPANSION", true),
			ContextExpansion: getEnvAsBool("RETRIEVAL_CONTEXT_EXPANSION", true),
			ExpansionDepth:   getEnvAsInt("RETRIEVAL_EXPANSION_DEPTH", 1),
			Rerank:           getEnvAsBool("RETRIEVAL_RERANK", true),
		},
	}
}

// Validate checks the loaded values against the struct tags.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
