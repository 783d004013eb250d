package bootstrap

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"

	"github.com/iamfranciscoalmeida/flashly-ai-sub001/internal/config"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/internal/controller"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/internal/pkg/logger"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/internal/repository/contract"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/internal/repository/implementation"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/internal/repository/memory"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/internal/service"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/cache"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/chunking"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/embedding"
	embeddingFactory "github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/embedding/factory"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/events"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/llm"
	llmFactory "github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/llm/factory"
	pktNats "github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/nats"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/retrieval"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/tokenizer"
)

type Container struct {
	// Controllers
	DocumentController controller.IDocumentController
	CacheController    controller.ICacheController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	CacheService    service.ICacheService
	NatsSubscriber  *pktNats.Subscriber

	Registry *prometheus.Registry
	Logger   logger.ILogger

	closers []func()
}

// NewContainer wires the service. db may be nil when cfg.App.MemoryStore
// is set.
func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	c := &Container{}

	// 1. Core Facades
	sysLogger := logger.NewZapLogger(logger.Options{
		FilePath:   cfg.App.LogFilePath,
		Production: cfg.IsProduction(),
		Level:      cfg.App.LogLevel,
	})
	c.Logger = sysLogger
	origin := instanceOrigin()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	c.Registry = registry

	// 2. Cache (Redis remote layer is optional)
	var remote cache.RemoteStore
	if cfg.App.RedisURL != "" {
		store, rdb, err := cache.NewRedisStoreFromURL(context.Background(), cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v. Cache is local only", err)
		} else {
			remote = store
			c.closers = append(c.closers, func() { _ = rdb.Close() })
		}
	}
	tieredCache := cache.NewTiered(remote, cache.DefaultLayers(), sysLogger, cache.NewMetrics(registry))

	// 3. AI Providers
	embeddingModel := cfg.Ai.OllamaModel
	embeddingKey := ""
	embeddingBaseURL := cfg.Ai.OllamaBaseURL
	switch cfg.Ai.EmbeddingProvider {
	case "jina":
		embeddingModel, embeddingKey, embeddingBaseURL = "", cfg.Keys.Jina, ""
	case "openai":
		embeddingModel, embeddingKey, embeddingBaseURL = cfg.Ai.OpenAIEmbeddingModel, cfg.Keys.OpenAI, cfg.Ai.OpenAIBaseURL
	}
	rawEmbedder, err := embeddingFactory.NewEmbeddingProvider(embeddingFactory.Options{
		Provider:   cfg.Ai.EmbeddingProvider,
		BaseURL:    embeddingBaseURL,
		Model:      embeddingModel,
		APIKey:     embeddingKey,
		Dimensions: cfg.Ai.EmbeddingDimension,
	})
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize Embedding Provider: %v", err)
	}
	embeddingProvider := embedding.NewCachedProvider(
		rawEmbedder, tieredCache, cfg.Ai.EmbeddingProvider+"/"+embeddingModel, cfg.Cache.EmbeddingTTL)
	log.Printf("[INFO] Using Embedding Provider: %s (%s)", cfg.Ai.EmbeddingProvider, embeddingModel)

	llmBaseURL := cfg.Ai.OllamaBaseURL
	if cfg.Ai.LLMProvider == "openai" {
		llmBaseURL = cfg.Ai.OpenAIBaseURL
	}
	rawLLM, err := llmFactory.NewLLMProvider(cfg.Ai.LLMProvider, cfg.Ai.LLMModel, llmBaseURL, cfg.Keys.OpenAI)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	var llmProvider llm.LLMProvider
	if rawLLM != nil {
		llmProvider = llm.NewCachedProvider(rawLLM, tieredCache, cfg.Cache.GenerationTTL)
		log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)
	} else {
		log.Printf("[INFO] LLM disabled, retrieval runs on local fallbacks")
	}

	// 4. Storage
	var chunkRepo contract.DocumentChunkRepository
	if cfg.App.MemoryStore || db == nil {
		chunkRepo = memory.NewDocumentChunkRepository(0)
		log.Printf("[INFO] Using in-memory chunk store")
	} else {
		chunkRepo = implementation.NewDocumentChunkRepository(db)
	}

	// 5. Engines
	chunker := chunking.NewChunker(chunking.Config{
		MaxTokens:           cfg.Chunking.MaxTokens,
		OverlapTokens:       cfg.Chunking.OverlapTokens,
		ContextWindowTokens: cfg.Chunking.ContextWindowTokens,
		PreserveBoundaries:  cfg.Chunking.PreserveBoundaries,
		AdaptiveSizing:      cfg.Chunking.AdaptiveSizing,
	}, tokenizer.NewTiktoken(cfg.Chunking.TokenizerEncoding), sysLogger)

	sources := service.NewDocumentSources(chunkRepo, tieredCache, sysLogger)
	engine := retrieval.NewEngine(retrieval.Config{
		TopK:             cfg.Retrieval.TopK,
		HybridSearch:     cfg.Retrieval.HybridSearch,
		QueryExpansion:   cfg.Retrieval.QueryExpansion,
		ContextExpansion: cfg.Retrieval.ContextExpansion,
		ExpansionDepth:   cfg.Retrieval.ExpansionDepth,
		Rerank:           cfg.Retrieval.Rerank,
	}, embeddingProvider, llmProvider, sources, sources, sources, sysLogger)

	// 6. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	var eventPublisher events.Publisher
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL, sysLogger)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			eventPublisher = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}

		natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL, sysLogger)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
		} else {
			c.NatsSubscriber = natsSub
			c.closers = append(c.closers, natsSub.Close)
		}
	}

	// 7. Services
	publisherService := service.NewPublisherService(cfg.App.IndexTopic, pubSub)
	cacheService := service.NewCacheService(tieredCache, sources, origin, sysLogger)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.App.IndexTopic,
		chunkRepo,
		chunker,
		embeddingProvider,
		cacheService,
		eventPublisher,
		origin,
		sysLogger,
	)
	indexingService := service.NewIndexingService(publisherService, chunker, chunkRepo, sysLogger)
	retrievalService := service.NewRetrievalService(engine, tieredCache, sysLogger)

	// 8. Controllers
	c.DocumentController = controller.NewDocumentController(indexingService, retrievalService)
	c.CacheController = controller.NewCacheController(cacheService)
	c.ConsumerService = consumerService
	c.CacheService = cacheService
	return c
}

// StartBackground starts the indexing consumer and, when NATS is up, the
// DOCUMENT_INDEXED listener that keeps local caches of other instances in
// step.
func (c *Container) StartBackground(ctx context.Context) error {
	if err := c.ConsumerService.Consume(ctx); err != nil {
		return fmt.Errorf("start indexing consumer: %w", err)
	}
	if c.NatsSubscriber == nil {
		return nil
	}
	if err := c.NatsSubscriber.Subscribe(ctx, events.DocumentIndexed, "", c.CacheService.HandleDocumentIndexed); err != nil {
		c.Logger.Warn("bootstrap", "Failed to subscribe to DOCUMENT_INDEXED", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return nil
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}

func instanceOrigin() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "instance"
	}
	return host + "-" + uuid.NewString()[:8]
}
