// FILE: pkg/retrieval/engine.go
// PURPOSE: Query -> ranked, context-expanded, concept-annotated chunks

package retrieval

import (
	"context"
	"errors"
	"strings"

	"github.com/iamfranciscoalmeida/flashly-ai-sub001/internal/pkg/logger"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/embedding"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/llm"
)

type Engine struct {
	cfg        Config
	embedder   embedding.EmbeddingProvider
	llm        llm.LLMProvider
	store      VectorStore
	structures StructureSource
	chunks     ChunkSource
	log        logger.ILogger
}

// NewEngine wires the retrieval pipeline. llm, structures and chunks are
// optional; without them the engine uses local fallbacks, finds no target
// sections and skips context expansion respectively.
func NewEngine(
	cfg Config,
	embedder embedding.EmbeddingProvider,
	llmProvider llm.LLMProvider,
	store VectorStore,
	structures StructureSource,
	chunks ChunkSource,
	log logger.ILogger,
) *Engine {
	def := DefaultConfig()
	if cfg.TopK <= 0 {
		cfg.TopK = def.TopK
	}
	if cfg.ExpansionDepth < 0 {
		cfg.ExpansionDepth = 0
	}
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Engine{
		cfg:        cfg,
		embedder:   embedder,
		llm:        llmProvider,
		store:      store,
		structures: structures,
		chunks:     chunks,
		log:        log,
	}
}

func (e *Engine) Config() Config {
	return e.cfg
}

// Retrieve runs the full pipeline. Errors are limited to an empty query,
// the query embedding and the primary vector search; every LLM stage
// degrades to a local fallback instead.
func (e *Engine) Retrieve(ctx context.Context, query, documentID string) (*RelevantContent, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if e.embedder == nil || e.store == nil {
		return nil, errors.New("retrieval: engine has no embedder or vector store")
	}

	eq, err := e.UnderstandAndExpandQuery(ctx, query, documentID)
	if err != nil {
		return nil, err
	}

	chunks, err := e.MultiLevelRetrieval(ctx, eq)
	if err != nil {
		return nil, err
	}

	if e.cfg.ContextExpansion {
		chunks = e.ExpandWithContext(ctx, documentID, chunks)
	}

	// relevance is scored on the retrieval scores; rerank only reorders after
	content := e.EnrichWithConcepts(eq, chunks)

	reranked := false
	if e.cfg.Rerank {
		content.Chunks, reranked = e.RerankResults(ctx, query, content.Chunks)
	}
	content.Metadata = Metadata{
		Intent:        eq.Intent.Type,
		Strategy:      e.strategy(eq, reranked),
		ExpansionUsed: len(eq.ExpandedTerms) > 0,
	}

	e.log.Info("retrieval", "Retrieval completed", map[string]interface{}{
		"document_id":     documentID,
		"chunks":          len(content.Chunks),
		"concepts":        len(content.Concepts),
		"relevance_score": content.RelevanceScore,
		"strategy":        content.Metadata.Strategy,
	})
	return content, nil
}

func (e *Engine) strategy(eq *ExpandedQuery, reranked bool) string {
	label := "semantic"
	if e.hybrid(eq) {
		label = "hybrid"
	}
	if e.cfg.ContextExpansion && e.cfg.ExpansionDepth > 0 && e.chunks != nil {
		label += "+context"
	}
	if reranked {
		label += "+rerank"
	}
	return label
}
