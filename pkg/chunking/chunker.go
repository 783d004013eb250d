package chunking

import (
	"time"

	"github.com/iamfranciscoalmeida/flashly-ai-sub001/internal/pkg/logger"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/tokenizer"
)

type Chunker struct {
	cfg Config
	tok tokenizer.Tokenizer
	log logger.ILogger
}

// NewChunker fills zero config values from DefaultConfig. A nil tokenizer
// falls back to the character approximation.
func NewChunker(cfg Config, tok tokenizer.Tokenizer, log logger.ILogger) *Chunker {
	def := DefaultConfig()
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = def.MaxTokens
	}
	if cfg.OverlapTokens < 0 {
		cfg.OverlapTokens = 0
	}
	if cfg.ContextWindowTokens <= 0 {
		cfg.ContextWindowTokens = def.ContextWindowTokens
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Chunker{cfg: cfg, tok: tok, log: log}
}

func (c *Chunker) Config() Config {
	return c.cfg
}

// ChunkDocument runs the whole pipeline: segmentation, analysis, assembly,
// enrichment and relationship linking. It never fails.
func (c *Chunker) ChunkDocument(text string) []SmartChunk {
	started := time.Now()

	segments := c.Segment(text)
	if len(segments) == 0 {
		return []SmartChunk{}
	}

	analysis := c.AnalyzeContent(segments)
	raw := c.CreateSemanticChunks(segments, analysis)
	chunks := c.EnhanceChunks(raw)
	AddChunkRelationships(chunks)

	c.log.Info("chunking", "Document chunked", map[string]interface{}{
		"segments":         len(segments),
		"chunks":           len(chunks),
		"total_tokens":     analysis.TotalTokens,
		"semantic_density": analysis.SemanticDensity,
		"duration_ms":      time.Since(started).Milliseconds(),
	})
	return chunks
}

// Segment parses text and counts tokens for every segment.
func (c *Chunker) Segment(text string) []TextSegment {
	segments := ParseTextSegments(text)
	for i := range segments {
		segments[i].Tokens = c.CountTokens(segments[i].Content)
	}
	return segments
}

func (c *Chunker) CountTokens(text string) int {
	return tokenizer.Count(c.tok, text)
}
