// FILE: internal/service/document_sources.go
// PURPOSE: Chunk repository seen through the retrieval engine's VectorStore, StructureSource and ChunkSource

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/iamfranciscoalmeida/flashly-ai-sub001/internal/entity"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/internal/pkg/logger"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/internal/repository/contract"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/cache"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/chunking"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/retrieval"
)

func retrievalCacheKey(documentID, query string) string {
	return cache.BuildKey(documentID, cache.HashKey(query))
}

func retrievalCachePattern(documentID string) string {
	return cache.BuildKey(documentID, "*")
}

func structureCacheKey(documentID string) string {
	return cache.BuildKey("structure", documentID)
}

type DocumentSources struct {
	repo      contract.DocumentChunkRepository
	cache     *cache.Tiered
	structure func(context.Context, string) (*retrieval.DocumentStructure, error)
	log       logger.ILogger
}

var (
	_ retrieval.VectorStore     = &DocumentSources{}
	_ retrieval.StructureSource = &DocumentSources{}
	_ retrieval.ChunkSource     = &DocumentSources{}
)

// NewDocumentSources adapts repo for the retrieval engine. Structures are
// read through the summaries layer of c when c is not nil.
func NewDocumentSources(repo contract.DocumentChunkRepository, c *cache.Tiered, log logger.ILogger) *DocumentSources {
	s := &DocumentSources{repo: repo, cache: c, log: log}
	s.structure = s.loadStructure
	if c != nil {
		s.structure = cache.Cached(c, cache.LayerSummaries, structureCacheKey, 0, s.loadStructure)
	}
	return s
}

func parseDocumentID(documentID string) (uuid.UUID, error) {
	id, err := uuid.Parse(documentID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid document id %q: %w", documentID, err)
	}
	return id, nil
}

func (s *DocumentSources) Search(ctx context.Context, req retrieval.SearchRequest) ([]retrieval.SearchMatch, error) {
	documentId, err := parseDocumentID(req.Filter.DocumentID)
	if err != nil {
		return nil, err
	}

	scored, err := s.repo.SearchSimilarWithScore(ctx, req.Vector, req.TopK, documentId)
	if err != nil {
		return nil, err
	}

	matches := make([]retrieval.SearchMatch, 0, len(scored))
	for _, sc := range scored {
		match := retrieval.SearchMatch{Chunk: sc.Chunk.SmartChunk(), Score: sc.Similarity}
		if !req.IncludeMetadata {
			match.Chunk.Metadata = chunking.ChunkMetadata{}
		}
		matches = append(matches, match)
	}
	return matches, nil
}

// FindChunk reports a missing chunk as (nil, nil).
func (s *DocumentSources) FindChunk(ctx context.Context, documentID, chunkID string) (*chunking.SmartChunk, error) {
	documentId, err := parseDocumentID(documentID)
	if err != nil {
		return nil, err
	}

	chunk, err := s.repo.FindChunk(ctx, documentId, chunkID)
	if errors.Is(err, contract.ErrChunkNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	smart := chunk.SmartChunk()
	return &smart, nil
}

func (s *DocumentSources) DocumentStructure(ctx context.Context, documentID string) (*retrieval.DocumentStructure, error) {
	return s.structure(ctx, documentID)
}

// WarmStructure loads the structure of a freshly indexed document into the
// summaries layer unless it is already there.
func (s *DocumentSources) WarmStructure(ctx context.Context, documentID string) error {
	if s.cache == nil {
		return nil
	}
	key := structureCacheKey(documentID)
	return s.cache.Preload(ctx, []string{key}, cache.LayerSummaries, func(ctx context.Context, _ []string) (map[string]any, error) {
		structure, err := s.loadStructure(ctx, documentID)
		if err != nil {
			return nil, err
		}
		return map[string]any{key: structure}, nil
	})
}

func (s *DocumentSources) loadStructure(ctx context.Context, documentID string) (*retrieval.DocumentStructure, error) {
	documentId, err := parseDocumentID(documentID)
	if err != nil {
		return nil, err
	}

	headings, err := s.repo.FindHeadings(ctx, documentId)
	if err != nil {
		return nil, err
	}
	return BuildDocumentStructure(headings), nil
}

// BuildDocumentStructure groups chunk headings, in chunk order, into
// chapters and their distinct sections. Ids are the heading titles.
func BuildDocumentStructure(headings []entity.ChunkHeading) *retrieval.DocumentStructure {
	structure := &retrieval.DocumentStructure{Chapters: []retrieval.Chapter{}}
	chapterIdx := make(map[string]int)
	sectionSeen := make(map[string]map[string]bool)

	for _, h := range headings {
		if h.Chapter == "" {
			continue
		}
		idx, ok := chapterIdx[h.Chapter]
		if !ok {
			idx = len(structure.Chapters)
			chapterIdx[h.Chapter] = idx
			sectionSeen[h.Chapter] = make(map[string]bool)
			structure.Chapters = append(structure.Chapters, retrieval.Chapter{
				ID:       h.Chapter,
				Title:    h.Chapter,
				Sections: []retrieval.Section{},
			})
		}
		if h.Section == "" || sectionSeen[h.Chapter][h.Section] {
			continue
		}
		sectionSeen[h.Chapter][h.Section] = true
		structure.Chapters[idx].Sections = append(structure.Chapters[idx].Sections, retrieval.Section{
			ID:    h.Section,
			Title: h.Section,
		})
	}
	return structure
}
