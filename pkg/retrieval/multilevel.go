package retrieval

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"
)

const (
	indirectMatchDiscount = 0.8
	targetSectionBoost    = 1.2
)

// MultiLevelRetrieval searches with the original query embedding at TopK
// and, for hybrid search, with the expanded embedding at TopK/2. Only the
// first search may fail the call.
func (e *Engine) MultiLevelRetrieval(ctx context.Context, eq *ExpandedQuery) ([]EnhancedChunk, error) {
	topK := e.cfg.TopK
	filter := SearchFilter{DocumentID: eq.DocumentID}

	var primary, secondary []SearchMatch
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		matches, err := e.store.Search(gctx, SearchRequest{
			Vector:          eq.Embeddings.Original,
			TopK:            topK,
			Filter:          filter,
			IncludeMetadata: true,
		})
		if err != nil {
			return fmt.Errorf("vector search: %w", err)
		}
		primary = matches
		return nil
	})

	if e.hybrid(eq) {
		g.Go(func() error {
			matches, err := e.store.Search(gctx, SearchRequest{
				Vector:          eq.Embeddings.Expanded,
				TopK:            max(1, topK/2),
				Filter:          filter,
				IncludeMetadata: true,
			})
			if err != nil {
				e.log.Warn("retrieval", "Expanded query search failed, continuing with primary results", map[string]interface{}{
					"document_id": eq.DocumentID,
					"error":       err.Error(),
				})
				return nil
			}
			secondary = matches
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := make([]EnhancedChunk, 0, len(primary)+len(secondary))
	index := make(map[string]int, len(primary)+len(secondary))
	for _, m := range primary {
		if i, ok := index[m.Chunk.ID]; ok {
			if m.Score > results[i].Score {
				results[i].Score = m.Score
			}
			continue
		}
		index[m.Chunk.ID] = len(results)
		results = append(results, EnhancedChunk{SmartChunk: m.Chunk, Score: m.Score})
	}
	for _, m := range secondary {
		if _, ok := index[m.Chunk.ID]; ok {
			continue
		}
		index[m.Chunk.ID] = len(results)
		results = append(results, EnhancedChunk{SmartChunk: m.Chunk, Score: m.Score * indirectMatchDiscount})
	}

	if len(eq.TargetSections) > 0 {
		targets := make(map[string]bool, len(eq.TargetSections))
		for _, id := range eq.TargetSections {
			targets[id] = true
		}
		for i := range results {
			md := results[i].Metadata
			if targets[md.Section] || targets[md.Chapter] {
				results[i].Score *= targetSectionBoost
			}
		}
	}

	sortByScore(results)
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func (e *Engine) hybrid(eq *ExpandedQuery) bool {
	return e.cfg.HybridSearch && len(eq.ExpandedTerms) > 0
}

func sortByScore(chunks []EnhancedChunk) {
	sort.SliceStable(chunks, func(i, j int) bool { return chunks[i].Score > chunks[j].Score })
}
