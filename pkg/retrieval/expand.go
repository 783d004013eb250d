package retrieval

import (
	"context"

	"github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/chunking"
)

const neighborScoreFactor = 0.5

// ExpandWithContext pulls in up to ExpansionDepth neighbors on each side of
// every retrieved chunk. Neighbors are found by id arithmetic
// (chunk-<n±d>); lookups that fail or find nothing are skipped.
func (e *Engine) ExpandWithContext(ctx context.Context, documentID string, chunks []EnhancedChunk) []EnhancedChunk {
	if e.chunks == nil || e.cfg.ExpansionDepth <= 0 || len(chunks) == 0 {
		return chunks
	}

	present := make(map[string]bool, len(chunks))
	for _, ch := range chunks {
		present[ch.ID] = true
	}

	out := make([]EnhancedChunk, len(chunks), len(chunks)*(1+2*e.cfg.ExpansionDepth))
	copy(out, chunks)

	for _, ch := range chunks {
		n, ok := chunking.ParseChunkIndex(ch.ID)
		if !ok {
			continue
		}
		for d := 1; d <= e.cfg.ExpansionDepth; d++ {
			for _, idx := range []int{n - d, n + d} {
				if idx < 0 {
					continue
				}
				id := chunking.ChunkID(idx)
				if present[id] {
					continue
				}

				neighbor, err := e.chunks.FindChunk(ctx, documentID, id)
				if err != nil || neighbor == nil {
					e.log.Debug("retrieval", "Context chunk unavailable", map[string]interface{}{
						"document_id": documentID,
						"chunk_id":    id,
					})
					continue
				}
				present[id] = true
				out = append(out, EnhancedChunk{SmartChunk: *neighbor, Score: ch.Score * neighborScoreFactor})
			}
		}
	}

	sortByScore(out)
	return out
}
