package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/llm"
)

const (
	maxRerankChunks     = 10
	maxRerankPassageLen = 500
	rerankOldWeight     = 0.4
	rerankNewWeight     = 0.6
)

type rerankScore struct {
	Chunk json.RawMessage `json:"chunk"`
	Score float64         `json:"score"`
}

// RerankResults asks the LLM to score the top chunks from 1 to 10 and
// blends the normalized answer into the existing score. The second return
// value reports whether the ranking changed; any failure keeps the input
// order.
func (e *Engine) RerankResults(ctx context.Context, query string, chunks []EnhancedChunk) ([]EnhancedChunk, bool) {
	if e.llm == nil || len(chunks) == 0 {
		return chunks, false
	}

	n := min(maxRerankChunks, len(chunks))
	var passages strings.Builder
	for i, ch := range chunks[:n] {
		fmt.Fprintf(&passages, "[%d] %s\n\n", i+1, truncateRunes(ch.Content, maxRerankPassageLen))
	}

	resp, err := e.llm.Generate(ctx, fmt.Sprintf(rerankPrompt, query, passages.String()),
		llm.WithTemperature(0), llm.WithMaxTokens(400))
	if err != nil {
		e.log.Warn("retrieval", "Rerank call failed, keeping vector ranking", map[string]interface{}{
			"error": err.Error(),
		})
		return chunks, false
	}

	var scores []rerankScore
	if err := decodeLLMJSON(resp, '[', ']', &scores); err != nil {
		e.log.Warn("retrieval", "Rerank response unreadable, keeping vector ranking", map[string]interface{}{
			"error": err.Error(),
		})
		return chunks, false
	}

	out := make([]EnhancedChunk, len(chunks))
	copy(out, chunks)

	applied := 0
	for _, s := range scores {
		i, ok := rerankTarget(s.Chunk, out[:n])
		if !ok {
			continue
		}
		normalized := math.Max(0, math.Min(1, s.Score/10))
		out[i].Score = rerankOldWeight*chunks[i].Score + rerankNewWeight*normalized
		applied++
	}
	if applied == 0 {
		e.log.Warn("retrieval", "Rerank response matched no passages, keeping vector ranking", nil)
		return chunks, false
	}

	sortByScore(out)
	return out, true
}

// rerankTarget resolves a reply's chunk reference, either the 1-based
// passage number or the chunk id, to an index into chunks.
func rerankTarget(raw json.RawMessage, chunks []EnhancedChunk) (int, bool) {
	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		i := int(num) - 1
		if float64(int(num)) != num || i < 0 || i >= len(chunks) {
			return 0, false
		}
		return i, true
	}

	var ref string
	if err := json.Unmarshal(raw, &ref); err != nil {
		return 0, false
	}
	ref = strings.TrimSpace(ref)
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(chunks) {
		return n - 1, true
	}
	for i, ch := range chunks {
		if ch.ID == ref {
			return i, true
		}
	}
	return 0, false
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
