// FILE: pkg/chunking/assemble.go
// PURPOSE: Group segments into token-budgeted chunks with an overlap window

package chunking

// CreateSemanticChunks walks segments in order and starts a new chunk
// whenever shouldBreakChunk says so. Each new chunk is seeded with the
// trailing segments of the previous one, up to the overlap budget.
func (c *Chunker) CreateSemanticChunks(segments []TextSegment, analysis ContentAnalysis) []Chunk {
	if len(segments) == 0 {
		return []Chunk{}
	}

	chunks := make([]Chunk, 0)
	start, tokens, overlap := 0, 0, 0

	for i, seg := range segments {
		if i > start && c.shouldBreakChunk(tokens, seg, analysis) {
			chunks = append(chunks, newChunk(segments, start, i-1, tokens, overlap))

			start, overlap = c.overlapWindow(segments, start, i-1)
			tokens = sumTokens(segments[start:i])

			threshold := c.breakThreshold(seg, analysis)
			for overlap > 0 && tokens+seg.Tokens > threshold {
				tokens -= segments[start].Tokens
				start++
				overlap--
			}
		}
		tokens += seg.Tokens
	}

	chunks = append(chunks, newChunk(segments, start, len(segments)-1, tokens, overlap))

	c.log.Debug("chunking", "Assembled chunks", map[string]interface{}{
		"segments": len(segments),
		"chunks":   len(chunks),
	})
	return chunks
}

// shouldBreakChunk decides whether next must open a new chunk.
func (c *Chunker) shouldBreakChunk(currentTokens int, next TextSegment, analysis ContentAnalysis) bool {
	if currentTokens < 2*c.cfg.OverlapTokens {
		return false
	}

	threshold := c.breakThreshold(next, analysis)
	if currentTokens+next.Tokens > threshold {
		return true
	}

	if c.cfg.PreserveBoundaries && next.Type == SegmentHeading {
		switch {
		case next.Level == 1:
			return true
		case next.Level == 2 && float64(currentTokens) > 0.5*float64(threshold):
			return true
		}
	}
	return false
}

func (c *Chunker) breakThreshold(next TextSegment, analysis ContentAnalysis) int {
	base := float64(c.cfg.MaxTokens)
	if !c.cfg.AdaptiveSizing {
		return c.cfg.MaxTokens
	}

	switch {
	case next.Type == SegmentCode || next.Type == SegmentEquation:
		return int(base * 0.7)
	case analysis.SemanticDensity > 0.6:
		return int(base * 0.8)
	case next.Type == SegmentParagraph && !isTechnical(next):
		return int(base * 1.2)
	default:
		return c.cfg.MaxTokens
	}
}

// overlapWindow walks backward from last collecting segments until the
// overlap budget is met, so the window may overshoot by its oldest segment.
// The first segment of the closed chunk is never taken. It returns the
// window's first index and size.
func (c *Chunker) overlapWindow(segments []TextSegment, first, last int) (int, int) {
	budget := c.cfg.OverlapTokens
	used, start := 0, last+1

	for i := last; i > first && used < budget; i-- {
		used += segments[i].Tokens
		start = i
	}
	return start, last + 1 - start
}

func newChunk(segments []TextSegment, start, end, tokens, overlap int) Chunk {
	segs := make([]TextSegment, end-start+1)
	copy(segs, segments[start:end+1])
	return Chunk{
		Segments:        segs,
		Tokens:          tokens,
		StartIndex:      start,
		EndIndex:        end,
		OverlapSegments: overlap,
	}
}

func sumTokens(segments []TextSegment) int {
	total := 0
	for _, seg := range segments {
		total += seg.Tokens
	}
	return total
}
