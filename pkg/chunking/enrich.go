// FILE: pkg/chunking/enrich.go
// PURPOSE: Turn raw chunks into SmartChunks with structural and semantic metadata

package chunking

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	figurePattern         = regexp.MustCompile(`\b(?:Fig\.|Figure)\s*(\d+(?:\.\d+)*)`)
	equationRefPattern    = regexp.MustCompile(`\b(?:Eq\.|Equation)\s*\(?(\d+(?:\.\d+)*)\)?`)
	equationNumberPattern = regexp.MustCompile(`\((\d+(?:\.\d+)*)\)\s+(?:shows|gives|yields|implies|becomes|states|defines|holds)\b`)
	pageNumberPattern     = regexp.MustCompile(`(?i)\bpage\s+(\d+)\b`)
	sentencePattern       = regexp.MustCompile(`[^.!?]+(?:[.!?]+|$)`)
)

type segmentDensity struct {
	density float64
	weight  float64
}

var densityByType = map[SegmentType]segmentDensity{
	SegmentCode:     {0.9, 1.5},
	SegmentEquation: {0.85, 1.3},
	SegmentHeading:  {0.3, 0.5},
}

// ChunkID is the stable identifier of the n-th chunk of a document.
func ChunkID(n int) string {
	return fmt.Sprintf("chunk-%d", n)
}

// ParseChunkIndex extracts n from an id produced by ChunkID.
func ParseChunkIndex(id string) (int, bool) {
	if !strings.HasPrefix(id, "chunk-") {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(id, "chunk-"))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// headingState tracks the chapter/section/subsection titles in effect.
type headingState struct {
	chapter    string
	section    string
	subsection string
}

func (h *headingState) apply(seg TextSegment) {
	switch {
	case seg.Level <= 1:
		h.chapter, h.section, h.subsection = seg.Content, "", ""
	case seg.Level == 2:
		h.section, h.subsection = seg.Content, ""
	default:
		h.subsection = seg.Content
	}
}

// EnhanceChunks enriches every raw chunk. Relationships are left empty; see
// AddChunkRelationships.
func (c *Chunker) EnhanceChunks(chunks []Chunk) []SmartChunk {
	contents := make([]string, len(chunks))
	for i, ch := range chunks {
		contents[i] = joinSegments(ch.Segments)
	}

	var running headingState
	smart := make([]SmartChunk, len(chunks))

	for i, ch := range chunks {
		effective := c.headingsInEffect(&running, ch)

		preceding := DocumentStartMarker
		if i > 0 {
			preceding = c.summarizeContext(contents[i-1])
		}
		following := DocumentEndMarker
		if i < len(chunks)-1 {
			following = c.summarizeContext(contents[i+1])
		}

		smart[i] = SmartChunk{
			ID:      ChunkID(i),
			Content: contents[i],
			Tokens:  ch.Tokens,
			Metadata: ChunkMetadata{
				Chapter:          orUntitled(effective.chapter),
				Section:          orUntitled(effective.section),
				Subsection:       effective.subsection,
				Concepts:         extractConcepts(contents[i]),
				PrecedingContext: preceding,
				FollowingContext: following,
				StructuralLevel:  structuralLevel(ch.Segments),
				PageNumbers:      extractPageNumbers(contents[i]),
				Figures:          extractFigures(contents[i]),
				Equations:        extractEquations(contents[i]),
				SemanticDensity:  chunkDensity(ch.Segments),
				ContentType:      classifyContent(ch.Segments),
				RelatedChunks:    []string{},
			},
		}
	}
	return smart
}

// headingsInEffect advances running over the chunk's own segments and returns
// the titles in effect at its first non-heading segment.
func (c *Chunker) headingsInEffect(running *headingState, ch Chunk) headingState {
	own := ch.Segments
	if ch.OverlapSegments < len(own) {
		own = own[ch.OverlapSegments:]
	}

	var effective *headingState
	for _, seg := range own {
		if seg.Type == SegmentHeading {
			running.apply(seg)
			continue
		}
		if effective == nil {
			snapshot := *running
			effective = &snapshot
		}
	}
	if effective == nil {
		return *running
	}
	return *effective
}

func joinSegments(segments []TextSegment) string {
	parts := make([]string, len(segments))
	for i, seg := range segments {
		parts[i] = seg.Content
	}
	return strings.Join(parts, "\n\n")
}

func orUntitled(title string) string {
	if title == "" {
		return UntitledHeading
	}
	return title
}

// summarizeContext returns text unchanged when it fits 75% of the context
// window (in words), otherwise the longest run of whole leading sentences
// that fits, otherwise a hard character cut.
func (c *Chunker) summarizeContext(text string) string {
	budget := int(float64(c.cfg.ContextWindowTokens) * 0.75)
	if len(strings.Fields(text)) <= budget {
		return text
	}

	var sb strings.Builder
	words := 0
	for _, sentence := range sentencePattern.FindAllString(text, -1) {
		sentence = strings.TrimSpace(sentence)
		n := len(strings.Fields(sentence))
		if n == 0 {
			continue
		}
		if words+n > budget {
			break
		}
		if sb.Len() > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(sentence)
		words += n
	}
	if sb.Len() > 0 {
		return sb.String()
	}

	runes := []rune(text)
	limit := budget * 4
	if limit > len(runes) {
		limit = len(runes)
	}
	return strings.TrimSpace(string(runes[:limit])) + "..."
}

func structuralLevel(segments []TextSegment) StructuralLevel {
	shallowest := 0
	for _, seg := range segments {
		if seg.Type == SegmentHeading && (shallowest == 0 || seg.Level < shallowest) {
			shallowest = seg.Level
		}
	}
	switch {
	case shallowest == 0:
		return LevelParagraph
	case shallowest == 1:
		return LevelChapter
	case shallowest == 2:
		return LevelSection
	default:
		return LevelSubsection
	}
}

func classifyContent(segments []TextSegment) ContentType {
	if len(segments) == 0 {
		return ContentNarrative
	}

	counts := make(map[SegmentType]int)
	paragraphs, technical := 0, 0
	for _, seg := range segments {
		counts[seg.Type]++
		if seg.Type == SegmentParagraph {
			paragraphs++
			if isTechnical(seg) {
				technical++
			}
		}
	}

	total := float64(len(segments))
	switch {
	case float64(counts[SegmentCode])/total > 0.5:
		return ContentCode
	case float64(counts[SegmentEquation])/total > 0.3:
		return ContentMathematical
	case paragraphs > 0 && float64(technical)/float64(paragraphs) > 0.6:
		return ContentTechnical
	case len(counts) > 3:
		return ContentMixed
	default:
		return ContentNarrative
	}
}

func chunkDensity(segments []TextSegment) float64 {
	var sum, weights float64
	for _, seg := range segments {
		d, ok := densityByType[seg.Type]
		switch {
		case ok:
		case seg.Type == SegmentParagraph && isTechnical(seg):
			d = segmentDensity{0.7, 1}
		case seg.Type == SegmentParagraph:
			d = segmentDensity{0.4, 1}
		default:
			d = segmentDensity{0.5, 1}
		}
		sum += d.density * d.weight
		weights += d.weight
	}
	if weights == 0 {
		return 0
	}
	return sum / weights
}

func extractFigures(text string) []string {
	refs := make([]string, 0)
	seen := make(map[string]bool)
	for _, m := range figurePattern.FindAllStringSubmatch(text, -1) {
		refs = appendUnique(refs, seen, "Figure "+m[1])
	}
	return refs
}

func extractEquations(text string) []string {
	refs := make([]string, 0)
	seen := make(map[string]bool)
	for _, p := range []*regexp.Regexp{equationRefPattern, equationNumberPattern} {
		for _, m := range p.FindAllStringSubmatch(text, -1) {
			refs = appendUnique(refs, seen, "Equation "+m[1])
		}
	}
	return refs
}

func extractPageNumbers(text string) []int {
	pages := make([]int, 0)
	seen := make(map[int]bool)
	for _, m := range pageNumberPattern.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil || seen[n] {
			continue
		}
		seen[n] = true
		pages = append(pages, n)
	}
	sort.Ints(pages)
	return pages
}

func appendUnique(list []string, seen map[string]bool, v string) []string {
	if seen[v] {
		return list
	}
	seen[v] = true
	return append(list, v)
}
