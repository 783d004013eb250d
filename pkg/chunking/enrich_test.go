package chunking

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyContent(t *testing.T) {
	code := TextSegment{Content: "```\nx := 1\n```", Type: SegmentCode}
	eq := TextSegment{Content: "$$ a = b $$", Type: SegmentEquation}
	story := TextSegment{Content: "It was a quiet evening.", Type: SegmentParagraph}
	tech := TextSegment{Content: "The algorithm runs in linear time.", Type: SegmentParagraph}

	tests := []struct {
		name     string
		segments []TextSegment
		want     ContentType
	}{
		{"three code and one paragraph", []TextSegment{code, code, code, story}, ContentCode},
		{"equation heavy", []TextSegment{eq, eq, story, story, story}, ContentMathematical},
		{"technical paragraphs", []TextSegment{tech, tech, story}, ContentTechnical},
		{
			"mixed types",
			[]TextSegment{story, story, story, code, eq, {Content: "| a |", Type: SegmentTable}, {Content: "- a", Type: SegmentList}},
			ContentMixed,
		},
		{"narrative", []TextSegment{story, story}, ContentNarrative},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyContent(tt.segments))
		})
	}
}

func TestEnhanceChunks_CodeChunk(t *testing.T) {
	c := newTestChunker(DefaultConfig())
	code := TextSegment{Content: "```go\nfmt.Println(1)\n```", Type: SegmentCode, Tokens: 3}
	chunks := []Chunk{{
		Segments: []TextSegment{code, code, code, paragraph(5)},
		Tokens:   14,
		EndIndex: 3,
	}}

	smart := c.EnhanceChunks(chunks)

	require.Len(t, smart, 1)
	assert.Equal(t, ContentCode, smart[0].Metadata.ContentType)
	assert.Equal(t, LevelParagraph, smart[0].Metadata.StructuralLevel)
	assert.Equal(t, UntitledHeading, smart[0].Metadata.Chapter)
	assert.Equal(t, 14, smart[0].Tokens)
}

func TestChunkDensity(t *testing.T) {
	code := TextSegment{Type: SegmentCode}
	head := TextSegment{Type: SegmentHeading, Level: 1}

	assert.InDelta(t, 0.9, chunkDensity([]TextSegment{code}), 1e-9)
	assert.InDelta(t, 0.75, chunkDensity([]TextSegment{code, head}), 1e-9)
	assert.InDelta(t, 0.4, chunkDensity([]TextSegment{{Type: SegmentParagraph, Content: "plain words"}}), 1e-9)
	assert.InDelta(t, 0.5, chunkDensity([]TextSegment{{Type: SegmentList, Content: "- a"}}), 1e-9)
	assert.Zero(t, chunkDensity(nil))
}

func TestExtractConcepts(t *testing.T) {
	text := "A binary tree is a hierarchical structure. Memoization refers to caching results. " +
		"Caching is defined as dynamic programming. The notion of tail recursion. " +
		"Dijkstra wrote it. Dijkstra proved it. Dijkstra shipped it."

	concepts := extractConcepts(text)

	assert.Equal(t, []string{"binary tree", "dynamic programming", "tail recursion", "memoization", "dijkstra"}, concepts)
}

func TestExtractConcepts_Cap(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 25; i++ {
		fmt.Fprintf(&sb, "Term%c%c is a placeholder.\n", 'a'+rune(i), 'a'+rune(i))
	}

	concepts := extractConcepts(sb.String())

	assert.Len(t, concepts, MaxConcepts)
	for _, c := range concepts {
		assert.Equal(t, strings.ToLower(c), c)
	}
}

func TestAddChunkRelationships(t *testing.T) {
	chunks := []SmartChunk{
		{ID: "chunk-0", Metadata: ChunkMetadata{Concepts: []string{"a", "b"}}},
		{ID: "chunk-1", Metadata: ChunkMetadata{Concepts: []string{"b"}}},
		{ID: "chunk-2", Metadata: ChunkMetadata{Concepts: []string{"c"}}},
		{ID: "chunk-3", Metadata: ChunkMetadata{Concepts: []string{"a", "b"}}},
	}

	AddChunkRelationships(chunks)

	assert.Equal(t, []string{"chunk-3", "chunk-1"}, chunks[0].Metadata.RelatedChunks)
	assert.Equal(t, []string{"chunk-0", "chunk-3"}, chunks[1].Metadata.RelatedChunks)
	assert.Equal(t, []string{}, chunks[2].Metadata.RelatedChunks)
	assert.Equal(t, []string{"chunk-0", "chunk-1"}, chunks[3].Metadata.RelatedChunks)
	for _, ch := range chunks {
		assert.NotContains(t, ch.Metadata.RelatedChunks, ch.ID)
	}
}

func TestSummarizeContext(t *testing.T) {
	c := newTestChunker(Config{MaxTokens: 100, OverlapTokens: 10, ContextWindowTokens: 8})

	tests := []struct {
		name string
		text string
		want string
	}{
		{"short text kept verbatim", "Short and sweet.", "Short and sweet."},
		{"whole sentences within budget", "One two three. Four five six. Seven eight nine.", "One two three. Four five six."},
		{"hard cut when no sentence fits", "aaaa bbbb cccc dddd eeee ffff gggg hhhh iiii jjjj", "aaaa bbbb cccc dddd eeee..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.summarizeContext(tt.text))
		})
	}
}

func TestExtractReferences(t *testing.T) {
	text := "As Fig. 3 shows and Figure 3 again, Eq. (4) and Equation 5 hold; (6) gives the bound. See page 9 and Page 2, page 9."

	assert.Equal(t, []string{"Figure 3"}, extractFigures(text))
	assert.Equal(t, []string{"Equation 4", "Equation 5", "Equation 6"}, extractEquations(text))
	assert.Equal(t, []int{2, 9}, extractPageNumbers(text))
}

func TestHeadingsInEffect(t *testing.T) {
	c := newTestChunker(DefaultConfig())
	chunks := []Chunk{
		{Segments: []TextSegment{heading(1, "Chapter 1"), heading(2, "Arrays"), paragraph(10)}},
		{Segments: []TextSegment{paragraph(10), heading(3, "1.1 Slices"), paragraph(10)}, OverlapSegments: 1},
		{Segments: []TextSegment{paragraph(10), heading(1, "Chapter 2"), paragraph(10)}, OverlapSegments: 1},
	}

	smart := c.EnhanceChunks(chunks)

	assert.Equal(t, "Chapter 1", smart[0].Metadata.Chapter)
	assert.Equal(t, "Arrays", smart[0].Metadata.Section)
	assert.Equal(t, "1.1 Slices", smart[1].Metadata.Subsection)
	assert.Equal(t, LevelSubsection, smart[1].Metadata.StructuralLevel)
	assert.Equal(t, "Chapter 2", smart[2].Metadata.Chapter)
	assert.Equal(t, UntitledHeading, smart[2].Metadata.Section)
	assert.Equal(t, smart[1].Content, smart[2].Metadata.PrecedingContext)
}

func TestParseChunkIndex(t *testing.T) {
	n, ok := ParseChunkIndex(ChunkID(12))
	assert.True(t, ok)
	assert.Equal(t, 12, n)

	_, ok = ParseChunkIndex("section-3")
	assert.False(t, ok)
	_, ok = ParseChunkIndex("chunk-x")
	assert.False(t, ok)
}
