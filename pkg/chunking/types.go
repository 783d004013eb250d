package chunking

type SegmentType string

const (
	SegmentHeading   SegmentType = "heading"
	SegmentParagraph SegmentType = "paragraph"
	SegmentList      SegmentType = "list"
	SegmentCode      SegmentType = "code"
	SegmentEquation  SegmentType = "equation"
	SegmentTable     SegmentType = "table"
)

// TextSegment is one structural unit of a document, in document order.
type TextSegment struct {
	Content  string            `json:"content"`
	Type     SegmentType       `json:"type"`
	Level    int               `json:"level,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Tokens   int               `json:"tokens"`
}

// Chunk is a contiguous run of segments before enrichment.
// StartIndex and EndIndex are inclusive segment indices. The first
// OverlapSegments segments are carried over from the previous chunk.
type Chunk struct {
	Segments        []TextSegment `json:"segments"`
	Tokens          int           `json:"tokens"`
	StartIndex      int           `json:"startIndex"`
	EndIndex        int           `json:"endIndex"`
	OverlapSegments int           `json:"overlapSegments"`
}

type StructuralLevel string

const (
	LevelChapter    StructuralLevel = "chapter"
	LevelSection    StructuralLevel = "section"
	LevelSubsection StructuralLevel = "subsection"
	LevelParagraph  StructuralLevel = "paragraph"
)

type ContentType string

const (
	ContentNarrative    ContentType = "narrative"
	ContentTechnical    ContentType = "technical"
	ContentMathematical ContentType = "mathematical"
	ContentCode         ContentType = "code"
	ContentMixed        ContentType = "mixed"
)

type ChunkMetadata struct {
	Chapter          string          `json:"chapter"`
	Section          string          `json:"section"`
	Subsection       string          `json:"subsection,omitempty"`
	Concepts         []string        `json:"concepts"`
	PrecedingContext string          `json:"precedingContext"`
	FollowingContext string          `json:"followingContext"`
	StructuralLevel  StructuralLevel `json:"structuralLevel"`
	PageNumbers      []int           `json:"pageNumbers"`
	Figures          []string        `json:"figures"`
	Equations        []string        `json:"equations"`
	SemanticDensity  float64         `json:"semanticDensity"`
	ContentType      ContentType     `json:"contentType"`
	RelatedChunks    []string        `json:"relatedChunks"`
}

// SmartChunk is an enriched chunk as persisted and returned to callers.
type SmartChunk struct {
	ID       string        `json:"id"`
	Content  string        `json:"content"`
	Tokens   int           `json:"tokens"`
	Metadata ChunkMetadata `json:"metadata"`
}

// ContentAnalysis aggregates document-level statistics over all segments.
type ContentAnalysis struct {
	TotalTokens       int                 `json:"totalTokens"`
	SegmentCounts     map[SegmentType]int `json:"segmentCounts"`
	TechnicalSegments int                 `json:"technicalSegments"`
	SemanticDensity   float64             `json:"semanticDensity"`
}

const (
	DocumentStartMarker = "[Document start]"
	DocumentEndMarker   = "[Document end]"
	UntitledHeading     = "Untitled"
	MaxConcepts         = 15
)

type Config struct {
	MaxTokens           int  `json:"maxTokens"`
	OverlapTokens       int  `json:"overlapTokens"`
	ContextWindowTokens int  `json:"contextWindowTokens"`
	PreserveBoundaries  bool `json:"preserveBoundaries"`
	AdaptiveSizing      bool `json:"adaptiveSizing"`
}

func DefaultConfig() Config {
	return Config{
		MaxTokens:           1500,
		OverlapTokens:       100,
		ContextWindowTokens: 200,
		PreserveBoundaries:  true,
		AdaptiveSizing:      true,
	}
}
