package retrieval

import (
	"context"
	"errors"

	"github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/chunking"
)

var ErrEmptyQuery = errors.New("retrieval: empty query")

type IntentType string

const (
	IntentDefinition  IntentType = "definition"
	IntentComparison  IntentType = "comparison"
	IntentExample     IntentType = "example"
	IntentSummary     IntentType = "summary"
	IntentExplanation IntentType = "explanation"
	IntentUnknown     IntentType = "unknown"
)

func (t IntentType) Valid() bool {
	switch t {
	case IntentDefinition, IntentComparison, IntentExample, IntentSummary, IntentExplanation, IntentUnknown:
		return true
	}
	return false
}

type QueryIntent struct {
	Type       IntentType `json:"type"`
	Confidence float64    `json:"confidence"`
	Keywords   []string   `json:"keywords"`
}

type QueryEmbeddings struct {
	Original []float32 `json:"original"`
	Expanded []float32 `json:"expanded"`
}

// ExpandedQuery is built once per Retrieve call and not modified afterwards.
type ExpandedQuery struct {
	Original       string          `json:"original"`
	DocumentID     string          `json:"documentId"`
	Intent         QueryIntent     `json:"intent"`
	ExpandedTerms  []string        `json:"expandedTerms"`
	TargetSections []string        `json:"targetSections"`
	Embeddings     QueryEmbeddings `json:"-"`
}

// EnhancedChunk is a stored chunk scored for one query.
type EnhancedChunk struct {
	chunking.SmartChunk
	Score           float64  `json:"score"`
	Highlights      []string `json:"highlights,omitempty"`
	RelatedConcepts []string `json:"relatedConcepts,omitempty"`
}

type ConceptInfo struct {
	Term         string   `json:"term"`
	Definition   string   `json:"definition"`
	Relevance    float64  `json:"relevance"`
	SourceChunks []string `json:"sourceChunks"`
}

type Metadata struct {
	Intent        IntentType `json:"intent"`
	Strategy      string     `json:"strategy"`
	ExpansionUsed bool       `json:"expansionUsed"`
}

type RelevantContent struct {
	Chunks         []EnhancedChunk `json:"chunks"`
	Concepts       []ConceptInfo   `json:"concepts"`
	TotalTokens    int             `json:"totalTokens"`
	RelevanceScore float64         `json:"relevanceScore"`
	Metadata       Metadata        `json:"metadata"`
}

type SearchFilter struct {
	DocumentID string `json:"documentId"`
}

type SearchRequest struct {
	Vector          []float32
	TopK            int
	Filter          SearchFilter
	IncludeMetadata bool
}

type SearchMatch struct {
	Chunk chunking.SmartChunk
	Score float64
}

// VectorStore runs similarity search over indexed chunks. Matches are
// returned best first.
type VectorStore interface {
	Search(ctx context.Context, req SearchRequest) ([]SearchMatch, error)
}

// Section and Chapter ids are the heading titles stored in chunk metadata,
// so a target section can be matched directly against a chunk's headings.
type Section struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type Chapter struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Sections []Section `json:"sections"`
}

type DocumentStructure struct {
	Chapters []Chapter `json:"chapters"`
}

type StructureSource interface {
	DocumentStructure(ctx context.Context, documentID string) (*DocumentStructure, error)
}

type ChunkSource interface {
	FindChunk(ctx context.Context, documentID, chunkID string) (*chunking.SmartChunk, error)
}

type Config struct {
	TopK             int
	HybridSearch     bool
	QueryExpansion   bool
	ContextExpansion bool
	ExpansionDepth   int
	Rerank           bool
}

func DefaultConfig() Config {
	return Config{
		TopK:             8,
		HybridSearch:     true,
		QueryExpansion:   true,
		ContextExpansion: true,
		ExpansionDepth:   1,
		Rerank:           true,
	}
}
