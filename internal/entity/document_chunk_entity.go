package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/chunking"
)

// DocumentChunk is one indexed SmartChunk of a document with its embedding.
type DocumentChunk struct {
	Id             uuid.UUID
	DocumentId     uuid.UUID
	ChunkId        string // chunk-<n>
	ChunkIndex     int
	Content        string
	Tokens         int
	Metadata       chunking.ChunkMetadata
	EmbeddingValue []float32
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}

// ChunkHeading is the heading projection used to derive a document's
// chapter/section structure without loading content or vectors.
type ChunkHeading struct {
	ChunkIndex int
	Chapter    string
	Section    string
}

func (c *DocumentChunk) SmartChunk() chunking.SmartChunk {
	return chunking.SmartChunk{
		ID:       c.ChunkId,
		Content:  c.Content,
		Tokens:   c.Tokens,
		Metadata: c.Metadata,
	}
}
