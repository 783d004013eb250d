package contract

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/iamfranciscoalmeida/flashly-ai-sub001/internal/entity"
)

var ErrChunkNotFound = errors.New("chunk not found")

// ScoredDocumentChunk wraps DocumentChunk with its similarity score
type ScoredDocumentChunk struct {
	Chunk      *entity.DocumentChunk
	Similarity float64 // cosine similarity, 1.0 = identical
}

type DocumentChunkRepository interface {
	// ReplaceDocumentChunks swaps all chunks of a document atomically.
	ReplaceDocumentChunks(ctx context.Context, documentId uuid.UUID, chunks []*entity.DocumentChunk) error
	DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error
	FindByDocumentId(ctx context.Context, documentId uuid.UUID) ([]*entity.DocumentChunk, error)
	// FindChunk returns ErrChunkNotFound when the document has no such chunk.
	FindChunk(ctx context.Context, documentId uuid.UUID, chunkId string) (*entity.DocumentChunk, error)
	FindHeadings(ctx context.Context, documentId uuid.UUID) ([]entity.ChunkHeading, error)
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, documentId uuid.UUID) ([]*ScoredDocumentChunk, error)
}
