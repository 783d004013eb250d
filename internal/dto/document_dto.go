package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/chunking"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/retrieval"
)

type IndexDocumentRequest struct {
	Content string `json:"content" validate:"required"`
}

type IndexDocumentResponse struct {
	DocumentId uuid.UUID `json:"document_id"`
	Status     string    `json:"status"`
}

// PublishIndexDocumentMessage is the job carried on the indexing topic.
type PublishIndexDocumentMessage struct {
	DocumentId uuid.UUID `json:"document_id"`
	Content    string    `json:"content"`
	QueuedAt   time.Time `json:"queued_at"`
}

type PreviewChunksRequest struct {
	Content string `json:"content" validate:"required"`
}

type PreviewChunksResponse struct {
	Analysis chunking.ContentAnalysis `json:"analysis"`
	Chunks   []chunking.SmartChunk    `json:"chunks"`
}

type ChunkResponse struct {
	Id         uuid.UUID              `json:"id"`
	ChunkId    string                 `json:"chunk_id"`
	ChunkIndex int                    `json:"chunk_index"`
	Content    string                 `json:"content"`
	Tokens     int                    `json:"tokens"`
	Metadata   chunking.ChunkMetadata `json:"metadata"`
	CreatedAt  time.Time              `json:"created_at"`
}

type RetrieveRequest struct {
	Query string `json:"query" validate:"required,max=2000"`
}

type RetrieveResponse struct {
	Found   bool                       `json:"found"`
	Message string                     `json:"message,omitempty"`
	Cached  bool                       `json:"cached"`
	Content *retrieval.RelevantContent `json:"content"`
}
