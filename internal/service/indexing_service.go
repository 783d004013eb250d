package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/iamfranciscoalmeida/flashly-ai-sub001/internal/dto"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/internal/pkg/logger"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/internal/repository/contract"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/chunking"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/lexical"
)

const IndexStatusQueued = "queued"

type IIndexingService interface {
	Enqueue(ctx context.Context, documentId uuid.UUID, req *dto.IndexDocumentRequest) (*dto.IndexDocumentResponse, error)
	Preview(ctx context.Context, req *dto.PreviewChunksRequest) (*dto.PreviewChunksResponse, error)
	ListChunks(ctx context.Context, documentId uuid.UUID) ([]*dto.ChunkResponse, error)
}

type indexingService struct {
	publisherService IPublisherService
	chunker          *chunking.Chunker
	repo             contract.DocumentChunkRepository
	log              logger.ILogger
}

func NewIndexingService(
	publisherService IPublisherService,
	chunker *chunking.Chunker,
	repo contract.DocumentChunkRepository,
	log logger.ILogger,
) IIndexingService {
	return &indexingService{
		publisherService: publisherService,
		chunker:          chunker,
		repo:             repo,
		log:              log,
	}
}

// Enqueue publishes an index job. Editor JSON is converted to markdown here
// so the consumer only ever chunks text.
func (s *indexingService) Enqueue(ctx context.Context, documentId uuid.UUID, req *dto.IndexDocumentRequest) (*dto.IndexDocumentResponse, error) {
	content := lexical.Normalize(req.Content)
	msgJson, err := json.Marshal(dto.PublishIndexDocumentMessage{
		DocumentId: documentId,
		Content:    content,
		QueuedAt:   time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	if err := s.publisherService.Publish(ctx, msgJson); err != nil {
		return nil, err
	}

	s.log.Info("indexing", "Document queued for indexing", map[string]interface{}{
		"document_id":    documentId.String(),
		"content_length": len(content),
	})

	return &dto.IndexDocumentResponse{
		DocumentId: documentId,
		Status:     IndexStatusQueued,
	}, nil
}

// Preview chunks content without embedding or persisting anything.
func (s *indexingService) Preview(ctx context.Context, req *dto.PreviewChunksRequest) (*dto.PreviewChunksResponse, error) {
	segments := s.chunker.Segment(lexical.Normalize(req.Content))
	res := &dto.PreviewChunksResponse{
		Analysis: s.chunker.AnalyzeContent(segments),
		Chunks:   []chunking.SmartChunk{},
	}
	if len(segments) == 0 {
		return res, nil
	}

	res.Chunks = s.chunker.EnhanceChunks(s.chunker.CreateSemanticChunks(segments, res.Analysis))
	chunking.AddChunkRelationships(res.Chunks)
	return res, nil
}

func (s *indexingService) ListChunks(ctx context.Context, documentId uuid.UUID) ([]*dto.ChunkResponse, error) {
	chunks, err := s.repo.FindByDocumentId(ctx, documentId)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.ChunkResponse, 0, len(chunks))
	for _, c := range chunks {
		res = append(res, &dto.ChunkResponse{
			Id:         c.Id,
			ChunkId:    c.ChunkId,
			ChunkIndex: c.ChunkIndex,
			Content:    c.Content,
			Tokens:     c.Tokens,
			Metadata:   c.Metadata,
			CreatedAt:  c.CreatedAt,
		})
	}
	return res, nil
}
