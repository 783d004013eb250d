// FILE: internal/service/consumer_service.go
package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/iamfranciscoalmeida/flashly-ai-sub001/internal/dto"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/internal/entity"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/internal/pkg/logger"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/internal/repository/contract"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/chunking"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/embedding"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/events"
)

// embedConcurrency bounds in-flight embedding calls per document.
const embedConcurrency = 4

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber        message.Subscriber
	topicName         string
	repo              contract.DocumentChunkRepository
	chunker           *chunking.Chunker
	embeddingProvider embedding.EmbeddingProvider
	cacheService      ICacheService
	eventPublisher    events.Publisher
	origin            string
	log               logger.ILogger
}

// NewConsumerService builds the indexing worker. cacheService and
// eventPublisher may be nil.
func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	repo contract.DocumentChunkRepository,
	chunker *chunking.Chunker,
	embeddingProvider embedding.EmbeddingProvider,
	cacheService ICacheService,
	eventPublisher events.Publisher,
	origin string,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber:        subscriber,
		topicName:         topicName,
		repo:              repo,
		chunker:           chunker,
		embeddingProvider: embeddingProvider,
		cacheService:      cacheService,
		eventPublisher:    eventPublisher,
		origin:            origin,
		log:               log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishIndexDocumentMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.log.Error("indexing", "Failed to unmarshal message", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}
	if payload.DocumentId == uuid.Nil || strings.TrimSpace(payload.Content) == "" {
		cs.log.Warn("indexing", "Skipping job without document or content", map[string]interface{}{
			"message_id":  msg.UUID,
			"document_id": payload.DocumentId.String(),
		})
		msg.Ack()
		return
	}

	started := time.Now()
	documentID := payload.DocumentId.String()

	chunks := cs.chunker.ChunkDocument(payload.Content)
	rows, tokens, err := cs.embedChunks(ctx, payload.DocumentId, chunks)
	if err != nil {
		cs.log.Error("indexing", "Failed to embed chunks", map[string]interface{}{
			"document_id": documentID,
			"chunks":      len(chunks),
			"error":       err.Error(),
		})
		msg.Nack() // Nack for retriable errors
		return
	}

	if err := cs.repo.ReplaceDocumentChunks(ctx, payload.DocumentId, rows); err != nil {
		cs.log.Error("indexing", "Failed to store chunks", map[string]interface{}{
			"document_id": documentID,
			"error":       err.Error(),
		})
		msg.Nack()
		return
	}

	if cs.cacheService != nil {
		cs.cacheService.InvalidateDocument(ctx, documentID)
	}

	if cs.eventPublisher != nil {
		evt := events.NewDocumentIndexed(documentID, len(rows), tokens, cs.origin)
		// Auxiliary, a failed event does not fail the job
		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			cs.log.Warn("indexing", "Failed to publish DOCUMENT_INDEXED event", map[string]interface{}{
				"document_id": documentID,
				"error":       err.Error(),
			})
		}
	}

	cs.log.Info("indexing", "Document indexed", map[string]interface{}{
		"document_id": documentID,
		"chunks":      len(rows),
		"tokens":      tokens,
		"duration_ms": time.Since(started).Milliseconds(),
	})
	msg.Ack()
}

func (cs *consumerService) embedChunks(ctx context.Context, documentId uuid.UUID, chunks []chunking.SmartChunk) ([]*entity.DocumentChunk, int, error) {
	rows := make([]*entity.DocumentChunk, len(chunks))
	now := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(embedConcurrency)
	for i, chunk := range chunks {
		g.Go(func() error {
			res, err := cs.embeddingProvider.Generate(gctx, chunk.Content, embedding.TaskRetrievalDocument)
			if err != nil {
				return err
			}
			rows[i] = &entity.DocumentChunk{
				Id:             uuid.New(),
				DocumentId:     documentId,
				ChunkId:        chunk.ID,
				ChunkIndex:     i,
				Content:        chunk.Content,
				Tokens:         chunk.Tokens,
				Metadata:       chunk.Metadata,
				EmbeddingValue: res.Embedding.Values,
				CreatedAt:      now,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	tokens := 0
	for _, row := range rows {
		tokens += row.Tokens
	}
	return rows, tokens, nil
}
