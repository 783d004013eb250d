// FILE: internal/service/retrieval_service.go
package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/iamfranciscoalmeida/flashly-ai-sub001/internal/dto"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/internal/pkg/logger"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/cache"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/retrieval"
)

const NoRelevantContentMessage = "No relevant content found"

var tracer = otel.Tracer("flashly/service")

type IRetrievalService interface {
	Retrieve(ctx context.Context, documentId uuid.UUID, req *dto.RetrieveRequest) (*dto.RetrieveResponse, error)
}

type retrievalService struct {
	engine *retrieval.Engine
	cache  *cache.Tiered
	log    logger.ILogger
}

// NewRetrievalService wraps engine with the retrieval cache layer. c may be
// nil.
func NewRetrievalService(engine *retrieval.Engine, c *cache.Tiered, log logger.ILogger) IRetrievalService {
	return &retrievalService{
		engine: engine,
		cache:  c,
		log:    log,
	}
}

// Retrieve never surfaces engine failures: they are logged and answered
// with an empty bundle. Only an empty query is returned as an error.
func (s *retrievalService) Retrieve(ctx context.Context, documentId uuid.UUID, req *dto.RetrieveRequest) (*dto.RetrieveResponse, error) {
	documentID := documentId.String()
	query := strings.TrimSpace(req.Query)

	ctx, span := tracer.Start(ctx, "RetrievalService.Retrieve",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("document.id", documentID),
			attribute.Int("query.length", len(query)),
		),
	)
	defer span.End()

	if query == "" {
		span.SetStatus(codes.Error, retrieval.ErrEmptyQuery.Error())
		return nil, retrieval.ErrEmptyQuery
	}

	key := retrievalCacheKey(documentID, query)
	if s.cache != nil {
		var cached retrieval.RelevantContent
		if s.cache.Get(ctx, key, cache.LayerRetrieval, &cached) {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			res := newRetrieveResponse(&cached)
			res.Cached = true
			return res, nil
		}
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	content, err := s.engine.Retrieve(ctx, query, documentID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if errors.Is(err, retrieval.ErrEmptyQuery) {
			return nil, err
		}
		s.log.Error("retrieval", "Retrieval failed", map[string]interface{}{
			"document_id": documentID,
			"error":       err.Error(),
		})
		return &dto.RetrieveResponse{
			Found:   false,
			Message: NoRelevantContentMessage,
			Content: emptyContent(),
		}, nil
	}

	span.SetAttributes(
		attribute.Int("retrieval.chunks", len(content.Chunks)),
		attribute.String("retrieval.strategy", content.Metadata.Strategy),
	)

	res := newRetrieveResponse(content)
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, cache.LayerRetrieval, content, 0); err != nil {
			s.log.Warn("retrieval", "Failed to cache retrieval", map[string]interface{}{
				"document_id": documentID,
				"error":       err.Error(),
			})
		}
	}
	return res, nil
}

func newRetrieveResponse(content *retrieval.RelevantContent) *dto.RetrieveResponse {
	res := &dto.RetrieveResponse{Found: len(content.Chunks) > 0, Content: content}
	if !res.Found {
		res.Message = NoRelevantContentMessage
	}
	return res
}

func emptyContent() *retrieval.RelevantContent {
	return &retrieval.RelevantContent{
		Chunks:   []retrieval.EnhancedChunk{},
		Concepts: []retrieval.ConceptInfo{},
	}
}
