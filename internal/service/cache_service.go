package service

import (
	"context"
	"sort"

	"github.com/iamfranciscoalmeida/flashly-ai-sub001/internal/dto"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/internal/pkg/logger"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/cache"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/events"
)

type ICacheService interface {
	Stats(ctx context.Context) *dto.CacheStatsResponse
	ClearStats(ctx context.Context)
	Invalidate(ctx context.Context, req *dto.InvalidateCacheRequest) (*dto.InvalidateCacheResponse, error)
	Peek(ctx context.Context, req *dto.PeekCacheRequest) *dto.PeekCacheResponse
	// InvalidateDocument drops cached retrievals and the structure of a
	// document after its chunks change.
	InvalidateDocument(ctx context.Context, documentID string)
	HandleDocumentIndexed(ctx context.Context, event events.Event) error
}

type StructureWarmer interface {
	WarmStructure(ctx context.Context, documentID string) error
}

type cacheService struct {
	cache  *cache.Tiered
	warmer StructureWarmer
	origin string
	log    logger.ILogger
}

// NewCacheService wraps c for the HTTP API and indexing. warmer may be nil.
// origin identifies this instance in DOCUMENT_INDEXED events.
func NewCacheService(c *cache.Tiered, warmer StructureWarmer, origin string, log logger.ILogger) ICacheService {
	return &cacheService{
		cache:  c,
		warmer: warmer,
		origin: origin,
		log:    log,
	}
}

func (s *cacheService) Stats(ctx context.Context) *dto.CacheStatsResponse {
	res := &dto.CacheStatsResponse{
		Remote: s.cache.HasRemote(),
		Layers: make(map[string]dto.LayerStatsResponse),
	}
	for layer, st := range s.cache.Stats() {
		res.Layers[string(layer)] = dto.LayerStatsResponse{
			Hits:       st.Hits,
			LocalHits:  st.LocalHits,
			RemoteHits: st.RemoteHits,
			Misses:     st.Misses,
			Sets:       st.Sets,
			Evictions:  st.Evictions,
			Entries:    st.Entries,
			HitRate:    st.HitRate(),
		}
	}
	return res
}

func (s *cacheService) ClearStats(ctx context.Context) {
	s.cache.ClearStats()
}

func (s *cacheService) Invalidate(ctx context.Context, req *dto.InvalidateCacheRequest) (*dto.InvalidateCacheResponse, error) {
	var layers []cache.Layer
	if req.Layer != "" {
		layers = append(layers, cache.Layer(req.Layer))
	}

	removed, err := s.cache.Invalidate(ctx, req.Pattern, layers...)
	if err != nil {
		return nil, err
	}
	return &dto.InvalidateCacheResponse{Removed: removed}, nil
}

func (s *cacheService) Peek(ctx context.Context, req *dto.PeekCacheRequest) *dto.PeekCacheResponse {
	entries := s.cache.MGet(ctx, req.Keys, cache.Layer(req.Layer))

	missing := make([]string, 0)
	for _, key := range req.Keys {
		if _, ok := entries[key]; !ok {
			missing = append(missing, key)
		}
	}
	sort.Strings(missing)

	return &dto.PeekCacheResponse{Entries: entries, Missing: missing}
}

func (s *cacheService) InvalidateDocument(ctx context.Context, documentID string) {
	if _, err := s.cache.Invalidate(ctx, retrievalCachePattern(documentID), cache.LayerRetrieval); err != nil {
		s.log.Warn("cache", "Failed to invalidate document retrievals", map[string]interface{}{
			"document_id": documentID,
			"error":       err.Error(),
		})
	}
	if _, err := s.cache.Invalidate(ctx, structureCacheKey(documentID), cache.LayerSummaries); err != nil {
		s.log.Warn("cache", "Failed to invalidate document structure", map[string]interface{}{
			"document_id": documentID,
			"error":       err.Error(),
		})
	}

	if s.warmer == nil {
		return
	}
	if err := s.warmer.WarmStructure(ctx, documentID); err != nil {
		s.log.Warn("cache", "Failed to warm document structure", map[string]interface{}{
			"document_id": documentID,
			"error":       err.Error(),
		})
	}
}

// HandleDocumentIndexed drops the local copies held by this instance when
// another instance re-indexed a document. Events from this instance are
// ignored since the consumer already invalidated.
func (s *cacheService) HandleDocumentIndexed(ctx context.Context, event events.Event) error {
	documentID := events.StringField(event, "document_id")
	if documentID == "" {
		s.log.Warn("cache", "DOCUMENT_INDEXED event without document_id", nil)
		return nil
	}
	if events.StringField(event, "origin") == s.origin {
		return nil
	}

	s.log.Debug("cache", "Invalidating after remote indexing", map[string]interface{}{
		"document_id": documentID,
		"origin":      events.StringField(event, "origin"),
	})
	s.InvalidateDocument(ctx, documentID)
	return nil
}
