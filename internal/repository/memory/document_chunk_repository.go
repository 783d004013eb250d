package memory

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/iamfranciscoalmeida/flashly-ai-sub001/internal/entity"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/internal/repository/contract"
)

// DocumentChunkRepository keeps indexed chunks in process, one go-cache
// entry per document. Meant for development and tests; documents expire
// after ttl without a re-index.
type DocumentChunkRepository struct {
	mu    sync.RWMutex
	cache *cache.Cache
}

var _ contract.DocumentChunkRepository = &DocumentChunkRepository{}

func NewDocumentChunkRepository(ttl time.Duration) *DocumentChunkRepository {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &DocumentChunkRepository{
		cache: cache.New(ttl, 10*time.Minute),
	}
}

func (r *DocumentChunkRepository) ReplaceDocumentChunks(_ context.Context, documentId uuid.UUID, chunks []*entity.DocumentChunk) error {
	now := time.Now()
	stored := make([]*entity.DocumentChunk, len(chunks))
	for i, c := range chunks {
		cp := *c
		cp.DocumentId = documentId
		if cp.Id == uuid.Nil {
			cp.Id = uuid.New()
		}
		if cp.CreatedAt.IsZero() {
			cp.CreatedAt = now
		}
		stored[i] = &cp
	}
	sort.SliceStable(stored, func(i, j int) bool { return stored[i].ChunkIndex < stored[j].ChunkIndex })

	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Set(documentId.String(), stored, cache.DefaultExpiration)
	return nil
}

func (r *DocumentChunkRepository) DeleteByDocumentId(_ context.Context, documentId uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Delete(documentId.String())
	return nil
}

func (r *DocumentChunkRepository) load(documentId uuid.UUID) []*entity.DocumentChunk {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if x, found := r.cache.Get(documentId.String()); found {
		return x.([]*entity.DocumentChunk)
	}
	return nil
}

func (r *DocumentChunkRepository) FindByDocumentId(_ context.Context, documentId uuid.UUID) ([]*entity.DocumentChunk, error) {
	stored := r.load(documentId)
	out := make([]*entity.DocumentChunk, len(stored))
	for i, c := range stored {
		cp := *c
		out[i] = &cp
	}
	return out, nil
}

func (r *DocumentChunkRepository) FindChunk(_ context.Context, documentId uuid.UUID, chunkId string) (*entity.DocumentChunk, error) {
	for _, c := range r.load(documentId) {
		if c.ChunkId == chunkId {
			cp := *c
			return &cp, nil
		}
	}
	return nil, contract.ErrChunkNotFound
}

func (r *DocumentChunkRepository) FindHeadings(_ context.Context, documentId uuid.UUID) ([]entity.ChunkHeading, error) {
	stored := r.load(documentId)
	headings := make([]entity.ChunkHeading, len(stored))
	for i, c := range stored {
		headings[i] = entity.ChunkHeading{ChunkIndex: c.ChunkIndex, Chapter: c.Metadata.Chapter, Section: c.Metadata.Section}
	}
	return headings, nil
}

// SearchSimilarWithScore is a linear cosine scan over the document's chunks.
func (r *DocumentChunkRepository) SearchSimilarWithScore(_ context.Context, embedding []float32, limit int, documentId uuid.UUID) ([]*contract.ScoredDocumentChunk, error) {
	if limit <= 0 {
		limit = 5
	}

	stored := r.load(documentId)
	scored := make([]*contract.ScoredDocumentChunk, 0, len(stored))
	for _, c := range stored {
		cp := *c
		scored = append(scored, &contract.ScoredDocumentChunk{
			Chunk:      &cp,
			Similarity: cosineSimilarity(embedding, c.EmbeddingValue),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Similarity > scored[j].Similarity })
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
