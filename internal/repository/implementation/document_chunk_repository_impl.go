package implementation

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"github.com/iamfranciscoalmeida/flashly-ai-sub001/internal/entity"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/internal/mapper"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/internal/model"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/internal/repository/contract"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/internal/repository/specification"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/database"
)

const insertBatchSize = 100

type DocumentChunkRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DocumentChunkMapper
}

func NewDocumentChunkRepository(db *gorm.DB) contract.DocumentChunkRepository {
	return &DocumentChunkRepositoryImpl{
		db:     db,
		mapper: mapper.NewDocumentChunkMapper(),
	}
}

func (r *DocumentChunkRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *DocumentChunkRepositoryImpl) ReplaceDocumentChunks(ctx context.Context, documentId uuid.UUID, chunks []*entity.DocumentChunk) error {
	models := r.mapper.ToModels(chunks)
	for _, m := range models {
		m.DocumentId = documentId
		if m.Id == uuid.Nil {
			m.Id = uuid.New()
		}
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		del := r.applySpecifications(tx, specification.ByDocumentID{DocumentID: documentId})
		if err := del.Delete(&model.DocumentChunk{}).Error; err != nil {
			return err
		}
		if len(models) == 0 {
			return nil
		}
		return tx.CreateInBatches(models, insertBatchSize).Error
	})
}

func (r *DocumentChunkRepositoryImpl) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	query := r.applySpecifications(r.db.WithContext(ctx), specification.ByDocumentID{DocumentID: documentId})
	return query.Delete(&model.DocumentChunk{}).Error
}

func (r *DocumentChunkRepositoryImpl) FindByDocumentId(ctx context.Context, documentId uuid.UUID) ([]*entity.DocumentChunk, error) {
	var models []*model.DocumentChunk
	query := r.applySpecifications(r.db.WithContext(ctx),
		specification.ByDocumentID{DocumentID: documentId},
		specification.OrderByChunkIndex{},
	)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *DocumentChunkRepositoryImpl) FindChunk(ctx context.Context, documentId uuid.UUID, chunkId string) (*entity.DocumentChunk, error) {
	var m model.DocumentChunk
	query := r.applySpecifications(r.db.WithContext(ctx),
		specification.ByDocumentID{DocumentID: documentId},
		specification.ByChunkID{ChunkID: chunkId},
	)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, contract.ErrChunkNotFound
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

// FindHeadings returns nothing, not an error, before the table is migrated.
func (r *DocumentChunkRepositoryImpl) FindHeadings(ctx context.Context, documentId uuid.UUID) ([]entity.ChunkHeading, error) {
	var rows []struct {
		ChunkIndex int
		Chapter    string
		Section    string
	}
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.DocumentChunk{}),
		specification.HeadingColumns{},
		specification.ByDocumentID{DocumentID: documentId},
		specification.OrderByChunkIndex{},
	)
	if err := query.Scan(&rows).Error; err != nil {
		if database.IsUndefinedTable(err) {
			return nil, nil
		}
		return nil, err
	}

	headings := make([]entity.ChunkHeading, len(rows))
	for i, row := range rows {
		headings[i] = entity.ChunkHeading{ChunkIndex: row.ChunkIndex, Chapter: row.Chapter, Section: row.Section}
	}
	return headings, nil
}

// SearchSimilarWithScore ranks a document's chunks by cosine similarity.
// pgvector's <=> is cosine distance, so similarity = 1 - distance.
func (r *DocumentChunkRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, documentId uuid.UUID) ([]*contract.ScoredDocumentChunk, error) {
	if limit <= 0 {
		limit = 5
	}

	type result struct {
		model.DocumentChunk
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	query := r.applySpecifications(r.db.WithContext(ctx).Table("document_chunks"),
		specification.ByDocumentID{DocumentID: documentId},
	)
	err := query.
		Select("document_chunks.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredDocumentChunk, len(results))
	for i := range results {
		scored[i] = &contract.ScoredDocumentChunk{
			Chunk:      r.mapper.ToEntity(&results[i].DocumentChunk),
			Similarity: results[i].Similarity,
		}
	}
	return scored, nil
}
