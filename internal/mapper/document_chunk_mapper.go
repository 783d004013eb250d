package mapper

import (
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"

	"github.com/iamfranciscoalmeida/flashly-ai-sub001/internal/entity"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/internal/model"
)

type DocumentChunkMapper struct{}

func NewDocumentChunkMapper() *DocumentChunkMapper {
	return &DocumentChunkMapper{}
}

func (m *DocumentChunkMapper) ToEntity(c *model.DocumentChunk) *entity.DocumentChunk {
	if c == nil {
		return nil
	}

	updatedAt := c.UpdatedAt
	return &entity.DocumentChunk{
		Id:             c.Id,
		DocumentId:     c.DocumentId,
		ChunkId:        c.ChunkId,
		ChunkIndex:     c.ChunkIndex,
		Content:        c.Content,
		Tokens:         c.Tokens,
		Metadata:       c.Metadata.Data(),
		EmbeddingValue: c.EmbeddingValue.Slice(),
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      &updatedAt,
	}
}

func (m *DocumentChunkMapper) ToModel(c *entity.DocumentChunk) *model.DocumentChunk {
	if c == nil {
		return nil
	}

	out := &model.DocumentChunk{
		Id:             c.Id,
		DocumentId:     c.DocumentId,
		ChunkId:        c.ChunkId,
		ChunkIndex:     c.ChunkIndex,
		Content:        c.Content,
		Tokens:         c.Tokens,
		Chapter:        c.Metadata.Chapter,
		Section:        c.Metadata.Section,
		Metadata:       datatypes.NewJSONType(c.Metadata),
		EmbeddingValue: pgvector.NewVector(c.EmbeddingValue),
		CreatedAt:      c.CreatedAt,
	}
	if c.UpdatedAt != nil {
		out.UpdatedAt = *c.UpdatedAt
	}
	return out
}

func (m *DocumentChunkMapper) ToEntities(chunks []*model.DocumentChunk) []*entity.DocumentChunk {
	entities := make([]*entity.DocumentChunk, len(chunks))
	for i, c := range chunks {
		entities[i] = m.ToEntity(c)
	}
	return entities
}

func (m *DocumentChunkMapper) ToModels(chunks []*entity.DocumentChunk) []*model.DocumentChunk {
	models := make([]*model.DocumentChunk, len(chunks))
	for i, c := range chunks {
		models[i] = m.ToModel(c)
	}
	return models
}
