package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByDocumentID struct {
	DocumentID uuid.UUID
}

func (s ByDocumentID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("document_id = ?", s.DocumentID)
}

type ByChunkID struct {
	ChunkID string
}

func (s ByChunkID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chunk_id = ?", s.ChunkID)
}

// OrderByChunkIndex keeps chunks in document order
type OrderByChunkIndex struct{}

func (s OrderByChunkIndex) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("chunk_index ASC")
}

// HeadingColumns restricts the select to the structure projection.
type HeadingColumns struct{}

func (s HeadingColumns) Apply(db *gorm.DB) *gorm.DB {
	return db.Select("chunk_index", "chapter", "section")
}
