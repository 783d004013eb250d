package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"

	"github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/chunking"
)

type DocumentChunk struct {
	Id             uuid.UUID                                  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentId     uuid.UUID                                  `gorm:"type:uuid;not null;uniqueIndex:idx_document_chunk,priority:1"`
	ChunkIndex     int                                        `gorm:"not null;uniqueIndex:idx_document_chunk,priority:2"`
	ChunkId        string                                     `gorm:"type:varchar(32);not null"`
	Content        string                                     `gorm:"type:text"`
	Tokens         int                                        `gorm:"default:0"`
	Chapter        string                                     `gorm:"type:text"`
	Section        string                                     `gorm:"type:text"`
	Metadata       datatypes.JSONType[chunking.ChunkMetadata] `gorm:"type:jsonb"`
	EmbeddingValue pgvector.Vector                            `gorm:"type:vector(768)"` // nomic-embed-text / text-embedding-3-small@768
	CreatedAt      time.Time                                  `gorm:"autoCreateTime"`
	UpdatedAt      time.Time                                  `gorm:"autoUpdateTime"`
}

func (DocumentChunk) TableName() string {
	return "document_chunks"
}
