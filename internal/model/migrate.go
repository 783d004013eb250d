package model

import "gorm.io/gorm"

// Migrate enables pgvector and creates or updates the chunk table.
func Migrate(db *gorm.DB) error {
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return err
	}
	if err := db.AutoMigrate(&DocumentChunk{}); err != nil {
		return err
	}
	return db.Exec(`CREATE INDEX IF NOT EXISTS idx_document_chunks_embedding
		ON document_chunks USING hnsw (embedding_value vector_cosine_ops)`).Error
}
