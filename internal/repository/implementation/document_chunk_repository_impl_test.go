package implementation

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamfranciscoalmeida/flashly-ai-sub001/internal/entity"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/internal/model"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/internal/repository/contract"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/chunking"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/database"
)

func vector(hot int) []float32 {
	v := make([]float32, 768)
	v[hot] = 1
	return v
}

func TestDocumentChunkRepository_Integration(t *testing.T) {
	if err := godotenv.Load("../../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	db, err := database.NewGormDBFromDSN(dsn, false)
	require.NoError(t, err)
	require.NoError(t, model.Migrate(db))

	repo := NewDocumentChunkRepository(db)
	ctx := context.Background()
	doc := uuid.New()
	t.Cleanup(func() { _ = repo.DeleteByDocumentId(ctx, doc) })

	chunks := []*entity.DocumentChunk{
		{ChunkId: "chunk-0", ChunkIndex: 0, Content: "Stacks", Tokens: 1, EmbeddingValue: vector(0),
			Metadata: chunking.ChunkMetadata{Chapter: "Data Structures", Section: "Stacks", Concepts: []string{"stack"}}},
		{ChunkId: "chunk-1", ChunkIndex: 1, Content: "Queues", Tokens: 1, EmbeddingValue: vector(1),
			Metadata: chunking.ChunkMetadata{Chapter: "Data Structures", Section: "Queues"}},
	}
	require.NoError(t, repo.ReplaceDocumentChunks(ctx, doc, chunks))

	t.Run("search ranks by cosine similarity", func(t *testing.T) {
		res, err := repo.SearchSimilarWithScore(ctx, vector(1), 2, doc)
		require.NoError(t, err)
		require.Len(t, res, 2)
		assert.Equal(t, "chunk-1", res[0].Chunk.ChunkId)
		assert.InDelta(t, 1.0, res[0].Similarity, 1e-6)
	})

	t.Run("find chunk", func(t *testing.T) {
		c, err := repo.FindChunk(ctx, doc, "chunk-0")
		require.NoError(t, err)
		assert.Equal(t, []string{"stack"}, c.Metadata.Concepts)

		_, err = repo.FindChunk(ctx, doc, "chunk-7")
		assert.ErrorIs(t, err, contract.ErrChunkNotFound)
	})

	t.Run("headings in order", func(t *testing.T) {
		headings, err := repo.FindHeadings(ctx, doc)
		require.NoError(t, err)
		require.Len(t, headings, 2)
		assert.Equal(t, "Stacks", headings[0].Section)
		assert.Equal(t, "Queues", headings[1].Section)
	})

	t.Run("replace drops old rows", func(t *testing.T) {
		require.NoError(t, repo.ReplaceDocumentChunks(ctx, doc, chunks[:1]))
		all, err := repo.FindByDocumentId(ctx, doc)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})
}
