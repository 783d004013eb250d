package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamfranciscoalmeida/flashly-ai-sub001/internal/entity"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/internal/pkg/logger"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/internal/repository/memory"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/cache"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/retrieval"
)

func TestBuildDocumentStructure(t *testing.T) {
	tests := []struct {
		name     string
		headings []entity.ChunkHeading
		want     []retrieval.Chapter
	}{
		{
			name: "empty",
			want: []retrieval.Chapter{},
		},
		{
			name: "groups sections under chapters in order",
			headings: []entity.ChunkHeading{
				{ChunkIndex: 0, Chapter: "Sorting", Section: "Merge Sort"},
				{ChunkIndex: 1, Chapter: "Sorting", Section: "Merge Sort"},
				{ChunkIndex: 2, Chapter: "Sorting", Section: "Quick Sort"},
				{ChunkIndex: 3, Chapter: "Graphs", Section: ""},
				{ChunkIndex: 4, Chapter: "", Section: "Orphan"},
			},
			want: []retrieval.Chapter{
				{ID: "Sorting", Title: "Sorting", Sections: []retrieval.Section{
					{ID: "Merge Sort", Title: "Merge Sort"},
					{ID: "Quick Sort", Title: "Quick Sort"},
				}},
				{ID: "Graphs", Title: "Graphs", Sections: []retrieval.Section{}},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildDocumentStructure(tt.headings).Chapters)
		})
	}
}

func TestDocumentSources(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewDocumentChunkRepository(time.Hour)
	c := newTestCache()
	sources := NewDocumentSources(repo, c, logger.NewNopLogger())
	documentId := uuid.New()
	seedChunks(t, repo, documentId, "merge sort", "quick sort")

	t.Run("search strips metadata unless asked", func(t *testing.T) {
		matches, err := sources.Search(ctx, retrieval.SearchRequest{
			Vector: letterVector("quick sort"),
			TopK:   1,
			Filter: retrieval.SearchFilter{DocumentID: documentId.String()},
		})
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, "chunk-1", matches[0].Chunk.ID)
		assert.InDelta(t, 1.0, matches[0].Score, 1e-6)
		assert.Empty(t, matches[0].Chunk.Metadata.Chapter)

		matches, err = sources.Search(ctx, retrieval.SearchRequest{
			Vector:          letterVector("quick sort"),
			TopK:            1,
			Filter:          retrieval.SearchFilter{DocumentID: documentId.String()},
			IncludeMetadata: true,
		})
		require.NoError(t, err)
		assert.Equal(t, "Sorting", matches[0].Chunk.Metadata.Chapter)
	})

	t.Run("search rejects malformed document id", func(t *testing.T) {
		_, err := sources.Search(ctx, retrieval.SearchRequest{Filter: retrieval.SearchFilter{DocumentID: "doc-1"}})
		assert.Error(t, err)
	})

	t.Run("find chunk", func(t *testing.T) {
		chunk, err := sources.FindChunk(ctx, documentId.String(), "chunk-0")
		require.NoError(t, err)
		require.NotNil(t, chunk)
		assert.Equal(t, "merge sort", chunk.Content)

		missing, err := sources.FindChunk(ctx, documentId.String(), "chunk-9")
		assert.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("structure goes through the summaries layer", func(t *testing.T) {
		structure, err := sources.DocumentStructure(ctx, documentId.String())
		require.NoError(t, err)
		require.Len(t, structure.Chapters, 1)
		assert.Len(t, structure.Chapters[0].Sections, 2)

		_, err = sources.DocumentStructure(ctx, documentId.String())
		require.NoError(t, err)
		assert.Equal(t, int64(1), c.Stats()[cache.LayerSummaries].Hits)
	})
}

func TestDocumentSources_WarmStructure(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewDocumentChunkRepository(time.Hour)
	c := newTestCache()
	sources := NewDocumentSources(repo, c, logger.NewNopLogger())
	documentId := uuid.New()
	seedChunks(t, repo, documentId, "merge sort")

	require.NoError(t, sources.WarmStructure(ctx, documentId.String()))

	var structure retrieval.DocumentStructure
	require.True(t, c.Get(ctx, structureCacheKey(documentId.String()), cache.LayerSummaries, &structure))
	assert.Equal(t, "Sorting", structure.Chapters[0].Title)

	assert.NoError(t, NewDocumentSources(repo, nil, logger.NewNopLogger()).WarmStructure(ctx, documentId.String()))
}
