package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamfranciscoalmeida/flashly-ai-sub001/internal/dto"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/internal/pkg/logger"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/internal/repository/memory"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/cache"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/chunking"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/embedding"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/events"
)

const sampleDocument = `# Sorting

## Merge Sort

Merge sort splits the input in halves, sorts each half recursively and merges the results.

## Quick Sort

Quick sort picks a pivot and partitions the input around it.`

const testTopic = "INDEX_DOCUMENT_TEST"

type consumerFixture struct {
	repo      *memory.DocumentChunkRepository
	cache     *cache.Tiered
	events    *recordingEventPublisher
	consumer  *consumerService
	embedder  embedding.EmbeddingProvider
	publisher IPublisherService
	pubSub    *gochannel.GoChannel
}

func newConsumerFixture(t *testing.T, embedder embedding.EmbeddingProvider) *consumerFixture {
	t.Helper()
	log := logger.NewNopLogger()
	repo := memory.NewDocumentChunkRepository(time.Hour)
	c := newTestCache()
	sources := NewDocumentSources(repo, c, log)
	evts := &recordingEventPublisher{}
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
	t.Cleanup(func() { _ = pubSub.Close() })

	consumer := NewConsumerService(
		pubSub,
		testTopic,
		repo,
		chunking.NewChunker(chunking.DefaultConfig(), nil, log),
		embedder,
		NewCacheService(c, sources, "instance-a", log),
		evts,
		"instance-a",
		log,
	).(*consumerService)

	return &consumerFixture{
		repo:      repo,
		cache:     c,
		events:    evts,
		consumer:  consumer,
		embedder:  embedder,
		publisher: NewPublisherService(testTopic, pubSub),
		pubSub:    pubSub,
	}
}

func indexMessage(t *testing.T, documentId uuid.UUID, content string) *message.Message {
	t.Helper()
	payload, err := json.Marshal(dto.PublishIndexDocumentMessage{DocumentId: documentId, Content: content})
	require.NoError(t, err)
	return message.NewMessage(watermill.NewUUID(), payload)
}

func acked(msg *message.Message) bool {
	select {
	case <-msg.Acked():
		return true
	default:
		return false
	}
}

func nacked(msg *message.Message) bool {
	select {
	case <-msg.Nacked():
		return true
	default:
		return false
	}
}

func TestConsumerService_IndexesQueuedDocument(t *testing.T) {
	f := newConsumerFixture(t, &letterEmbedder{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, f.consumer.Consume(ctx))

	documentId := uuid.New()
	staleKey := retrievalCacheKey(documentId.String(), "merge sort")
	require.NoError(t, f.cache.Set(ctx, staleKey, cache.LayerRetrieval, "stale", 0))

	indexing := NewIndexingService(f.publisher, f.consumer.chunker, f.repo, logger.NewNopLogger())
	res, err := indexing.Enqueue(ctx, documentId, &dto.IndexDocumentRequest{Content: sampleDocument})
	require.NoError(t, err)
	assert.Equal(t, IndexStatusQueued, res.Status)

	require.Eventually(t, func() bool {
		return len(f.events.published()) == 1
	}, 5*time.Second, 10*time.Millisecond)

	stored, err := f.repo.FindByDocumentId(ctx, documentId)
	require.NoError(t, err)
	require.NotEmpty(t, stored)
	for i, row := range stored {
		assert.Equal(t, chunking.ChunkID(i), row.ChunkId)
		assert.Len(t, row.EmbeddingValue, 26)
	}

	evt := f.events.published()[0]
	assert.Equal(t, events.DocumentIndexed, evt.EventType())
	assert.Equal(t, documentId.String(), events.StringField(evt, "document_id"))
	assert.Equal(t, "instance-a", events.StringField(evt, "origin"))

	var stale string
	assert.False(t, f.cache.Get(ctx, staleKey, cache.LayerRetrieval, &stale))

	var structure json.RawMessage
	assert.True(t, f.cache.Get(ctx, structureCacheKey(documentId.String()), cache.LayerSummaries, &structure))
	assert.Contains(t, string(structure), "Sorting")
}

func TestConsumerService_ReplacesPreviousChunks(t *testing.T) {
	f := newConsumerFixture(t, &letterEmbedder{})
	ctx := context.Background()
	documentId := uuid.New()

	first := indexMessage(t, documentId, sampleDocument)
	f.consumer.processMessage(ctx, first)
	require.True(t, acked(first))

	second := indexMessage(t, documentId, "A single short paragraph.")
	f.consumer.processMessage(ctx, second)
	require.True(t, acked(second))

	stored, err := f.repo.FindByDocumentId(ctx, documentId)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Contains(t, stored[0].Content, "single short paragraph")
}

func TestConsumerService_AcksInvalidPayload(t *testing.T) {
	f := newConsumerFixture(t, &letterEmbedder{})

	tests := []struct {
		name    string
		payload []byte
	}{
		{"not json", []byte("not json")},
		{"missing document", []byte(`{"content":"text"}`)},
		{"blank content", []byte(`{"document_id":"` + uuid.NewString() + `","content":"  "}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := message.NewMessage(watermill.NewUUID(), tt.payload)
			f.consumer.processMessage(context.Background(), msg)
			assert.True(t, acked(msg))
			assert.Empty(t, f.events.published())
		})
	}
}

func TestConsumerService_NacksEmbeddingFailure(t *testing.T) {
	f := newConsumerFixture(t, failingEmbedder{})
	documentId := uuid.New()

	msg := indexMessage(t, documentId, sampleDocument)
	f.consumer.processMessage(context.Background(), msg)

	assert.True(t, nacked(msg))
	assert.False(t, acked(msg))
	stored, err := f.repo.FindByDocumentId(context.Background(), documentId)
	require.NoError(t, err)
	assert.Empty(t, stored)
	assert.Empty(t, f.events.published())
}
