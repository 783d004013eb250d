package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/iamfranciscoalmeida/flashly-ai-sub001/internal/pkg/logger"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/cache"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/embedding"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/events"
)

var errEmbedderDown = errors.New("embedder down")

// letterEmbedder maps text to its 26-letter frequency vector.
type letterEmbedder struct {
	mu    sync.Mutex
	calls int
}

func (e *letterEmbedder) Generate(_ context.Context, text string, _ string) (*embedding.EmbeddingResponse, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()
	return &embedding.EmbeddingResponse{Embedding: embedding.EmbeddingResponseEmbedding{Values: letterVector(text)}}, nil
}

func letterVector(text string) []float32 {
	vec := make([]float32, 26)
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' {
			vec[r-'a']++
		}
	}
	return vec
}

type failingEmbedder struct{}

func (failingEmbedder) Generate(context.Context, string, string) (*embedding.EmbeddingResponse, error) {
	return nil, errEmbedderDown
}

type recordingEventPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingEventPublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingEventPublisher) published() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Event(nil), p.events...)
}

type recordingPublisher struct {
	payloads [][]byte
	err      error
}

func (p *recordingPublisher) Publish(_ context.Context, payload []byte) error {
	if p.err != nil {
		return p.err
	}
	p.payloads = append(p.payloads, payload)
	return nil
}

func newTestCache() *cache.Tiered {
	return cache.NewTiered(nil, cache.DefaultLayers(), logger.NewNopLogger(), nil)
}
