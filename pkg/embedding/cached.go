package embedding

import (
	"context"
	"time"

	"github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/cache"
)

type embedCall struct {
	Text     string `json:"text"`
	TaskType string `json:"taskType"`
}

// CachedProvider keeps embeddings in the embeddings cache layer, keyed by
// model, task type and a hash of the text.
type CachedProvider struct {
	generate func(context.Context, embedCall) (*EmbeddingResponse, error)
}

var _ EmbeddingProvider = &CachedProvider{}

func NewCachedProvider(inner EmbeddingProvider, c *cache.Tiered, model string, ttl time.Duration) *CachedProvider {
	return &CachedProvider{
		generate: cache.Cached(c, cache.LayerEmbeddings,
			func(call embedCall) string {
				return cache.BuildKey("embed", model, call.TaskType, cache.HashKey(call.Text))
			},
			ttl,
			func(ctx context.Context, call embedCall) (*EmbeddingResponse, error) {
				return inner.Generate(ctx, call.Text, call.TaskType)
			},
		),
	}
}

func (p *CachedProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	return p.generate(ctx, embedCall{Text: text, TaskType: taskType})
}
