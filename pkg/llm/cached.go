package llm

import (
	"context"
	"time"

	"github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/cache"
)

type chatCall struct {
	History []Message `json:"history"`
	Options Options   `json:"options"`
	opts    []Option
}

// CachedProvider serves repeated prompts from the generation cache layer.
// Options are part of the key, so the same prompt at a different
// temperature or model is a separate entry.
type CachedProvider struct {
	inner LLMProvider
	chat  func(context.Context, chatCall) (string, error)
}

var _ LLMProvider = &CachedProvider{}

func NewCachedProvider(inner LLMProvider, c *cache.Tiered, ttl time.Duration) *CachedProvider {
	p := &CachedProvider{inner: inner}
	p.chat = cache.Cached(c, cache.LayerGeneration,
		func(call chatCall) string {
			return cache.BuildKey("llm", cache.HashKey(call))
		},
		ttl,
		func(ctx context.Context, call chatCall) (string, error) {
			return inner.Chat(ctx, call.History, call.opts...)
		},
	)
	return p
}

func (p *CachedProvider) Chat(ctx context.Context, history []Message, opts ...Option) (string, error) {
	return p.chat(ctx, chatCall{
		History: history,
		Options: Apply(Options{}, opts...),
		opts:    opts,
	})
}

func (p *CachedProvider) Generate(ctx context.Context, prompt string, opts ...Option) (string, error) {
	return p.Chat(ctx, []Message{{Role: "user", Content: prompt}}, opts...)
}
