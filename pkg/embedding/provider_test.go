package embedding

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/cache"
)

func TestNormalize(t *testing.T) {
	assert.InDeltaSlice(t, []float32{0.6, 0.8}, Normalize([]float32{3, 4}), 1e-6)
	assert.Equal(t, []float32{0, 0}, Normalize([]float32{0, 0}))
}

type countingEmbedder struct {
	calls int
	err   error
}

func (c *countingEmbedder) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return &EmbeddingResponse{Embedding: EmbeddingResponseEmbedding{Values: []float32{float32(len(text))}}}, nil
}

func TestCachedProvider(t *testing.T) {
	inner := &countingEmbedder{}
	p := NewCachedProvider(inner, cache.NewTiered(nil, nil, nil, nil), "test-model", 0)
	ctx := context.Background()

	a, err := p.Generate(ctx, "stack", TaskRetrievalQuery)
	require.NoError(t, err)
	b, err := p.Generate(ctx, "stack", TaskRetrievalQuery)
	require.NoError(t, err)
	assert.Equal(t, a.Embedding.Values, b.Embedding.Values)
	assert.Equal(t, 1, inner.calls)

	_, err = p.Generate(ctx, "stack", TaskRetrievalDocument)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedProvider_PassesErrors(t *testing.T) {
	inner := &countingEmbedder{err: errors.New("down")}
	p := NewCachedProvider(inner, cache.NewTiered(nil, nil, nil, nil), "test-model", 0)

	_, err := p.Generate(context.Background(), "stack", TaskRetrievalQuery)
	assert.Error(t, err)
}
