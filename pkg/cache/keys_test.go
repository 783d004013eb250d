package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildKey(t *testing.T) {
	id := uuid.MustParse("5336a88a-35bd-4a19-b7e0-363828359b79")

	tests := []struct {
		name  string
		parts []any
		want  string
	}{
		{"prefix only", nil, "retrieve"},
		{"scalars", []any{"doc", 3, true, 0.5}, "retrieve:doc:3:true:0.5"},
		{"stringer", []any{id}, "retrieve:5336a88a-35bd-4a19-b7e0-363828359b79"},
		{"objects as json", []any{map[string]int{"topK": 5}}, `retrieve:{"topK":5}`},
		{"nil", []any{nil}, "retrieve:null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildKey("retrieve", tt.parts...))
		})
	}
}

func TestHashKey(t *testing.T) {
	a := HashKey("what is recursion?")
	b := HashKey("what is recursion?")
	c := HashKey("what is iteration?")

	assert.Len(t, a, 64)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestGlobToRegexp(t *testing.T) {
	re, err := globToRegexp("doc.1:*:v?")
	require.NoError(t, err)

	assert.True(t, re.MatchString("doc.1:abc:v2"))
	assert.False(t, re.MatchString("docx1:abc:v2"))
	assert.False(t, re.MatchString("doc.1:abc:v22"))
}

func TestRemoteGlob(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
	}{
		{"doc:*", "doc:*"},
		{"doc[1]:?", `doc\[1\]:?`},
		{`a\b*`, `a\\b*`},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			assert.Equal(t, tt.want, remoteGlob(tt.pattern))
		})
	}
}

func TestCached(t *testing.T) {
	ctx := context.Background()
	c := NewTiered(nil, smallLayers(), nil, nil)

	calls := 0
	square := Cached(c, LayerEmbeddings, func(n int) string { return BuildKey("square", n) }, 0,
		func(_ context.Context, n int) (int, error) {
			calls++
			if n < 0 {
				return 0, errors.New("negative")
			}
			return n * n, nil
		})

	v, err := square(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, 16, v)

	v, err = square(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, 16, v)
	assert.Equal(t, 1, calls)

	_, err = square(ctx, -1)
	assert.Error(t, err)
	_, _ = square(ctx, -1)
	assert.Equal(t, 3, calls)
}
