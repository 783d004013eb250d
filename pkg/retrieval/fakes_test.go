package retrieval

import (
	"context"
	"errors"
	"sync"

	"github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/chunking"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/embedding"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/llm"
)

var errCapability = errors.New("capability unavailable")

// lengthEmbedder embeds text as a one-dimensional vector holding its length,
// which lets fakeStore tell the original query from the expanded one.
type lengthEmbedder struct {
	err error
}

func (f *lengthEmbedder) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{float32(len(text))}},
	}, nil
}

type scriptedLLM struct {
	mu      sync.Mutex
	respond func(prompt string) (string, error)
	prompts []string
}

func (f *scriptedLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	return f.respond(prompt)
}

func (f *scriptedLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	if len(history) == 0 {
		return "", errCapability
	}
	return f.Generate(ctx, history[len(history)-1].Content, options...)
}

func failingLLM() *scriptedLLM {
	return &scriptedLLM{respond: func(string) (string, error) { return "", errCapability }}
}

type fakeStore struct {
	mu           sync.Mutex
	primary      float32
	primaryRes   []SearchMatch
	primaryErr   error
	secondaryRes []SearchMatch
	secondaryErr error
	requests     []SearchRequest
}

func (f *fakeStore) Search(ctx context.Context, req SearchRequest) ([]SearchMatch, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if len(req.Vector) > 0 && req.Vector[0] == f.primary {
		return f.primaryRes, f.primaryErr
	}
	return f.secondaryRes, f.secondaryErr
}

func (f *fakeStore) request(topK int) (SearchRequest, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.requests {
		if r.TopK == topK {
			return r, true
		}
	}
	return SearchRequest{}, false
}

type fakeChunks map[string]chunking.SmartChunk

func (f fakeChunks) FindChunk(ctx context.Context, documentID, chunkID string) (*chunking.SmartChunk, error) {
	ch, ok := f[chunkID]
	if !ok {
		return nil, errors.New("chunk not found")
	}
	return &ch, nil
}

type fakeStructures struct {
	structure *DocumentStructure
	err       error
}

func (f fakeStructures) DocumentStructure(ctx context.Context, documentID string) (*DocumentStructure, error) {
	return f.structure, f.err
}

func match(id string, score float64) SearchMatch {
	return SearchMatch{Chunk: smartChunk(id, "Content of "+id+"."), Score: score}
}

func smartChunk(id, content string) chunking.SmartChunk {
	return chunking.SmartChunk{
		ID:      id,
		Content: content,
		Tokens:  10,
		Metadata: chunking.ChunkMetadata{
			Chapter: chunking.UntitledHeading,
			Section: chunking.UntitledHeading,
		},
	}
}

func enhanced(id string, score float64) EnhancedChunk {
	return EnhancedChunk{SmartChunk: smartChunk(id, "Content of "+id+"."), Score: score}
}

func ids(chunks []EnhancedChunk) []string {
	out := make([]string, len(chunks))
	for i, ch := range chunks {
		out[i] = ch.ID
	}
	return out
}

func plainConfig() Config {
	return Config{TopK: 8}
}
