package retrieval

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractKeywords(t *testing.T) {
	tests := []struct {
		query string
		want  []string
	}{
		{"What is the difference between recursion and iteration?", []string{"difference", "recursion", "iteration"}},
		{"Explain O(n) complexity of quicksort", []string{"complexity", "quicksort"}},
		{"is it ok", []string{}},
		{"stack STACK Stack queue", []string{"stack", "queue"}},
		{"alpha bravo charlie delta echoes foxtrot", []string{"charlie", "foxtrot", "echoes", "alpha", "bravo"}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, extractKeywords(tt.query))
		})
	}
}

func TestParseIntentResponse(t *testing.T) {
	intent, err := parseIntentResponse("Sure!\n```json\n{\"type\": \"Comparison\", \"confidence\": 1.4, \"keywords\": [\"Stack\", \"queue\", \"stack\"]}\n```")
	require.NoError(t, err)
	assert.Equal(t, IntentComparison, intent.Type)
	assert.Equal(t, 1.0, intent.Confidence)
	assert.Equal(t, []string{"stack", "queue"}, intent.Keywords)

	_, err = parseIntentResponse(`{"type": "poem", "confidence": 0.9}`)
	assert.Error(t, err)

	_, err = parseIntentResponse("no json here")
	assert.Error(t, err)
}

func TestBasicQueryExpansion(t *testing.T) {
	terms := basicQueryExpansion([]string{"algorithms", "stack"})

	assert.Contains(t, terms, "algorithm")
	assert.Contains(t, terms, "method")
	assert.Contains(t, terms, "stacks")
	assert.NotContains(t, terms, "algorithms")
	assert.LessOrEqual(t, len(terms), maxExpansionTerms)
}

func TestTitleMatchesQuery(t *testing.T) {
	tests := []struct {
		title string
		query string
		want  bool
	}{
		{"Recursion", "what is recursion?", true},
		{"Sorting Algorithms and Their Complexity", "complexity of sorting algorithms", true},
		{"Binary Trees", "how do trees balance", true},
		{"An Introduction to Graph Search in Practice", "what is graph coloring", false},
		{"Untitled", "untitled", false},
		{"Hash Tables", "what is recursion", false},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, titleMatchesQuery(tt.title, tt.query))
		})
	}
}

func TestIdentifyTargetSections(t *testing.T) {
	structure := &DocumentStructure{Chapters: []Chapter{
		{ID: "Data Structures", Title: "Data Structures", Sections: []Section{
			{ID: "Stacks", Title: "Stacks"},
			{ID: "Queues", Title: "Queues"},
		}},
	}}
	e := NewEngine(plainConfig(), &lengthEmbedder{}, nil, &fakeStore{}, fakeStructures{structure: structure}, nil, nil)

	got := e.identifyTargetSections(context.Background(), "how are stacks used in data structures", "doc-1")
	assert.Equal(t, []string{"Data Structures", "Stacks"}, got)

	broken := NewEngine(plainConfig(), &lengthEmbedder{}, nil, &fakeStore{}, fakeStructures{err: errCapability}, nil, nil)
	assert.Empty(t, broken.identifyTargetSections(context.Background(), "stacks", "doc-1"))
}

func TestUnderstandAndExpandQuery_EmbedsQueryAndExpansion(t *testing.T) {
	lm := &scriptedLLM{respond: func(prompt string) (string, error) {
		if strings.Contains(prompt, "related search terms") {
			return `["LIFO", "what is a stack", "push pop"]`, nil
		}
		return `{"type": "definition", "confidence": 0.8, "keywords": ["stack"]}`, nil
	}}
	e := NewEngine(DefaultConfig(), &lengthEmbedder{}, lm, &fakeStore{}, nil, nil, nil)

	eq, err := e.UnderstandAndExpandQuery(context.Background(), "what is a stack", "doc-1")

	require.NoError(t, err)
	assert.Equal(t, IntentDefinition, eq.Intent.Type)
	assert.Equal(t, []string{"lifo", "push pop"}, eq.ExpandedTerms)
	assert.Equal(t, []float32{float32(len("what is a stack"))}, eq.Embeddings.Original)
	assert.Equal(t, []float32{float32(len("what is a stack lifo push pop"))}, eq.Embeddings.Expanded)
	assert.Empty(t, eq.TargetSections)
}

func TestUnderstandAndExpandQuery_NoExpansion(t *testing.T) {
	e := NewEngine(Config{TopK: 8}, &lengthEmbedder{}, failingLLM(), &fakeStore{}, nil, nil, nil)

	eq, err := e.UnderstandAndExpandQuery(context.Background(), "what is a stack", "doc-1")

	require.NoError(t, err)
	assert.Empty(t, eq.ExpandedTerms)
	assert.Equal(t, eq.Embeddings.Original, eq.Embeddings.Expanded)
	assert.Equal(t, IntentUnknown, eq.Intent.Type)
	assert.Equal(t, []string{"stack"}, eq.Intent.Keywords)
}
