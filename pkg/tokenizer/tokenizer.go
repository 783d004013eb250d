package tokenizer

import (
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// Tokenizer counts model tokens for a piece of text.
type Tokenizer interface {
	CountTokens(text string) (int, error)
}

const DefaultEncoding = "cl100k_base"

// Tiktoken is a BPE tokenizer backed by tiktoken-go. The encoding is loaded
// on first use; a load failure is returned from every CountTokens call.
type Tiktoken struct {
	encoding string

	once    sync.Once
	enc     *tiktoken.Tiktoken
	loadErr error
}

var _ Tokenizer = (*Tiktoken)(nil)

func NewTiktoken(encoding string) *Tiktoken {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	return &Tiktoken{encoding: encoding}
}

func (t *Tiktoken) CountTokens(text string) (int, error) {
	t.once.Do(func() {
		t.enc, t.loadErr = tiktoken.GetEncoding(t.encoding)
	})
	if t.loadErr != nil {
		return 0, fmt.Errorf("load encoding %s: %w", t.encoding, t.loadErr)
	}
	return len(t.enc.Encode(text, nil, nil)), nil
}

// Approximate estimates tokens as one per four characters, rounded up.
func Approximate(text string) int {
	n := utf8.RuneCountInString(text)
	return (n + 3) / 4
}

// Count asks tok for a token count and falls back to Approximate when the
// tokenizer is nil or fails.
func Count(tok Tokenizer, text string) int {
	if tok == nil {
		return Approximate(text)
	}
	n, err := tok.CountTokens(text)
	if err != nil {
		return Approximate(text)
	}
	return n
}
