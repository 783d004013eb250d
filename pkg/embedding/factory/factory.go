package factory

import (
	"fmt"

	"github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/embedding"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/embedding/jina"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/embedding/ollama"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/embedding/openai"
)

type Options struct {
	Provider   string
	BaseURL    string
	Model      string
	APIKey     string
	Dimensions int
}

func NewEmbeddingProvider(opts Options) (embedding.EmbeddingProvider, error) {
	switch opts.Provider {
	case "ollama", "":
		return ollama.NewOllamaProvider(opts.BaseURL, opts.Model), nil
	case "jina":
		if opts.APIKey == "" {
			return nil, fmt.Errorf("jina: api key is required")
		}
		return jina.NewJinaProvider(opts.APIKey, "", opts.Model), nil
	case "openai":
		p, err := openai.NewOpenAIProvider(opts.APIKey, opts.BaseURL, opts.Model, opts.Dimensions)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", opts.Provider)
	}
}
