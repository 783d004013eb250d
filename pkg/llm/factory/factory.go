package factory

import (
	"fmt"

	"github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/llm"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/llm/ollama"
	"github.com/iamfranciscoalmeida/flashly-ai-sub001/pkg/llm/openai"
)

// NewLLMProvider builds the configured backend. "none" disables the LLM and
// leaves retrieval on its local fallbacks.
func NewLLMProvider(providerType, modelName, baseURL, apiKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "ollama":
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	case "openai":
		p, err := openai.NewOpenAIProvider(apiKey, baseURL, modelName)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "none", "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
