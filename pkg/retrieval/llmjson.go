package retrieval

import (
	"encoding/json"
	"fmt"
	"strings"
)

// decodeLLMJSON strips markdown fences and surrounding prose from an LLM
// reply and decodes the outermost JSON value delimited by open/close.
func decodeLLMJSON(response string, open, close byte, dest any) error {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	response = strings.TrimSpace(response)

	start := strings.IndexByte(response, open)
	end := strings.LastIndexByte(response, close)
	if start < 0 || end <= start {
		return fmt.Errorf("no JSON %c...%c in response", open, close)
	}

	if err := json.Unmarshal([]byte(response[start:end+1]), dest); err != nil {
		return fmt.Errorf("decode llm response: %w", err)
	}
	return nil
}
