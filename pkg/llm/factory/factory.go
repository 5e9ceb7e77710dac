package factory

import (
	"fmt"

	"roboto-sai-be/pkg/llm"
	"roboto-sai-be/pkg/llm/ollama"
	"roboto-sai-be/pkg/llm/openai"
	"roboto-sai-be/pkg/llm/xai"
)

func NewLLMProvider(providerType, modelName, baseURL, apiKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "xai", "grok", "":
		return xai.NewProvider(baseURL, apiKey, modelName), nil
	case "openai":
		return openai.NewProvider(baseURL, apiKey, modelName), nil
	case "ollama":
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
