package factory

import (
	"context"
	"fmt"

	"oracle-assistant-be/pkg/llm"
	"oracle-assistant-be/pkg/llm/gemini"
	"oracle-assistant-be/pkg/llm/ollama"
	"oracle-assistant-be/pkg/llm/openai"
)

type ProviderConfig struct {
	Provider      string // "gemini", "openai" or "ollama"
	Model         string
	GeminiAPIKey  string
	OpenAIAPIKey  string
	OllamaBaseURL string
}

func NewLLMProvider(ctx context.Context, cfg ProviderConfig) (llm.LLMProvider, error) {
	switch cfg.Provider {
	case "gemini", "":
		return gemini.NewGeminiProvider(ctx, cfg.GeminiAPIKey, cfg.Model)
	case "openai":
		return openai.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.Model, "")
	case "ollama":
		baseURL := cfg.OllamaBaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		return ollama.NewOllamaProvider(baseURL, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
