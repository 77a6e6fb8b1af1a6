package factory

import (
	"context"
	"fmt"
	"time"

	"vegan-agent-be/pkg/llm"
	"vegan-agent-be/pkg/llm/gemini"
	"vegan-agent-be/pkg/llm/ollama"
	"vegan-agent-be/pkg/llm/openai"
)

// Settings are the non-secret knobs shared by every backend.
type Settings struct {
	Model         string
	Temperature   float64
	Timeout       time.Duration
	OllamaBaseURL string
	OpenAIBaseURL string
}

// NewVisionProvider builds the backend named by providerType. apiKey must
// already be resolved; ollama ignores it.
func NewVisionProvider(ctx context.Context, providerType, apiKey string, s Settings) (llm.VisionProvider, error) {
	switch providerType {
	case "gemini", "":
		p, err := gemini.NewGeminiProvider(ctx, apiKey, s.Model, s.Temperature)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "openai":
		p, err := openai.NewOpenAIProvider(apiKey, s.Model, s.OpenAIBaseURL, s.Temperature)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "ollama":
		baseURL := s.OllamaBaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, s.Model, s.Temperature, s.Timeout), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
