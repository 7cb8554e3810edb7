package services

import (
	"context"
	"fmt"
	"io"

	"linguamentor/backend/internal/config"
)

type GenerateOptions struct {
	Temperature float32
	MaxTokens   int
	// JSON asks the model for a JSON object response.
	JSON bool
}

// AIProvider transcribes audio and generates text. Both calls go to an
// external service and carry no retry of their own.
type AIProvider interface {
	Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error)
	GenerateText(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}

// NewAIProvider picks the provider named by cfg.Provider.
func NewAIProvider(ctx context.Context, cfg config.AIConfig) (AIProvider, error) {
	switch cfg.Provider {
	case "", "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for the openai provider")
		}
		return NewOpenAIService(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.TranscriptionModel, cfg.ChatModel), nil
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required for the gemini provider")
		}
		return NewGeminiService(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", cfg.Provider)
	}
}
