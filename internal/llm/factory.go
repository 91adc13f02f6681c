package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/agenthands/procflow/internal/config"
	"github.com/agenthands/procflow/internal/logger"
)

// NewClient builds the completion client named by cfg.Provider.
func NewClient(ctx context.Context, cfg config.LLMConfig) (LLMClient, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))

	switch provider {
	case "openai":
		return NewOpenAIClient(cfg), nil

	case "gemini":
		return NewGeminiClient(ctx, cfg)

	case "claude", "anthropic":
		return NewClaudeClient(cfg), nil

	case "ollama":
		cfg.BaseURL = ollamaBaseURL(cfg.BaseURL)
		logger.Info("Using Ollama through its OpenAI-compatible API", "base_url", cfg.BaseURL, "model", cfg.Model)

		// Ollama ignores the key but the client refuses an empty one.
		if cfg.APIKey == "" {
			cfg.APIKey = "ollama"
		}
		return NewOpenAIClient(cfg), nil

	default:
		return nil, fmt.Errorf("unsupported llm provider: %q", cfg.Provider)
	}
}

func ollamaBaseURL(base string) string {
	if base == "" {
		base = "http://localhost:11434"
	}
	base = strings.TrimRight(base, "/")
	if strings.HasSuffix(base, "/v1") {
		return base
	}
	return base + "/v1"
}
