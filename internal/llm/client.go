package llm

import (
	"context"
	"time"

	"github.com/agenthands/procflow/internal/config"
)

// Used when the config leaves the token budget unset.
const defaultMaxTokens = 8192

// LLMClient turns a prompt into a text completion.
type LLMClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// generation holds the per-call settings every provider applies the same way.
type generation struct {
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
}

func generationFrom(cfg config.LLMConfig) generation {
	g := generation{
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     time.Duration(cfg.TimeoutSeconds) * time.Second,
	}
	if g.maxTokens <= 0 {
		g.maxTokens = defaultMaxTokens
	}
	return g
}

func (g generation) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, g.timeout)
}
