package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/liushuangls/go-anthropic/v2"

	"github.com/agenthands/procflow/internal/config"
)

type ClaudeClient struct {
	client *anthropic.Client
	gen    generation
}

func NewClaudeClient(cfg config.LLMConfig) *ClaudeClient {
	var opts []anthropic.ClientOption
	if cfg.BaseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
	}
	return &ClaudeClient{
		client: anthropic.NewClient(cfg.APIKey, opts...),
		gen:    generationFrom(cfg),
	}
}

func (c *ClaudeClient) request(prompt string) anthropic.MessagesRequest {
	temperature := c.gen.temperature
	return anthropic.MessagesRequest{
		Model:       anthropic.Model(c.gen.model),
		MaxTokens:   c.gen.maxTokens,
		Temperature: &temperature,
		Messages:    []anthropic.Message{anthropic.NewUserTextMessage(prompt)},
	}
}

// Generate joins every text block of the reply.
func (c *ClaudeClient) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := c.gen.bound(ctx)
	defer cancel()

	resp, err := c.client.CreateMessages(ctx, c.request(prompt))
	if err != nil {
		return "", fmt.Errorf("claude messages (%s): %w", c.gen.model, err)
	}
	if resp.StopReason == anthropic.MessagesStopReasonMaxTokens {
		return "", fmt.Errorf("claude reply truncated at %d tokens", c.gen.maxTokens)
	}

	var sb strings.Builder
	for _, content := range resp.Content {
		if content.Text != nil {
			sb.WriteString(*content.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("no text content in %d blocks", len(resp.Content))
	}
	return sb.String(), nil
}
