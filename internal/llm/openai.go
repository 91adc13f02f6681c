package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/agenthands/procflow/internal/config"
)

var errNoChoices = errors.New("no response choices")

// OpenAIClient also serves any OpenAI-compatible endpoint, Ollama included.
type OpenAIClient struct {
	client *openai.Client
	gen    generation
}

func NewOpenAIClient(cfg config.LLMConfig) *OpenAIClient {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(oc),
		gen:    generationFrom(cfg),
	}
}

func (c *OpenAIClient) request(prompt string) openai.ChatCompletionRequest {
	return openai.ChatCompletionRequest{
		Model:       c.gen.model,
		Temperature: c.gen.temperature,
		MaxTokens:   c.gen.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
}

func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := c.gen.bound(ctx)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, c.request(prompt))
	if err != nil {
		return "", fmt.Errorf("openai completion (%s): %w", c.gen.model, err)
	}
	if len(resp.Choices) == 0 {
		return "", errNoChoices
	}
	if resp.Choices[0].FinishReason == openai.FinishReasonLength {
		return "", fmt.Errorf("openai completion truncated at %d tokens", c.gen.maxTokens)
	}
	return resp.Choices[0].Message.Content, nil
}
