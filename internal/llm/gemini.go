package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/agenthands/procflow/internal/config"
)

var errNoCandidates = errors.New("no response candidates or content")

type GeminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
	gen    generation
}

func NewGeminiClient(ctx context.Context, cfg config.LLMConfig) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, err
	}

	gen := generationFrom(cfg)
	model := client.GenerativeModel(gen.model)
	model.SetTemperature(gen.temperature)
	model.SetMaxOutputTokens(int32(gen.maxTokens))
	return &GeminiClient{client: client, model: model, gen: gen}, nil
}

func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := c.gen.bound(ctx)
	defer cancel()

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate (%s): %w", c.gen.model, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errNoCandidates
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	if sb.Len() == 0 {
		return "", errNoCandidates
	}
	return sb.String(), nil
}

// Close releases the underlying gRPC connection.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}
