package summary

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/agenthands/procflow/internal/config"
	"github.com/agenthands/procflow/internal/core/common"
	"github.com/agenthands/procflow/internal/core/model"
	"github.com/agenthands/procflow/internal/llm"
	"github.com/agenthands/procflow/internal/logger"
)

const DefaultChunkSize = 20

var errNoSummaries = errors.New("every chunk failed to summarize")

type clusterSummary struct {
	Summary string `json:"summary"`
}

type clusterName struct {
	Name string `json:"name"`
}

// Summarizer describes entity clusters in prose through a language model.
type Summarizer struct {
	LLM       llm.LLMClient
	Prompts   config.SummaryPrompts
	ChunkSize int
}

func NewSummarizer(llmClient llm.LLMClient, prompts config.SummaryPrompts) *Summarizer {
	return &Summarizer{
		LLM:       llmClient,
		Prompts:   prompts,
		ChunkSize: DefaultChunkSize,
	}
}

// SummarizeCluster describes what a group of entities was doing. Each member
// is listed with the actions of its relationships; large clusters are
// summarized in chunks and the partial summaries reduced again.
func (s *Summarizer) SummarizeCluster(ctx context.Context, members []model.Entity, relationships []model.Relationship) (string, error) {
	if len(members) == 0 {
		return "", nil
	}

	actions := make(map[string][]string)
	for _, r := range relationships {
		action, ok := r.Properties["action"].(string)
		if !ok || action == "" {
			continue
		}
		if !containsString(actions[r.Source], action) {
			actions[r.Source] = append(actions[r.Source], action)
		}
	}

	lines := make([]string, 0, len(members))
	for _, e := range members {
		acts := actions[e.ID]
		sort.Strings(acts)
		line := fmt.Sprintf("- %s (%s)", e.Name, e.Type)
		if len(acts) > 0 {
			line += ": " + strings.Join(acts, "; ")
		}
		lines = append(lines, line)
	}
	return s.summarizeLines(ctx, lines)
}

func (s *Summarizer) summarizeLines(ctx context.Context, lines []string) (string, error) {
	size := s.ChunkSize
	if size < 2 {
		size = DefaultChunkSize
	}

	if len(lines) <= size {
		prompt := fmt.Sprintf(s.Prompts.Cluster, strings.Join(lines, "\n"))
		response, err := s.LLM.Generate(ctx, prompt)
		if err != nil {
			return "", fmt.Errorf("failed to generate cluster summary: %w", err)
		}
		if result, err := common.ParseJSON[clusterSummary](response); err == nil && result.Summary != "" {
			return result.Summary, nil
		}
		return strings.TrimSpace(response), nil
	}

	var parts []string
	for i := 0; i < len(lines); i += size {
		end := min(i+size, len(lines))
		part, err := s.summarizeLines(ctx, lines[i:end])
		if err != nil {
			logger.Warn("Skipping cluster chunk", "from", i, "to", end, "error", err)
			continue
		}
		parts = append(parts, fmt.Sprintf("- Part %d: %s", len(parts)+1, part))
	}
	if len(parts) == 0 {
		return "", errNoSummaries
	}
	return s.summarizeLines(ctx, parts)
}

// NameCluster turns a summary into a short label. An empty prompt disables naming.
func (s *Summarizer) NameCluster(ctx context.Context, summary string) (string, error) {
	if s.Prompts.ClusterName == "" {
		return "", nil
	}

	response, err := s.LLM.Generate(ctx, fmt.Sprintf(s.Prompts.ClusterName, summary))
	if err != nil {
		return "", fmt.Errorf("failed to generate cluster name: %w", err)
	}
	if result, err := common.ParseJSON[clusterName](response); err == nil && result.Name != "" {
		return result.Name, nil
	}
	return strings.Trim(strings.TrimSpace(response), `"`), nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
