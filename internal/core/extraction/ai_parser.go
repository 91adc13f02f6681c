package extraction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/agenthands/procflow/internal/core/common"
	"github.com/agenthands/procflow/internal/core/dedupe"
	"github.com/agenthands/procflow/internal/core/model"
	"github.com/agenthands/procflow/internal/core/parser"
	"github.com/agenthands/procflow/internal/llm"
	"github.com/agenthands/procflow/internal/logger"
)

// ErrInvalidResult is returned when the model reply lacks the entities or
// relationships collections.
var ErrInvalidResult = errors.New("invalid AI parse result")

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

type aiEntity struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
	Metrics    struct {
		Frequency int `json:"frequency"`
	} `json:"metrics"`
}

type aiRelationship struct {
	ID         string         `json:"id"`
	Source     string         `json:"source"`
	Target     string         `json:"target"`
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
	Metrics    struct {
		Frequency int    `json:"frequency"`
		Timestamp string `json:"timestamp"`
	} `json:"metrics"`
}

type aiGraph struct {
	Entities      *[]aiEntity       `json:"entities"`
	Relationships *[]aiRelationship `json:"relationships"`
	Metadata      struct {
		StartTime   string `json:"startTime"`
		EndTime     string `json:"endTime"`
		TotalEvents int    `json:"totalEvents"`
	} `json:"metadata"`
}

// AIParser extracts a process graph from a log through a language model.
// A non-empty Schema is appended to every prompt.
type AIParser struct {
	LLM    llm.LLMClient
	Prompt string
	Schema string
}

func NewAIParser(client llm.LLMClient, prompt string) *AIParser {
	return &AIParser{
		LLM:    client,
		Prompt: prompt,
	}
}

// Parse sends the log to the model and converts the reply into a validated
// graph. Name variants are merged before validation; a relationship whose
// endpoint is not among the entities rejects the whole reply.
func (p *AIParser) Parse(ctx context.Context, logText string) (*model.ProcessGraph, error) {
	trimmed := strings.TrimSpace(logText)
	if trimmed == "" {
		return nil, parser.ErrEmptyInput
	}

	prompt := fmt.Sprintf(p.Prompt, trimmed)
	if p.Schema != "" {
		prompt += "\n\nThe reply must validate against this JSON Schema:\n" + p.Schema
	}
	response, err := p.LLM.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate graph: %w", err)
	}

	raw, err := common.ParseJSON[aiGraph](response)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResult, err)
	}
	if raw.Entities == nil || raw.Relationships == nil {
		return nil, fmt.Errorf("%w: missing entities or relationships", ErrInvalidResult)
	}

	g := convert(raw, trimmed)
	g = dedupe.MergeEntities(g)

	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResult, err)
	}

	logger.Debug("AI parse complete", "entities", len(g.Entities), "relationships", len(g.Relationships))
	return g, nil
}

func convert(raw aiGraph, logText string) *model.ProcessGraph {
	g := &model.ProcessGraph{
		Entities:      make([]model.Entity, 0, len(*raw.Entities)),
		Relationships: make([]model.Relationship, 0, len(*raw.Relationships)),
	}

	for _, e := range *raw.Entities {
		id := e.ID
		if id == "" {
			id = strings.ReplaceAll(strings.TrimSpace(e.Name), " ", "_")
		}
		name := e.Name
		if name == "" {
			name = parser.FormatName(id)
		}
		typ, err := model.ParseEntityType(e.Type)
		if err != nil {
			typ = model.EntityResource
		}
		props := e.Properties
		if props == nil {
			props = map[string]any{}
		}
		g.Entities = append(g.Entities, model.Entity{
			ID:         id,
			Name:       name,
			Type:       typ,
			Properties: props,
			Metrics:    model.EntityMetrics{Frequency: e.Metrics.Frequency},
		})
	}

	for _, r := range *raw.Relationships {
		typ, err := model.ParseRelationshipType(r.Type)
		if err != nil {
			typ = model.RelationAssociation
		}
		props := r.Properties
		if props == nil {
			props = map[string]any{}
		}
		rel := model.Relationship{
			ID:         r.ID,
			Source:     r.Source,
			Target:     r.Target,
			Type:       typ,
			Properties: props,
			Metrics:    model.RelationshipMetrics{Frequency: r.Metrics.Frequency},
		}
		if ts, ok := parseTime(r.Metrics.Timestamp); ok {
			rel.Metrics.Timestamp = &ts
		}
		g.Relationships = append(g.Relationships, rel)
	}

	g.Metadata.StartTime, _ = parseTime(raw.Metadata.StartTime)
	g.Metadata.EndTime, _ = parseTime(raw.Metadata.EndTime)
	g.Metadata.TotalEvents = raw.Metadata.TotalEvents
	if g.Metadata.TotalEvents <= 0 {
		g.Metadata.TotalEvents = countLines(logText)
	}
	return g
}

func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// countLines matches the local parser: every line of the trimmed log is an event.
func countLines(text string) int {
	return len(strings.Split(text, "\n"))
}
