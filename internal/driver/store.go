package driver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/agenthands/procflow/internal/core/model"
	"github.com/agenthands/procflow/internal/logger"
)

var ErrRunNotFound = errors.New("run not found")

// GraphStore persists process graphs as Run, Entity and RELATES records.
// Properties travel as JSON strings and times as RFC 3339 strings.
type GraphStore struct {
	Driver GraphDriver
	now    func() time.Time
}

func NewGraphStore(d GraphDriver) *GraphStore {
	return &GraphStore{Driver: d, now: time.Now}
}

// SaveGraph writes the run node first, then its entities and relationships.
// A failed entity or relationship write removes the partial run so a later
// LoadGraph reports ErrRunNotFound instead of a truncated graph.
func (s *GraphStore) SaveGraph(ctx context.Context, runID string, g *model.ProcessGraph) error {
	entities := make([]any, 0, len(g.Entities))
	for i, e := range g.Entities {
		props, err := encodeProperties(e.Properties)
		if err != nil {
			return fmt.Errorf("entity %s: %w", e.ID, err)
		}
		entities = append(entities, map[string]any{
			"seq":        int64(i),
			"id":         e.ID,
			"name":       e.Name,
			"type":       string(e.Type),
			"frequency":  int64(e.Metrics.Frequency),
			"properties": props,
		})
	}

	rels := make([]any, 0, len(g.Relationships))
	for i, r := range g.Relationships {
		props, err := encodeProperties(r.Properties)
		if err != nil {
			return fmt.Errorf("relationship %s: %w", r.ID, err)
		}
		ts := ""
		if r.Metrics.Timestamp != nil {
			ts = formatTime(*r.Metrics.Timestamp)
		}
		rels = append(rels, map[string]any{
			"seq":        int64(i),
			"id":         r.ID,
			"source":     r.Source,
			"target":     r.Target,
			"type":       string(r.Type),
			"frequency":  int64(r.Metrics.Frequency),
			"timestamp":  ts,
			"properties": props,
		})
	}

	if _, err := s.Driver.ExecuteQuery(ctx, SaveRunQuery, map[string]any{
		"run_id":       runID,
		"created_at":   formatTime(s.now()),
		"start_time":   formatTime(g.Metadata.StartTime),
		"end_time":     formatTime(g.Metadata.EndTime),
		"total_events": int64(g.Metadata.TotalEvents),
	}); err != nil {
		return fmt.Errorf("failed to save run %s: %w", runID, err)
	}

	if _, err := s.Driver.ExecuteQuery(ctx, SaveEntitiesQuery, map[string]any{
		"run_id":   runID,
		"entities": entities,
	}); err != nil {
		s.deleteRun(ctx, runID)
		return fmt.Errorf("failed to save entities: %w", err)
	}

	if _, err := s.Driver.ExecuteQuery(ctx, SaveRelationshipsQuery, map[string]any{
		"run_id":        runID,
		"relationships": rels,
	}); err != nil {
		s.deleteRun(ctx, runID)
		return fmt.Errorf("failed to save relationships: %w", err)
	}
	return nil
}

func (s *GraphStore) deleteRun(ctx context.Context, runID string) {
	if _, err := s.Driver.ExecuteQuery(ctx, DeleteRunQuery, map[string]any{"run_id": runID}); err != nil {
		logger.Warn("Failed to remove partial run", "run_id", runID, "error", err)
	}
}

func (s *GraphStore) LoadGraph(ctx context.Context, runID string) (*model.ProcessGraph, error) {
	params := map[string]any{"run_id": runID}

	run, err := s.Driver.ExecuteQuery(ctx, GetRunQuery, params)
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", runID, err)
	}
	if len(run.Records) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	g := &model.ProcessGraph{
		Entities:      []model.Entity{},
		Relationships: []model.Relationship{},
	}
	rec := run.Records[0]
	g.Metadata.StartTime = parseTime(stringValue(rec, "start_time"))
	g.Metadata.EndTime = parseTime(stringValue(rec, "end_time"))
	g.Metadata.TotalEvents = intValue(rec, "total_events")

	entities, err := s.Driver.ExecuteQuery(ctx, GetEntitiesByRunQuery, params)
	if err != nil {
		return nil, fmt.Errorf("failed to load entities: %w", err)
	}
	for _, rec := range entities.Records {
		props, err := decodeProperties(stringValue(rec, "properties"))
		if err != nil {
			return nil, err
		}
		g.Entities = append(g.Entities, model.Entity{
			ID:         stringValue(rec, "id"),
			Name:       stringValue(rec, "name"),
			Type:       model.EntityType(stringValue(rec, "type")),
			Properties: props,
			Metrics:    model.EntityMetrics{Frequency: intValue(rec, "frequency")},
		})
	}

	rels, err := s.Driver.ExecuteQuery(ctx, GetRelationshipsByRunQuery, params)
	if err != nil {
		return nil, fmt.Errorf("failed to load relationships: %w", err)
	}
	for _, rec := range rels.Records {
		props, err := decodeProperties(stringValue(rec, "properties"))
		if err != nil {
			return nil, err
		}
		r := model.Relationship{
			ID:         stringValue(rec, "id"),
			Source:     stringValue(rec, "source"),
			Target:     stringValue(rec, "target"),
			Type:       model.RelationshipType(stringValue(rec, "type")),
			Properties: props,
			Metrics:    model.RelationshipMetrics{Frequency: intValue(rec, "frequency")},
		}
		if ts := parseTime(stringValue(rec, "timestamp")); !ts.IsZero() {
			r.Metrics.Timestamp = &ts
		}
		g.Relationships = append(g.Relationships, r)
	}
	return g, nil
}

func encodeProperties(props map[string]any) (string, error) {
	if len(props) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(props)
	if err != nil {
		return "", fmt.Errorf("failed to encode properties: %w", err)
	}
	return string(b), nil
}

func decodeProperties(raw string) (map[string]any, error) {
	props := map[string]any{}
	if raw == "" {
		return props, nil
	}
	if err := json.Unmarshal([]byte(raw), &props); err != nil {
		return nil, fmt.Errorf("failed to decode properties: %w", err)
	}
	return props, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func stringValue(rec *neo4j.Record, key string) string {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

func intValue(rec *neo4j.Record, key string) int {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return 0
	}
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case float64:
		return int(n)
	}
	return 0
}
