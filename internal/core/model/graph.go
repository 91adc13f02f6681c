package model

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidGraph = errors.New("invalid process graph")

type Metadata struct {
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	TotalEvents int       `json:"totalEvents"`
}

// ProcessGraph is built once per parse and never mutated afterwards.
type ProcessGraph struct {
	Entities      []Entity       `json:"entities"`
	Relationships []Relationship `json:"relationships"`
	Metadata      Metadata       `json:"metadata"`
}

// EntityIndex maps entity ids to their position in Entities.
func (g *ProcessGraph) EntityIndex() map[string]int {
	idx := make(map[string]int, len(g.Entities))
	for i, e := range g.Entities {
		idx[e.ID] = i
	}
	return idx
}

// Validate checks id uniqueness and that every relationship endpoint is a known entity.
func (g *ProcessGraph) Validate() error {
	if g == nil {
		return fmt.Errorf("%w: nil graph", ErrInvalidGraph)
	}
	seen := make(map[string]bool, len(g.Entities))
	for _, e := range g.Entities {
		if e.ID == "" {
			return fmt.Errorf("%w: entity with empty id", ErrInvalidGraph)
		}
		if seen[e.ID] {
			return fmt.Errorf("%w: duplicate entity id %q", ErrInvalidGraph, e.ID)
		}
		seen[e.ID] = true
	}

	relSeen := make(map[string]bool, len(g.Relationships))
	for _, r := range g.Relationships {
		if relSeen[r.ID] {
			return fmt.Errorf("%w: duplicate relationship id %q", ErrInvalidGraph, r.ID)
		}
		relSeen[r.ID] = true
		if !seen[r.Source] {
			return fmt.Errorf("%w: relationship %q has unknown source %q", ErrInvalidGraph, r.ID, r.Source)
		}
		if !seen[r.Target] {
			return fmt.Errorf("%w: relationship %q has unknown target %q", ErrInvalidGraph, r.ID, r.Target)
		}
	}
	return nil
}
