package model

import "time"

// Relation markers used when composing relationship ids.
const (
	MarkerAt   = "AT"
	MarkerFlow = "FLOW"
)

type RelationshipMetrics struct {
	Frequency int `json:"frequency"`
	// Timestamp is the first-seen event time.
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

type Relationship struct {
	ID         string              `json:"id"`
	Source     string              `json:"source"`
	Target     string              `json:"target"`
	Type       RelationshipType    `json:"type"`
	Properties map[string]any      `json:"properties"`
	Metrics    RelationshipMetrics `json:"metrics"`
}

// RelationshipID composes the deterministic id "<source>-<marker>-<target>".
func RelationshipID(source, marker, target string) string {
	return source + "-" + marker + "-" + target
}
