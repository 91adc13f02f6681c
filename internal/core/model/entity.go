package model

type EntityMetrics struct {
	Frequency int `json:"frequency"`
}

type Entity struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Type       EntityType     `json:"type"`
	Properties map[string]any `json:"properties"`
	Metrics    EntityMetrics  `json:"metrics"`
}

// NewEntity returns an entity with empty properties and zero frequency.
func NewEntity(id, name string, typ EntityType) *Entity {
	return &Entity{
		ID:         id,
		Name:       name,
		Type:       typ,
		Properties: map[string]any{},
	}
}
