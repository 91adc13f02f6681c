package path

import "github.com/agenthands/procflow/internal/core/model"

// Highlighted marks what a renderer should emphasise for a critical path.
type Highlighted struct {
	Entities      map[string]bool `json:"entities"`
	Relationships []string        `json:"relationships"`
}

// Highlight marks every entity on the path and each relationship whose source
// and target are adjacent on the path, in path order.
func Highlight(path []string, relationships []model.Relationship) Highlighted {
	h := Highlighted{
		Entities:      make(map[string]bool, len(path)),
		Relationships: []string{},
	}
	for _, id := range path {
		h.Entities[id] = true
	}
	for _, r := range relationships {
		if OnPath(r, path) {
			h.Relationships = append(h.Relationships, r.ID)
		}
	}
	return h
}

// OnPath reports whether r links two consecutive path entries.
func OnPath(r model.Relationship, path []string) bool {
	for i := 0; i+1 < len(path); i++ {
		if path[i] == r.Source && path[i+1] == r.Target {
			return true
		}
	}
	return false
}
