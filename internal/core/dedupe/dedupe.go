package dedupe

import (
	"regexp"
	"strings"

	"github.com/agenthands/procflow/internal/core/model"
)

var (
	shipName       = regexp.MustCompile(`^s\d+|starship s\d+`)
	shipNumber     = regexp.MustCompile(`s(\d+)`)
	boosterName    = regexp.MustCompile(`^b\d+|booster b\d+`)
	boosterNumber  = regexp.MustCompile(`b(\d+)`)
	leadingArticle = regexp.MustCompile(`^(the|a|an) `)

	shipRole    = regexp.MustCompile(`(?i)^s\d+|starship`)
	boosterRole = regexp.MustCompile(`(?i)^b\d+|booster`)
)

// NormalizeName maps spelling variants of the same entity to one key:
// "Starship S28" and "S28" both become "s28".
func NormalizeName(name string) string {
	n := strings.ToLower(strings.Join(strings.Fields(name), " "))
	if n == "" {
		return ""
	}

	if strings.Contains(n, "heat shield") {
		return "heat shield"
	}
	if shipName.MatchString(n) {
		if m := shipNumber.FindStringSubmatch(n); m != nil {
			return "s" + m[1]
		}
	}
	if boosterName.MatchString(n) {
		if m := boosterNumber.FindStringSubmatch(n); m != nil {
			return "b" + m[1]
		}
	}

	return leadingArticle.ReplaceAllString(n, "")
}

// MergeEntities collapses entities whose names normalize to the same key.
// Frequencies are summed, properties merged with later values winning, and
// relationship endpoints rewritten to the surviving entity ids. Relationships
// sharing an id are collapsed with summed frequency. The input is not modified.
func MergeEntities(g *model.ProcessGraph) *model.ProcessGraph {
	out := &model.ProcessGraph{
		Entities:      make([]model.Entity, 0, len(g.Entities)),
		Relationships: make([]model.Relationship, 0, len(g.Relationships)),
		Metadata:      g.Metadata,
	}

	byKey := make(map[string]int)
	canonical := make(map[string]string, len(g.Entities))

	for _, e := range g.Entities {
		key := NormalizeName(e.Name)
		if key == "" {
			key = NormalizeName(e.ID)
		}
		freq := e.Metrics.Frequency
		if freq < 1 {
			freq = 1
		}

		if idx, ok := byKey[key]; ok {
			kept := &out.Entities[idx]
			kept.Metrics.Frequency += freq
			for k, v := range e.Properties {
				kept.Properties[k] = v
			}
			canonical[e.ID] = kept.ID
			continue
		}

		merged := e
		merged.Metrics.Frequency = freq
		merged.Properties = make(map[string]any, len(e.Properties)+1)
		for k, v := range e.Properties {
			merged.Properties[k] = v
		}
		fillRole(&merged)

		byKey[key] = len(out.Entities)
		canonical[e.ID] = merged.ID
		out.Entities = append(out.Entities, merged)
	}

	relIndex := make(map[string]int)
	for _, r := range g.Relationships {
		if id, ok := canonical[r.Source]; ok {
			r.Source = id
		}
		if id, ok := canonical[r.Target]; ok {
			r.Target = id
		}
		if r.ID == "" {
			r.ID = model.RelationshipID(r.Source, string(r.Type), r.Target)
		}
		if r.Metrics.Frequency < 1 {
			r.Metrics.Frequency = 1
		}

		if idx, ok := relIndex[r.ID]; ok {
			out.Relationships[idx].Metrics.Frequency += r.Metrics.Frequency
			continue
		}
		relIndex[r.ID] = len(out.Relationships)
		out.Relationships = append(out.Relationships, r)
	}

	return out
}

func fillRole(e *model.Entity) {
	if e.Type != model.EntityVehicle {
		return
	}
	if _, ok := e.Properties["role"]; ok {
		return
	}
	switch {
	case shipRole.MatchString(e.Name):
		e.Properties["role"] = "ship"
	case boosterRole.MatchString(e.Name):
		e.Properties["role"] = "booster"
	}
}
