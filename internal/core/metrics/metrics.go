package metrics

import (
	"sort"

	"github.com/agenthands/procflow/internal/core/model"
	"github.com/agenthands/procflow/internal/core/path"
)

// Compute summarises a graph. analysis may be nil when no path search ran.
func Compute(g *model.ProcessGraph, analysis *path.Analysis) model.ProcessMetrics {
	m := model.ProcessMetrics{
		TotalEntities:      len(g.Entities),
		TotalRelationships: len(g.Relationships),
		TotalEvents:        g.Metadata.TotalEvents,
		EntityTypeCounts:   make(map[model.EntityType]int),
		Bottlenecks:        []string{},
	}
	for _, e := range g.Entities {
		m.EntityTypeCounts[e.Type]++
	}

	if analysis != nil {
		m.CriticalPathLength = len(analysis.Critical)
		if len(analysis.Paths) > 0 {
			total := 0
			for _, p := range analysis.Paths {
				total += len(p)
			}
			m.AveragePathLength = float64(total) / float64(len(analysis.Paths))
		}
	}

	m.Bottlenecks = Bottlenecks(g)
	return m
}

// Bottlenecks returns entities where several flows converge before moving on:
// in-degree of at least two and at least one outgoing relationship. The most
// frequent come first.
func Bottlenecks(g *model.ProcessGraph) []string {
	in := make(map[string]int)
	out := make(map[string]int)
	for _, r := range g.Relationships {
		in[r.Target]++
		out[r.Source]++
	}

	var candidates []model.Entity
	for _, e := range g.Entities {
		if in[e.ID] >= 2 && out[e.ID] >= 1 {
			candidates = append(candidates, e)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Metrics.Frequency > candidates[j].Metrics.Frequency
	})

	ids := make([]string, 0, len(candidates))
	for _, e := range candidates {
		ids = append(ids, e.ID)
	}
	return ids
}
