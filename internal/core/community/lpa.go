package community

import (
	"sort"

	"github.com/agenthands/procflow/internal/core/model"
)

// LabelPropagationDetector clusters entities with the Label Propagation
// Algorithm on the undirected graph, using relationship frequency as weight.
type LabelPropagationDetector struct {
	MaxIterations int
}

func NewLabelPropagationDetector() *LabelPropagationDetector {
	return &LabelPropagationDetector{
		MaxIterations: 20,
	}
}

func (d *LabelPropagationDetector) Detect(entities []model.Entity, relationships []model.Relationship) ([][]model.Entity, error) {
	if len(entities) == 0 {
		return nil, nil
	}

	adj := make(map[string]map[string]int, len(entities)) // node -> neighbour -> weight
	position := make(map[string]int, len(entities))
	for i, e := range entities {
		position[e.ID] = i
		adj[e.ID] = make(map[string]int)
	}

	for _, r := range relationships {
		if _, ok := position[r.Source]; !ok {
			continue
		}
		if _, ok := position[r.Target]; !ok {
			continue
		}
		if r.Source == r.Target {
			continue
		}
		w := r.Metrics.Frequency
		if w < 1 {
			w = 1
		}
		adj[r.Source][r.Target] += w
		adj[r.Target][r.Source] += w
	}

	labels := make(map[string]string, len(entities))
	for _, e := range entities {
		labels[e.ID] = e.ID
	}

	for iter := 0; iter < d.MaxIterations; iter++ {
		changed := 0

		for _, e := range entities {
			neighbours := adj[e.ID]
			if len(neighbours) == 0 {
				continue
			}

			counts := make(map[string]int)
			maxCount := 0
			for v, weight := range neighbours {
				label := labels[v]
				counts[label] += weight
				if counts[label] > maxCount {
					maxCount = counts[label]
				}
			}

			var candidates []string
			for label, count := range counts {
				if count == maxCount {
					candidates = append(candidates, label)
				}
			}
			// lexicographically largest label wins ties
			sort.Strings(candidates)
			best := candidates[len(candidates)-1]

			if labels[e.ID] != best {
				labels[e.ID] = best
				changed++
			}
		}

		if changed == 0 {
			break
		}
	}

	clusterOf := make(map[string]int)
	var clusters [][]model.Entity
	for _, e := range entities {
		label := labels[e.ID]
		idx, ok := clusterOf[label]
		if !ok {
			idx = len(clusters)
			clusterOf[label] = idx
			clusters = append(clusters, nil)
		}
		clusters[idx] = append(clusters[idx], e)
	}

	result := clusters[:0]
	for _, c := range clusters {
		if len(c) >= 2 {
			result = append(result, c)
		}
	}
	return result, nil
}
