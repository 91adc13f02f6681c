package community

import (
	"github.com/agenthands/procflow/internal/core/model"
)

// Detector groups related entities of a process graph into clusters.
// Clusters with a single member are dropped.
type Detector interface {
	Detect(entities []model.Entity, relationships []model.Relationship) ([][]model.Entity, error)
}

// ComponentDetector clusters by undirected connectivity.
type ComponentDetector struct{}

func NewComponentDetector() *ComponentDetector {
	return &ComponentDetector{}
}

func (d *ComponentDetector) Detect(entities []model.Entity, relationships []model.Relationship) ([][]model.Entity, error) {
	byID := make(map[string]model.Entity, len(entities))
	for _, e := range entities {
		byID[e.ID] = e
	}

	adj := make(map[string][]string)
	for _, r := range relationships {
		if _, ok := byID[r.Source]; !ok {
			continue
		}
		if _, ok := byID[r.Target]; !ok {
			continue
		}
		adj[r.Source] = append(adj[r.Source], r.Target)
		adj[r.Target] = append(adj[r.Target], r.Source)
	}

	visited := make(map[string]bool)
	var clusters [][]model.Entity
	for _, e := range entities {
		if visited[e.ID] {
			continue
		}
		var ids []string
		d.dfs(e.ID, adj, visited, &ids)
		if len(ids) < 2 {
			continue
		}
		cluster := make([]model.Entity, 0, len(ids))
		for _, id := range ids {
			cluster = append(cluster, byID[id])
		}
		clusters = append(clusters, cluster)
	}
	return clusters, nil
}

func (d *ComponentDetector) dfs(u string, adj map[string][]string, visited map[string]bool, component *[]string) {
	visited[u] = true
	*component = append(*component, u)
	for _, v := range adj[u] {
		if !visited[v] {
			d.dfs(v, adj, visited, component)
		}
	}
}
