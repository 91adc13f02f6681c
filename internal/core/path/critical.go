// Package path selects the critical path of a process graph: the simple path
// between a start node (no incoming edge) and an end node (no outgoing edge)
// whose entities have the largest summed frequency.
//
// The search enumerates every simple path between every start/end pair and is
// exponential in the worst case. Analyzer refuses graphs with more entities
// than its node bound instead of switching to an approximation, so results
// and tie-breaks stay identical for every graph it accepts.
package path

import (
	"errors"
	"fmt"
	"sort"

	"github.com/agenthands/procflow/internal/core/model"
	"github.com/agenthands/procflow/internal/logger"
)

// DefaultMaxNodes bounds the exhaustive search for FindCriticalPath.
const DefaultMaxNodes = 200

var ErrGraphTooLarge = errors.New("graph too large for exhaustive path search")

type edge struct {
	target    string
	frequency int
}

// Analysis is the outcome of one path search.
type Analysis struct {
	// Critical is the heaviest path, nil when no path exists.
	Critical []string
	Weight   int
	// Paths holds every enumerated start-to-end path in discovery order.
	Paths [][]string
}

type Analyzer struct {
	maxNodes int
}

// NewAnalyzer returns an analyzer refusing graphs with more than maxNodes
// entities. A non-positive bound selects DefaultMaxNodes.
func NewAnalyzer(maxNodes int) *Analyzer {
	if maxNodes <= 0 {
		maxNodes = DefaultMaxNodes
	}
	return &Analyzer{maxNodes: maxNodes}
}

func (a *Analyzer) MaxNodes() int {
	return a.maxNodes
}

// FindCriticalPath returns the critical path with the default bound. Graphs
// over the bound yield an empty path.
func FindCriticalPath(entities []model.Entity, relationships []model.Relationship) []string {
	res, err := NewAnalyzer(DefaultMaxNodes).Analyze(entities, relationships)
	if err != nil {
		logger.Warn("Critical path search skipped", "error", err)
		return []string{}
	}
	if res.Critical == nil {
		return []string{}
	}
	return res.Critical
}

// Analyze enumerates all simple start-to-end paths and picks the heaviest.
// Among equally heavy paths the first one discovered wins; discovery follows
// entity order for endpoints and relationship order for neighbours.
func (a *Analyzer) Analyze(entities []model.Entity, relationships []model.Relationship) (*Analysis, error) {
	if len(entities) == 0 {
		return &Analysis{}, nil
	}
	if len(entities) > a.maxNodes {
		return nil, fmt.Errorf("%w: %d entities exceed the limit of %d", ErrGraphTooLarge, len(entities), a.maxNodes)
	}

	adj := make(map[string][]edge, len(entities))
	weights := make(map[string]int, len(entities))
	for _, e := range entities {
		adj[e.ID] = nil
		weights[e.ID] = e.Metrics.Frequency
	}

	incoming := make(map[string]int)
	for _, r := range relationships {
		freq := r.Metrics.Frequency
		if freq == 0 {
			freq = 1
		}
		adj[r.Source] = append(adj[r.Source], edge{target: r.Target, frequency: freq})
		incoming[r.Target]++
	}

	var starts, ends []string
	for _, e := range entities {
		if incoming[e.ID] == 0 {
			starts = append(starts, e.ID)
		}
		if len(adj[e.ID]) == 0 {
			ends = append(ends, e.ID)
		}
	}

	if len(starts) == 0 || len(ends) == 0 {
		ranked := rankByFrequency(entities)
		if len(starts) == 0 {
			starts = []string{ranked[0]}
		}
		if len(ends) == 0 {
			if len(ranked) > 1 {
				ends = []string{ranked[1]}
			} else {
				ends = []string{ranked[0]}
			}
		}
	}

	res := &Analysis{}
	for _, start := range starts {
		for _, end := range ends {
			s := &search{adj: adj, end: end, visited: make(map[string]bool)}
			s.dfs(start)
			res.Paths = append(res.Paths, s.found...)
		}
	}

	for _, p := range res.Paths {
		w := pathWeight(p, weights)
		if res.Critical == nil || w > res.Weight {
			res.Critical = p
			res.Weight = w
		}
	}
	return res, nil
}

type search struct {
	adj     map[string][]edge
	end     string
	visited map[string]bool
	stack   []string
	found   [][]string
}

func (s *search) dfs(node string) {
	s.visited[node] = true
	s.stack = append(s.stack, node)

	if node == s.end {
		p := make([]string, len(s.stack))
		copy(p, s.stack)
		s.found = append(s.found, p)
	} else {
		for _, e := range s.adj[node] {
			if !s.visited[e.target] {
				s.dfs(e.target)
			}
		}
	}

	s.stack = s.stack[:len(s.stack)-1]
	delete(s.visited, node)
}

// rankByFrequency returns entity ids by descending frequency, keeping entity
// order among equals.
func rankByFrequency(entities []model.Entity) []string {
	sorted := make([]model.Entity, len(entities))
	copy(sorted, entities)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Metrics.Frequency > sorted[j].Metrics.Frequency
	})
	ids := make([]string, len(sorted))
	for i, e := range sorted {
		ids[i] = e.ID
	}
	return ids
}

func pathWeight(p []string, weights map[string]int) int {
	w := 0
	for _, id := range p {
		w += weights[id]
	}
	return w
}
