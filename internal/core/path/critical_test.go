package path

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/procflow/internal/core/model"
)

func ent(id string, freq int) model.Entity {
	return model.Entity{ID: id, Name: id, Type: model.EntityVehicle, Metrics: model.EntityMetrics{Frequency: freq}}
}

func rel(source, target string) model.Relationship {
	return model.Relationship{
		ID:      model.RelationshipID(source, model.MarkerFlow, target),
		Source:  source,
		Target:  target,
		Type:    model.RelationFlow,
		Metrics: model.RelationshipMetrics{Frequency: 1},
	}
}

func weightOf(p []string, entities []model.Entity) int {
	w := 0
	for _, id := range p {
		for _, e := range entities {
			if e.ID == id {
				w += e.Metrics.Frequency
			}
		}
	}
	return w
}

func TestFindCriticalPath_Empty(t *testing.T) {
	assert.Equal(t, []string{}, FindCriticalPath(nil, nil))
}

func TestFindCriticalPath_SingleEntity(t *testing.T) {
	assert.Equal(t, []string{"S28"}, FindCriticalPath([]model.Entity{ent("S28", 3)}, nil))
}

func TestFindCriticalPath_PicksHeaviestBranch(t *testing.T) {
	// A -> B -> D and A -> C -> D; C is heavier.
	entities := []model.Entity{ent("A", 1), ent("B", 1), ent("C", 5), ent("D", 1)}
	relationships := []model.Relationship{rel("A", "B"), rel("A", "C"), rel("B", "D"), rel("C", "D")}

	assert.Equal(t, []string{"A", "C", "D"}, FindCriticalPath(entities, relationships))
}

func TestAnalyze_NegativeFrequencies(t *testing.T) {
	entities := []model.Entity{ent("A", -5), ent("B", -5)}

	res, err := NewAnalyzer(0).Analyze(entities, []model.Relationship{rel("A", "B")})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, res.Critical)
	assert.Equal(t, -10, res.Weight)
}

func TestAnalyze_TieBreakFirstFound(t *testing.T) {
	entities := []model.Entity{ent("A", 1), ent("B", 2), ent("C", 2), ent("D", 1)}
	relationships := []model.Relationship{rel("A", "B"), rel("A", "C"), rel("B", "D"), rel("C", "D")}

	res, err := NewAnalyzer(0).Analyze(entities, relationships)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "D"}, res.Critical)
	assert.Equal(t, 4, res.Weight)
	assert.Len(t, res.Paths, 2)
}

func TestAnalyze_StartsAndEndsAtDegreeZeroNodes(t *testing.T) {
	entities := []model.Entity{ent("X", 1), ent("A", 2), ent("B", 9), ent("C", 1), ent("Y", 1)}
	relationships := []model.Relationship{
		rel("X", "A"), rel("A", "B"), rel("B", "C"), rel("C", "A"), rel("C", "Y"),
	}

	res, err := NewAnalyzer(10).Analyze(entities, relationships)
	require.NoError(t, err)
	require.NotEmpty(t, res.Critical)
	assert.Equal(t, "X", res.Critical[0])
	assert.Equal(t, "Y", res.Critical[len(res.Critical)-1])

	for _, p := range res.Paths {
		assert.GreaterOrEqual(t, res.Weight, weightOf(p, entities))
		seen := map[string]bool{}
		for _, id := range p {
			assert.False(t, seen[id], "path %v revisits %s", p, id)
			seen[id] = true
		}
	}
}

func TestAnalyze_CycleFallsBackToFrequencyRanking(t *testing.T) {
	// Every node has incoming and outgoing edges.
	entities := []model.Entity{ent("A", 1), ent("B", 7), ent("C", 4)}
	relationships := []model.Relationship{rel("A", "B"), rel("B", "C"), rel("C", "A")}

	res, err := NewAnalyzer(0).Analyze(entities, relationships)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C"}, res.Critical)
	assert.Equal(t, 11, res.Weight)
}

func TestAnalyze_FallbackOnlyForMissingSide(t *testing.T) {
	// S has no incoming edge; A and B form a cycle so no node lacks outgoing edges.
	entities := []model.Entity{ent("S", 1), ent("A", 3), ent("B", 2)}
	relationships := []model.Relationship{rel("S", "A"), rel("A", "B"), rel("B", "A")}

	res, err := NewAnalyzer(0).Analyze(entities, relationships)
	require.NoError(t, err)
	// end falls back to the second most frequent entity, B
	assert.Equal(t, []string{"S", "A", "B"}, res.Critical)
}

func TestAnalyze_IsolatedNodesFormSingleNodePaths(t *testing.T) {
	entities := []model.Entity{ent("A", 1), ent("B", 1), ent("Lonely", 10)}
	relationships := []model.Relationship{rel("A", "B")}

	res, err := NewAnalyzer(0).Analyze(entities, relationships)
	require.NoError(t, err)
	assert.Equal(t, []string{"Lonely"}, res.Critical)
}

func TestAnalyze_RejectsLargeGraphs(t *testing.T) {
	var entities []model.Entity
	for i := 0; i < 5; i++ {
		entities = append(entities, ent(fmt.Sprintf("N%d", i), 1))
	}

	_, err := NewAnalyzer(4).Analyze(entities, nil)
	assert.ErrorIs(t, err, ErrGraphTooLarge)

	res, err := NewAnalyzer(5).Analyze(entities, nil)
	require.NoError(t, err)
	assert.Len(t, res.Paths, 5) // only the self pairs are connected
}

func TestFindCriticalPath_OverDefaultBound(t *testing.T) {
	var entities []model.Entity
	for i := 0; i <= DefaultMaxNodes; i++ {
		entities = append(entities, ent(fmt.Sprintf("N%d", i), 1))
	}
	assert.Equal(t, []string{}, FindCriticalPath(entities, nil))
}

func TestHighlight_AdjacencyOnly(t *testing.T) {
	relationships := []model.Relationship{rel("A", "B"), rel("B", "C"), rel("A", "C"), rel("C", "B")}
	h := Highlight([]string{"A", "B", "C"}, relationships)

	assert.Equal(t, map[string]bool{"A": true, "B": true, "C": true}, h.Entities)
	assert.Equal(t, []string{"A-FLOW-B", "B-FLOW-C"}, h.Relationships)
}

func TestHighlight_EmptyPath(t *testing.T) {
	h := Highlight(nil, []model.Relationship{rel("A", "B")})
	assert.Empty(t, h.Entities)
	assert.Empty(t, h.Relationships)
}
