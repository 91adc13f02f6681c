package model

// ProcessMetrics summarises a graph and its critical path for dashboards.
type ProcessMetrics struct {
	TotalEntities      int                `json:"totalEntities"`
	TotalRelationships int                `json:"totalRelationships"`
	TotalEvents        int                `json:"totalEvents"`
	EntityTypeCounts   map[EntityType]int `json:"entityTypeCounts"`
	AveragePathLength  float64            `json:"averagePathLength"`
	CriticalPathLength int                `json:"criticalPathLength"`
	Bottlenecks        []string           `json:"bottlenecks"`
}
