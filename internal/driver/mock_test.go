package driver

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

type executedQuery struct {
	Query  string
	Params map[string]any
}

// MockDriver records every query and answers from Results keyed by query text.
type MockDriver struct {
	Executed []executedQuery
	Results  map[string]neo4j.EagerResult
	Err      error
	// FailOn fails only the listed queries.
	FailOn map[string]error
}

func (m *MockDriver) ExecuteQuery(ctx context.Context, query string, params map[string]any) (neo4j.EagerResult, error) {
	m.Executed = append(m.Executed, executedQuery{Query: query, Params: params})
	if m.Err != nil {
		return neo4j.EagerResult{}, m.Err
	}
	if err, ok := m.FailOn[query]; ok {
		return neo4j.EagerResult{}, err
	}
	return m.Results[query], nil
}

func (m *MockDriver) BuildIndices(ctx context.Context) error { return nil }
func (m *MockDriver) Close(ctx context.Context) error        { return nil }

func record(keys []string, values ...any) *neo4j.Record {
	return &neo4j.Record{Keys: keys, Values: values}
}
