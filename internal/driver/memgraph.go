package driver

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/agenthands/procflow/internal/config"
	"github.com/agenthands/procflow/internal/logger"
)

// MemgraphDriver runs Cypher over Bolt through the neo4j driver.
type MemgraphDriver struct {
	Driver   neo4j.DriverWithContext
	database string
}

func NewMemgraphDriver(ctx context.Context, cfg config.MemgraphConfig) (*MemgraphDriver, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, memgraphAuth(cfg), func(c *neo4j.Config) {
		if cfg.MaxConnections > 0 {
			c.MaxConnectionPoolSize = cfg.MaxConnections
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create memgraph driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("failed to reach memgraph at %s: %w", cfg.URI, err)
	}

	logger.Info("Connected to Memgraph", "uri", cfg.URI, "database", cfg.Database)
	return &MemgraphDriver{Driver: driver, database: cfg.Database}, nil
}

func memgraphAuth(cfg config.MemgraphConfig) neo4j.AuthToken {
	if cfg.User == "" {
		return neo4j.NoAuth()
	}
	return neo4j.BasicAuth(cfg.User, cfg.Password, "")
}

func (d *MemgraphDriver) Close(ctx context.Context) error {
	return d.Driver.Close(ctx)
}

func (d *MemgraphDriver) queryOptions() []neo4j.ExecuteQueryConfigurationOption {
	if d.database == "" {
		return nil
	}
	return []neo4j.ExecuteQueryConfigurationOption{neo4j.ExecuteQueryWithDatabase(d.database)}
}

func (d *MemgraphDriver) ExecuteQuery(ctx context.Context, query string, params map[string]any) (neo4j.EagerResult, error) {
	result, err := neo4j.ExecuteQuery(ctx, d.Driver, query, params, neo4j.EagerResultTransformer, d.queryOptions()...)
	if err != nil {
		return neo4j.EagerResult{}, fmt.Errorf("failed to execute query: %w", err)
	}
	return *result, nil
}

// BuildIndices creates the lookup indices used by run queries. Failures are
// logged and skipped since Memgraph reports existing indices as errors.
func (d *MemgraphDriver) BuildIndices(ctx context.Context) error {
	for _, q := range IndexQueries {
		if _, err := d.ExecuteQuery(ctx, q, nil); err != nil {
			logger.Warn("Failed to create index", "query", q, "error", err)
		}
	}
	return nil
}
