package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_OverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	data := `
[llm]
provider = "gemini"
model = "gemini-1.5-flash"

[parser]
default_entity_type = "EVENT"

[analyzer]
max_nodes = 50
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "gemini-1.5-flash", cfg.LLM.Model)
	assert.Equal(t, "EVENT", cfg.Parser.DefaultEntityType)
	assert.Equal(t, 50, cfg.Analyzer.MaxNodes)
	// untouched tables keep their defaults
	assert.NotEmpty(t, cfg.Parser.EntityRules)
	assert.Equal(t, 4, cfg.Concurrency.BatchParse)
	assert.Contains(t, cfg.Extraction.Prompt, "%s")
}

func TestLoad_Rules(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	data := `
[[parser.entity_rules]]
match = "^HOST"
type = "SYSTEM"
properties = { tier = "infra" }
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Parser.EntityRules, 1)
	assert.Equal(t, "^HOST", cfg.Parser.EntityRules[0].Match)
	assert.Equal(t, "infra", cfg.Parser.EntityRules[0].Properties["tier"])
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "claude")
	t.Setenv("MEMGRAPH_URI", "bolt://graph:7687")
	t.Setenv("ANALYZER_MAX_NODES", "12")
	t.Setenv("LOG_DEBUG", "true")
	t.Setenv("LLM_TIMEOUT_SECONDS", "30")
	t.Setenv("MEMGRAPH_DATABASE", "memgraph")

	cfg := Default()
	cfg.ApplyEnv()

	assert.Equal(t, "claude", cfg.LLM.Provider)
	assert.Equal(t, "bolt://graph:7687", cfg.Memgraph.URI)
	assert.Equal(t, 12, cfg.Analyzer.MaxNodes)
	assert.True(t, cfg.Log.Debug)
	assert.Equal(t, 30, cfg.LLM.TimeoutSeconds)
	assert.Equal(t, "memgraph", cfg.Memgraph.Database)
}
