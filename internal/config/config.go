package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

type LLMConfig struct {
	Provider    string  `toml:"provider"`
	Model       string  `toml:"model"`
	APIKey      string  `toml:"api_key"`
	BaseURL     string  `toml:"base_url"`
	Temperature float32 `toml:"temperature"`
	MaxTokens   int     `toml:"max_tokens"`
	// TimeoutSeconds bounds a single completion call. Zero leaves it to the caller's context.
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// MemgraphConfig connects to Memgraph over Bolt. An empty User connects
// without authentication, which is how a stock Memgraph starts.
type MemgraphConfig struct {
	URI            string `toml:"uri"`
	User           string `toml:"user"`
	Password       string `toml:"password"`
	Database       string `toml:"database"`
	MaxConnections int    `toml:"max_connections"`
}

// Rule is one ordered entry of a type-inference table. Match and Exclude are
// case-insensitive regular expressions.
type Rule struct {
	Match      string            `toml:"match"`
	Exclude    string            `toml:"exclude,omitempty"`
	Type       string            `toml:"type"`
	Properties map[string]string `toml:"properties,omitempty"`
}

type ParserConfig struct {
	DefaultEntityType       string `toml:"default_entity_type"`
	DefaultLocationType     string `toml:"default_location_type"`
	DefaultRelationshipType string `toml:"default_relationship_type"`
	EntityRules             []Rule `toml:"entity_rules"`
	LocationRules           []Rule `toml:"location_rules"`
	RelationshipRules       []Rule `toml:"relationship_rules"`
}

type AnalyzerConfig struct {
	MaxNodes int `toml:"max_nodes"`
}

type ExtractionConfig struct {
	// Prompt receives the raw log text through a single %s verb.
	Prompt string `toml:"prompt"`
	// IncludeSchema appends the JSON Schema of the expected reply to the prompt.
	IncludeSchema bool `toml:"include_schema"`
}

// SummaryPrompts name and describe entity clusters. Cluster receives the
// member listing and ClusterName the finished summary, each through one %s.
type SummaryPrompts struct {
	Cluster     string `toml:"cluster"`
	ClusterName string `toml:"cluster_name"`
}

type ConcurrencyConfig struct {
	BatchParse int `toml:"batch_parse"`
}

type LogConfig struct {
	Debug bool `toml:"debug"`
}

type Config struct {
	LLM         LLMConfig         `toml:"llm"`
	Memgraph    MemgraphConfig    `toml:"memgraph"`
	Parser      ParserConfig      `toml:"parser"`
	Analyzer    AnalyzerConfig    `toml:"analyzer"`
	Extraction  ExtractionConfig  `toml:"extraction"`
	Summary     SummaryPrompts    `toml:"summary"`
	Concurrency ConcurrencyConfig `toml:"concurrency"`
	Log         LogConfig         `toml:"log"`
}

// Load reads a TOML file on top of Default. Tables present in the file
// replace the corresponding defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	var file Config
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	// Decoding into a populated slice overwrites element-wise, so rule tables
	// from the file replace the defaults wholesale.
	if file.Parser.EntityRules != nil {
		cfg.Parser.EntityRules = file.Parser.EntityRules
	}
	if file.Parser.LocationRules != nil {
		cfg.Parser.LocationRules = file.Parser.LocationRules
	}
	if file.Parser.RelationshipRules != nil {
		cfg.Parser.RelationshipRules = file.Parser.RelationshipRules
	}

	return cfg, nil
}

// ApplyEnv overrides settings from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv("MEMGRAPH_URI"); v != "" {
		c.Memgraph.URI = v
	}
	if v := os.Getenv("MEMGRAPH_USER"); v != "" {
		c.Memgraph.User = v
	}
	if v := os.Getenv("MEMGRAPH_PASSWORD"); v != "" {
		c.Memgraph.Password = v
	}
	if v := os.Getenv("MEMGRAPH_DATABASE"); v != "" {
		c.Memgraph.Database = v
	}
	if v := os.Getenv("LLM_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.LLM.TimeoutSeconds = n
		}
	}
	if v := os.Getenv("ANALYZER_MAX_NODES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Analyzer.MaxNodes = n
		}
	}
	if v := os.Getenv("LOG_DEBUG"); v == "true" || v == "false" {
		c.Log.Debug = v == "true"
	}
}
