package main

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"

	"github.com/agenthands/procflow/internal/config"
	"github.com/agenthands/procflow/internal/core"
	"github.com/agenthands/procflow/internal/core/extraction"
	"github.com/agenthands/procflow/internal/core/parser"
	"github.com/agenthands/procflow/internal/core/path"
	"github.com/agenthands/procflow/internal/core/summary"
	"github.com/agenthands/procflow/internal/driver"
	"github.com/agenthands/procflow/internal/llm"
	"github.com/agenthands/procflow/internal/logger"
	"github.com/agenthands/procflow/internal/logger/console"
	"github.com/agenthands/procflow/internal/server"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := loadConfig()
	if err != nil {
		// The logger is not up yet; fall back to a default console backend.
		logger.Init(console.NewConsoleLogger(console.ConsoleLoggerParams{}))
		logger.Fatal("Failed to load configuration", "error", err)
	}
	cfg.ApplyEnv()

	logger.Init(console.NewConsoleLogger(console.ConsoleLoggerParams{Debug: cfg.Log.Debug}))
	if envErr != nil {
		logger.Debug("No .env file found, using process environment")
	}

	ctx := context.Background()

	vocab, err := parser.CompileVocabulary(cfg.Parser)
	if err != nil {
		logger.Fatal("Invalid parser vocabulary", "error", err)
	}

	var aiParser *extraction.AIParser
	var summarizer *summary.Summarizer
	if cfg.LLM.Provider != "" {
		client, err := llm.NewClient(ctx, cfg.LLM)
		if err != nil {
			logger.Warn("AI parsing disabled", "error", err)
		} else {
			aiParser = extraction.NewAIParser(client, cfg.Extraction.Prompt)
			if cfg.Extraction.IncludeSchema {
				if aiParser.Schema, err = extraction.ResponseSchema(); err != nil {
					logger.Warn("Prompting without response schema", "error", err)
				}
			}
			summarizer = summary.NewSummarizer(client, cfg.Summary)
			logger.Info("AI parsing enabled", "provider", cfg.LLM.Provider, "model", cfg.LLM.Model)
		}
	}

	var graphDriver driver.GraphDriver
	if cfg.Memgraph.URI != "" {
		d, err := driver.NewMemgraphDriver(ctx, cfg.Memgraph)
		if err != nil {
			logger.Warn("Graph persistence disabled", "error", err)
		} else {
			defer d.Close(ctx)
			if err := d.BuildIndices(ctx); err != nil {
				logger.Warn("Failed to build indices", "error", err)
			}
			graphDriver = d
		}
	}

	miner := core.NewMiner(parser.New(vocab), path.NewAnalyzer(cfg.Analyzer.MaxNodes), aiParser, graphDriver, cfg.Concurrency)
	miner.Summarizer = summarizer

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	r := server.NewServer(miner).SetupRouter()
	logger.Info("Starting server", "port", port)
	if err := r.Run(":" + port); err != nil {
		logger.Fatal("Server stopped", "error", err)
	}
}

// loadConfig reads CONFIG_PATH (default config/config.toml). A missing
// default file means built-in defaults.
func loadConfig() (*config.Config, error) {
	cfgPath := os.Getenv("CONFIG_PATH")
	explicit := cfgPath != ""
	if !explicit {
		cfgPath = "config/config.toml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return config.Default(), nil
		}
		return nil, err
	}
	return cfg, nil
}
