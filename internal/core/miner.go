package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/agenthands/procflow/internal/config"
	"github.com/agenthands/procflow/internal/core/community"
	"github.com/agenthands/procflow/internal/core/extraction"
	"github.com/agenthands/procflow/internal/core/metrics"
	"github.com/agenthands/procflow/internal/core/model"
	"github.com/agenthands/procflow/internal/core/parser"
	"github.com/agenthands/procflow/internal/core/path"
	"github.com/agenthands/procflow/internal/core/summary"
	"github.com/agenthands/procflow/internal/driver"
	"github.com/agenthands/procflow/internal/logger"
)

var (
	// ErrNoDriver is returned by persistence calls when no graph store is configured.
	ErrNoDriver = errors.New("graph store not configured")
	// ErrNoLLM is returned when a model-backed feature runs without a client.
	ErrNoLLM = errors.New("language model not configured")
)

const (
	SourceAI    = "ai"
	SourceLocal = "local"
)

// MineResult is a parsed graph together with its analysis.
type MineResult struct {
	Graph                 *model.ProcessGraph           `json:"graph"`
	Warnings              []parser.MalformedLineWarning `json:"warnings"`
	Source                string                        `json:"source"`
	CriticalPath          []string                      `json:"criticalPath"`
	CriticalRelationships []string                      `json:"criticalRelationships"`
	Metrics               model.ProcessMetrics          `json:"metrics"`
}

// ClusterReport is a cluster with its optional model-written description.
type ClusterReport struct {
	Name     string         `json:"name,omitempty"`
	Summary  string         `json:"summary,omitempty"`
	Entities []model.Entity `json:"entities"`
}

// Miner ties parsing, analysis, clustering and persistence together.
type Miner struct {
	Parser     *parser.Parser
	Analyzer   *path.Analyzer
	AI         *extraction.AIParser
	Store      *driver.GraphStore
	Summarizer *summary.Summarizer

	batchLimit int
}

// NewMiner wires a miner. ai and graphDriver may be nil, which disables AI
// parsing and persistence respectively.
func NewMiner(p *parser.Parser, analyzer *path.Analyzer, ai *extraction.AIParser, graphDriver driver.GraphDriver, cfg config.ConcurrencyConfig) *Miner {
	m := &Miner{
		Parser:     p,
		Analyzer:   analyzer,
		AI:         ai,
		batchLimit: cfg.BatchParse,
	}
	if m.Parser == nil {
		m.Parser = parser.New(nil)
	}
	if m.Analyzer == nil {
		m.Analyzer = path.NewAnalyzer(path.DefaultMaxNodes)
	}
	if graphDriver != nil {
		m.Store = driver.NewGraphStore(graphDriver)
	}
	if m.batchLimit < 1 {
		m.batchLimit = 1
	}
	return m
}

// Parse builds and analyzes a graph from one log. With useAI set and an AI
// parser configured the model is tried first; any AI failure falls back to
// the local parser.
func (m *Miner) Parse(ctx context.Context, logText string, useAI bool) (*MineResult, error) {
	if strings.TrimSpace(logText) == "" {
		return nil, parser.ErrEmptyInput
	}

	res := &MineResult{Warnings: []parser.MalformedLineWarning{}}

	switch {
	case useAI && m.AI != nil:
		g, err := m.AI.Parse(ctx, logText)
		if err != nil {
			logger.Warn("AI parse failed, falling back to local parser", "error", err)
			break
		}
		res.Graph = g
		res.Source = SourceAI
	case useAI:
		logger.Warn("AI parse requested but no LLM is configured, using local parser")
	}

	if res.Graph == nil {
		local, err := m.Parser.Parse(logText)
		if err != nil {
			return nil, err
		}
		res.Graph = local.Graph
		if local.Warnings != nil {
			res.Warnings = local.Warnings
		}
		res.Source = SourceLocal
	}

	analysis := m.analyze(res.Graph)
	res.CriticalPath = []string{}
	if analysis != nil && analysis.Critical != nil {
		res.CriticalPath = analysis.Critical
	}
	res.CriticalRelationships = path.Highlight(res.CriticalPath, res.Graph.Relationships).Relationships
	res.Metrics = metrics.Compute(res.Graph, analysis)
	return res, nil
}

// ParseBatch parses independent logs concurrently. Results keep input order;
// the first failure cancels the rest.
func (m *Miner) ParseBatch(ctx context.Context, logs []string, useAI bool) ([]*MineResult, error) {
	results := make([]*MineResult, len(logs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.batchLimit)
	for i, text := range logs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := m.Parse(gctx, text, useAI)
			if err != nil {
				return fmt.Errorf("log %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// CriticalPath runs the bounded path search over a caller-supplied graph.
func (m *Miner) CriticalPath(entities []model.Entity, relationships []model.Relationship) (*path.Analysis, error) {
	return m.Analyzer.Analyze(entities, relationships)
}

// Metrics summarizes a graph. Graphs over the search bound get metrics
// without path figures.
func (m *Miner) Metrics(g *model.ProcessGraph) model.ProcessMetrics {
	return metrics.Compute(g, m.analyze(g))
}

// Clusters groups entities with label propagation, or by connected
// component when byComponent is set.
func (m *Miner) Clusters(g *model.ProcessGraph, byComponent bool) ([][]model.Entity, error) {
	var detector community.Detector = community.NewLabelPropagationDetector()
	if byComponent {
		detector = community.NewComponentDetector()
	}
	clusters, err := detector.Detect(g.Entities, g.Relationships)
	if err != nil {
		return nil, err
	}
	if clusters == nil {
		clusters = [][]model.Entity{}
	}
	return clusters, nil
}

// DescribeClusters clusters the graph and asks the model to summarize and
// name every cluster. Clusters are described concurrently.
func (m *Miner) DescribeClusters(ctx context.Context, g *model.ProcessGraph, byComponent bool) ([]ClusterReport, error) {
	if m.Summarizer == nil {
		return nil, ErrNoLLM
	}
	clusters, err := m.Clusters(g, byComponent)
	if err != nil {
		return nil, err
	}

	reports := make([]ClusterReport, len(clusters))
	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(m.batchLimit)
	for i, members := range clusters {
		eg.Go(func() error {
			inside := make(map[string]bool, len(members))
			for _, e := range members {
				inside[e.ID] = true
			}
			var rels []model.Relationship
			for _, r := range g.Relationships {
				if inside[r.Source] && inside[r.Target] {
					rels = append(rels, r)
				}
			}

			text, err := m.Summarizer.SummarizeCluster(egctx, members, rels)
			if err != nil {
				return fmt.Errorf("cluster %d: %w", i, err)
			}
			name, err := m.Summarizer.NameCluster(egctx, text)
			if err != nil {
				return fmt.Errorf("cluster %d: %w", i, err)
			}
			reports[i] = ClusterReport{Name: name, Summary: text, Entities: members}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// Save validates and persists a graph under a fresh run id.
func (m *Miner) Save(ctx context.Context, g *model.ProcessGraph) (string, error) {
	if m.Store == nil {
		return "", ErrNoDriver
	}
	if err := g.Validate(); err != nil {
		return "", err
	}

	runID := uuid.NewString()
	if err := m.Store.SaveGraph(ctx, runID, g); err != nil {
		return "", err
	}
	logger.Info("Saved process graph", "run_id", runID, "entities", len(g.Entities), "relationships", len(g.Relationships))
	return runID, nil
}

// Load fetches a previously saved graph.
func (m *Miner) Load(ctx context.Context, runID string) (*model.ProcessGraph, error) {
	if m.Store == nil {
		return nil, ErrNoDriver
	}
	return m.Store.LoadGraph(ctx, runID)
}

func (m *Miner) analyze(g *model.ProcessGraph) *path.Analysis {
	analysis, err := m.Analyzer.Analyze(g.Entities, g.Relationships)
	if err != nil {
		logger.Warn("Skipping critical path search", "entities", len(g.Entities), "error", err)
		return nil
	}
	return analysis
}
