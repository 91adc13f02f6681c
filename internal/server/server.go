package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/agenthands/procflow/internal/core"
	"github.com/agenthands/procflow/internal/core/model"
	"github.com/agenthands/procflow/internal/core/parser"
	"github.com/agenthands/procflow/internal/core/path"
	"github.com/agenthands/procflow/internal/driver"
	"github.com/agenthands/procflow/internal/logger"
)

type Server struct {
	Miner *core.Miner
}

func NewServer(miner *core.Miner) *Server {
	return &Server{Miner: miner}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.POST("/parse", s.Parse)
	r.POST("/parse/batch", s.ParseBatch)
	r.POST("/critical-path", s.CriticalPath)
	r.POST("/metrics", s.Metrics)
	r.POST("/clusters", s.Clusters)
	r.POST("/graphs", s.SaveGraph)
	r.GET("/graphs/:id", s.GetGraph)

	return r
}

type ParseRequest struct {
	LogText string `json:"logText"`
	UseAI   bool   `json:"useAI"`
}

type BatchParseRequest struct {
	Logs  []string `json:"logs"`
	UseAI bool     `json:"useAI"`
}

type CriticalPathRequest struct {
	Entities      []model.Entity       `json:"entities"`
	Relationships []model.Relationship `json:"relationships"`
}

type CriticalPathResponse struct {
	CriticalPath          []string `json:"criticalPath"`
	CriticalRelationships []string `json:"criticalRelationships"`
	Weight                int      `json:"weight"`
	PathCount             int      `json:"pathCount"`
}

func (s *Server) Parse(c *gin.Context) {
	var req ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	res, err := s.Miner.Parse(c.Request.Context(), req.LogText, req.UseAI)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) ParseBatch(c *gin.Context) {
	var req BatchParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if len(req.Logs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "logs must not be empty"})
		return
	}

	results, err := s.Miner.ParseBatch(c.Request.Context(), req.Logs, req.UseAI)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (s *Server) CriticalPath(c *gin.Context) {
	var req CriticalPathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	analysis, err := s.Miner.CriticalPath(req.Entities, req.Relationships)
	if err != nil {
		respondError(c, err)
		return
	}

	critical := analysis.Critical
	if critical == nil {
		critical = []string{}
	}
	c.JSON(http.StatusOK, CriticalPathResponse{
		CriticalPath:          critical,
		CriticalRelationships: path.Highlight(critical, req.Relationships).Relationships,
		Weight:                analysis.Weight,
		PathCount:             len(analysis.Paths),
	})
}

func (s *Server) Metrics(c *gin.Context) {
	var g model.ProcessGraph
	if err := c.ShouldBindJSON(&g); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	c.JSON(http.StatusOK, s.Miner.Metrics(&g))
}

// Clusters accepts ?mode=components for connected components and
// ?summarize=true for model-written cluster descriptions.
func (s *Server) Clusters(c *gin.Context) {
	var g model.ProcessGraph
	if err := c.ShouldBindJSON(&g); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	byComponent := c.Query("mode") == "components"
	summarize, _ := strconv.ParseBool(c.DefaultQuery("summarize", "false"))

	if summarize {
		reports, err := s.Miner.DescribeClusters(c.Request.Context(), &g, byComponent)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"clusters": reports})
		return
	}

	clusters, err := s.Miner.Clusters(&g, byComponent)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clusters": clusters})
}

func (s *Server) SaveGraph(c *gin.Context) {
	var g model.ProcessGraph
	if err := c.ShouldBindJSON(&g); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	runID, err := s.Miner.Save(c.Request.Context(), &g)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"runId": runID})
}

func (s *Server) GetGraph(c *gin.Context) {
	g, err := s.Miner.Load(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, parser.ErrEmptyInput), errors.Is(err, model.ErrInvalidGraph):
		return http.StatusBadRequest
	case errors.Is(err, driver.ErrRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, path.ErrGraphTooLarge):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrNoDriver), errors.Is(err, core.ErrNoLLM):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		logger.Error("Request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
