// Package server exposes the transcription service over HTTP.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/voxnotes/voxnotes/internal/config"
	"github.com/voxnotes/voxnotes/internal/pipeline"
	"github.com/voxnotes/voxnotes/internal/store"
	"github.com/voxnotes/voxnotes/internal/version"
)

// Response is the standard API response structure
type Response struct {
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Message string      `json:"message"`
}

// Server is the HTTP server for voxnotes
type Server struct {
	port     int
	dataDir  string
	apiKey   string
	pipe     *pipeline.Pipeline
	store    store.Store
	jobQueue *JobQueue
	cfg      *config.Config
	server   *http.Server
	engine   *gin.Engine
}

// NewServer creates a new HTTP server around a configured pipeline.
func NewServer(cfg *config.Config, pipe *pipeline.Pipeline, st store.Store, dataDir string) *Server {
	s := &Server{
		port:    cfg.Server.Port,
		dataDir: dataDir,
		apiKey:  cfg.Server.APIKey,
		pipe:    pipe,
		store:   st,
		cfg:     cfg,
	}

	s.jobQueue = NewJobQueue(cfg.Server.MaxConcurrent, s.runTranscription)
	return s
}

// Start starts the HTTP server
func (s *Server) Start() error {
	if err := os.MkdirAll(s.dataDir, 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	s.jobQueue.Start()

	gin.SetMode(gin.ReleaseMode)

	s.engine = gin.New()
	s.engine.Use(gin.Recovery())
	s.engine.Use(s.loggingMiddleware())
	if s.apiKey != "" {
		s.engine.Use(s.authMiddleware())
	}

	api := s.engine.Group("/api")
	api.GET("/health", s.handleHealth)

	api.POST("/recordings", s.handleCreateRecording)
	api.GET("/recordings", s.handleListRecordings)
	api.GET("/recordings/:id", s.handleGetRecording)
	api.PUT("/recordings/:id", s.handleUpdateRecording)
	api.DELETE("/recordings/:id", s.handleDeleteRecording)

	api.GET("/jobs", s.handleGetJobs)
	api.GET("/jobs/:id", s.handleGetJob)
	api.DELETE("/jobs/:id", s.handleCancelJob)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // uploads and long polls
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Starting voxnotes server on port %d", s.port)
	log.Printf("Data directory: %s", s.dataDir)
	log.Printf("Transcription provider: %s", s.pipe.ProviderName())
	if s.apiKey != "" {
		log.Printf("API key authentication enabled")
	}

	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server. The listener goes first so no new
// requests can reach the job queue while it drains.
func (s *Server) Stop(ctx context.Context) error {
	err := s.server.Shutdown(ctx)
	s.jobQueue.Stop()
	return err
}

// Middleware

func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		// Health endpoint doesn't require auth
		if path == "/api/health" || !strings.HasPrefix(path, "/api/") {
			c.Next()
			return
		}

		apiKey := c.GetHeader("X-API-Key")
		if apiKey != s.apiKey {
			c.JSON(http.StatusUnauthorized, Response{
				Code:    401,
				Data:    nil,
				Message: "invalid or missing API key",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Printf("%s %s %s", c.Request.Method, c.Request.URL.Path, time.Since(start))
	}
}

// Handlers

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Code: 200,
		Data: gin.H{
			"status":   "ok",
			"version":  version.Version,
			"provider": s.pipe.ProviderName(),
		},
		Message: "everything is good",
	})
}

func (s *Server) handleGetJobs(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Code:    200,
		Data:    s.jobQueue.GetAllJobs(),
		Message: "jobs retrieved",
	})
}

func (s *Server) handleGetJob(c *gin.Context) {
	job := s.jobQueue.GetJob(c.Param("id"))
	if job == nil {
		c.JSON(http.StatusNotFound, Response{
			Code:    404,
			Data:    nil,
			Message: "job not found",
		})
		return
	}

	c.JSON(http.StatusOK, Response{
		Code:    200,
		Data:    job,
		Message: "job retrieved",
	})
}

func (s *Server) handleCancelJob(c *gin.Context) {
	if !s.jobQueue.CancelJob(c.Param("id")) {
		c.JSON(http.StatusNotFound, Response{
			Code:    404,
			Data:    nil,
			Message: "job not found or already finished",
		})
		return
	}

	c.JSON(http.StatusOK, Response{
		Code:    200,
		Data:    nil,
		Message: "job cancelled",
	})
}
