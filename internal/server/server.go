// Package server exposes the timing pipeline over HTTP. Stages run as
// background jobs against the configured library store; clients poll the
// job endpoints for progress.
package server

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"librettist/config"
	"librettist/internal/job"
	"librettist/internal/pipeline"
	"librettist/internal/storage"
)

// Server handles HTTP requests for the libretto timing pipeline.
type Server struct {
	cfg        *config.Config
	router     *gin.Engine
	store      storage.Store
	runner     *pipeline.Runner
	jobManager *job.Manager
}

// New creates a new HTTP server instance over the configured store.
func New(cfg *config.Config) (*Server, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	store, err := storage.NewFromConfig(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}

	router := gin.Default()
	server := &Server{
		cfg:        cfg,
		router:     router,
		store:      store,
		runner:     pipeline.NewRunner(store),
		jobManager: job.NewManager(),
	}

	server.setupRoutes()
	return server, nil
}

// setupRoutes configures the HTTP routes
func (s *Server) setupRoutes() {
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	s.router.GET("/health", s.health)

	api := s.router.Group("/api/v1")
	{
		api.POST("/pipeline/resolve", s.runStage("resolve"))
		api.POST("/pipeline/estimate", s.runStage("estimate"))
		api.POST("/pipeline/merge", s.runStage("merge"))
		api.POST("/validate", s.validateOverlay)

		api.GET("/librettos", s.listLibrettos)
		api.GET("/overlays", s.listOverlays)
		api.GET("/documents/*key", s.getDocument)

		api.GET("/jobs", s.listJobs)
		api.GET("/jobs/:id", s.getJobStatus)
		api.POST("/jobs/:id/cancel", s.cancelJob)
	}
}

// Start starts the HTTP server
func (s *Server) Start(port string) error {
	return s.router.Run(":" + port)
}
