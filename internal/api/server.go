package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"arc56/internal/client"
	"arc56/internal/logging"
	"arc56/internal/storage"
)

// Server represents the HTTP API server
// Exposes the bound application client, the recorded history and Prometheus metrics
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	client     *client.AppClient
	repository storage.Repository
	log        logging.Logger
	port       int
}

// NewServer creates a new API server instance
// The repository is made available to the history handlers
func NewServer(port int, appClient *client.AppClient, repository storage.Repository, log logging.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	s := &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			Handler:      engine,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		engine:     engine,
		client:     appClient,
		repository: repository,
		log:        log,
		port:       port,
	}

	engine.Use(gin.Recovery(), s.requestLogger())
	s.registerRoutes()

	return s
}

// Handler returns the HTTP handler serving every route
func (s *Server) Handler() http.Handler {
	return s.engine
}

// registerRoutes sets up all HTTP routes
func (s *Server) registerRoutes() {
	// Core endpoints
	s.engine.GET("/", s.handleIndex)
	s.engine.GET("/health", s.handleHealth)
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Contract endpoints
	s.engine.GET("/contract", s.handleContract)
	s.engine.GET("/methods", s.handleListMethods)
	s.engine.POST("/methods/:name/params", s.handleParams)
	s.engine.POST("/methods/:name/call", s.handleCall)

	// Storage endpoints
	s.engine.GET("/state", s.handleDumpState)
	s.engine.GET("/state/keys/:name", s.handleStateKey)
	s.engine.GET("/state/maps/:name", s.handleStateMap)

	// History endpoints
	s.engine.GET("/deployments", s.handleListDeployments)
	s.engine.GET("/deployments/:app_id", s.handleGetDeployment)
	s.engine.GET("/activities", s.handleListActivities)
}

// requestLogger logs every request once it completes
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", logging.Since(start),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.String())
		}
		switch {
		case c.Writer.Status() >= 500:
			s.log.Errorw("HTTP request", fields...)
		case c.Writer.Status() >= 400:
			s.log.Warnw("HTTP request", fields...)
		default:
			s.log.Debugw("HTTP request", fields...)
		}
	}
}

// Start starts the HTTP server in a goroutine
// Returns immediately after starting the server
func (s *Server) Start() error {
	go func() {
		s.log.Infow("API server starting",
			"port", s.port,
			"app_id", s.client.AppID(),
		)

		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Errorw("API server error", "error", err)
		}
	}()

	return nil
}

// Shutdown gracefully shuts down the HTTP server
// Waits for active connections to close or context to timeout
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Infow("API server shutting down")
	return s.httpServer.Shutdown(ctx)
}
