// Package httpapi serves the project over HTTP for the browser UI: the file
// tree, file contents, annotation CRUD, resolution and generation.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/DeusData/syl/internal/generate"
	"github.com/DeusData/syl/internal/workspace"
)

// Server routes HTTP requests to a project.
type Server struct {
	project *workspace.Project
	gen     *generate.Generator
	engine  *gin.Engine
}

// New builds the router. gen may be nil when generation is not configured.
func New(project *workspace.Project, gen *generate.Generator) *Server {
	if gen == nil {
		gen = generate.New(nil, project)
	}
	s := &Server{project: project, gen: gen, engine: gin.New()}
	s.engine.Use(gin.Recovery(), requestLogger(), cors())
	s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() {
	r := s.engine
	r.GET("/health", s.handleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	files := api.Group("/files")
	files.GET("/tree", s.handleTree)
	files.GET("/read", s.handleRead)

	ann := api.Group("/annotations")
	ann.GET("", s.handleListAnnotations)
	ann.POST("", s.handleAddAnnotation)
	ann.GET("/resolve", s.handleResolve)
	ann.GET("/orphans", s.handleOrphans)
	ann.PUT("/:id", s.handleUpdateAnnotation)
	ann.DELETE("/:id", s.handleDeleteAnnotation)

	api.GET("/paths", s.handlePaths)
	api.GET("/languages", s.handleLanguages)

	gen := api.Group("/generate")
	gen.GET("/status", s.handleGenerateStatus)
	gen.POST("", s.handleGenerate)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("http.listen", "addr", addr, "root", s.project.Root())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		slog.Info("http.shutdown")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "root": s.project.Root()})
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Debug("http.request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed_ms", time.Since(start).Milliseconds())
	}
}

// cors allows any origin, as the UI may be served from a dev server.
func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
