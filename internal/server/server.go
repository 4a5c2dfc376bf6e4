// Package server exposes a Query Executor over HTTP
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"autosearch/internal/query"
	"autosearch/internal/source"
)

const shutdownTimeout = 5 * time.Second

// suggestionsRequest holds the query string of GET /suggestions
type suggestionsRequest struct {
	Q     string `form:"q" binding:"required"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

// Server answers suggestion requests from an executor
type Server struct {
	executor query.Executor
	limit    int
	logger   *log.Logger
	router   *gin.Engine
}

// New creates a server. Responses hold at most limit suggestions unless the
// request asks for fewer.
func New(executor query.Executor, limit int, logger *log.Logger) *Server {
	if limit <= 0 {
		limit = query.DefaultLimit
	}
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		executor: executor,
		limit:    limit,
		logger:   logger,
	}

	r := gin.New()
	r.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	r.GET("/healthz", s.healthHandler)
	r.GET("/suggestions", s.suggestionsHandler)
	s.router = r
	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve accepts connections on ln until ctx is done
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Printf("Serving suggestions on %s", ln.Addr())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) suggestionsHandler(c *gin.Context) {
	var req suggestionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items, err := s.executor.Query(c.Request.Context(), req.Q)
	if err != nil {
		s.logger.Printf("Query %q failed: %v", req.Q, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	limit := s.limit
	if req.Limit > 0 && req.Limit < limit {
		limit = req.Limit
	}
	if len(items) > limit {
		items = items[:limit]
	}
	c.JSON(http.StatusOK, source.SuggestionsResponse{Query: req.Q, Suggestions: items})
}
