package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/dossier/internal/core/ports/driving"
	"github.com/custodia-labs/dossier/internal/logger"
)

const shutdownTimeout = 10 * time.Second

// Server is the REST front end.
type Server struct {
	questions driving.QuestionService
	ingest    driving.IngestService
	engine    *gin.Engine
}

// NewServer builds the router. corsOrigins lists the browser origins
// allowed to call the API; "*" allows any.
func NewServer(questions driving.QuestionService, ingest driving.IngestService, corsOrigins []string) *Server {
	engine := gin.New()
	engine.Use(gin.Recovery())
	if logger.IsVerbose() {
		engine.Use(gin.LoggerWithWriter(logger.Output()))
	}
	engine.Use(corsMiddleware(corsOrigins))

	s := &Server{
		questions: questions,
		ingest:    ingest,
		engine:    engine,
	}

	engine.GET("/health", s.handleHealth)
	api := engine.Group("/api")
	api.GET("/search", s.handleSearch)
	api.POST("/init-files", s.handleInitFiles)

	return s
}

// Handler returns the underlying http.Handler.
func (s *Server) Handler() http.Handler {
	return s.engine
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
		logger.Info("Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen on %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}
	return nil
}
