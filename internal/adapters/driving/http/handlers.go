package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/logger"
)

const (
	msgQueryRequired    = "Query parameter is required"
	msgInternalError    = "Internal server error"
	msgAlreadyInitiated = "Files already initialized"
	msgInitialized      = "Files initialized successfully"
)

type searchResponse struct {
	Answer  string          `json:"answer"`
	Sources []domain.Source `json:"sources"`
}

type initResponse struct {
	Message    string `json:"message"`
	FileCount  int    `json:"fileCount"`
	ChunkCount int    `json:"chunkCount"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleSearch(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: msgQueryRequired})
		return
	}

	// The answer is still produced if the client goes away mid-request.
	ctx := context.WithoutCancel(c.Request.Context())

	answer, err := s.questions.Ask(ctx, query)
	if err != nil {
		s.fail(c, "search", err)
		return
	}

	sources := answer.Sources
	if sources == nil {
		sources = []domain.Source{}
	}
	c.JSON(http.StatusOK, searchResponse{Answer: answer.Text, Sources: sources})
}

func (s *Server) handleInitFiles(c *gin.Context) {
	ctx := context.WithoutCancel(c.Request.Context())

	report, err := s.ingest.Ingest(ctx)
	if err != nil {
		s.fail(c, "init-files", err)
		return
	}

	msg := msgInitialized
	if report.AlreadyInitialized {
		msg = msgAlreadyInitiated
	}
	c.JSON(http.StatusOK, initResponse{
		Message:    msg,
		FileCount:  report.Files,
		ChunkCount: report.Chunks,
	})
}

// fail maps err to a status code. Validation errors carry their message;
// anything else is logged and hidden behind a generic 500.
func (s *Server) fail(c *gin.Context, route string, err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, errorResponse{Error: verr.Error()})
		return
	}
	logger.Error("%s: %v", route, err)
	c.JSON(http.StatusInternalServerError, errorResponse{Error: msgInternalError})
}
