package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/dossier/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"a question about the JFK assassination records"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer   string          `json:"answer"`
	Sources  []domain.Source `json:"sources"`
	Grounded bool            `json:"grounded"`
}

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"text to find relevant passages for"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of passages to return (default from settings)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput is a single ranked passage.
type SearchResultOutput struct {
	Title      string  `json:"title"`
	Path       string  `json:"path"`
	URL        string  `json:"url"`
	ChunkIndex int     `json:"chunk_index"`
	Similarity float64 `json:"similarity"`
	Rank       float64 `json:"rank"`
	Content    string  `json:"content"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question from the declassified JFK files, citing source documents",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Find the passages in the JFK files most similar to a query",
	}, s.handleSearch)
}

func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	// A client disconnect does not abandon a question already in flight.
	answer, err := s.ports.Questions.Ask(context.WithoutCancel(ctx), input.Question)
	if err != nil {
		return nil, AskOutput{}, err
	}

	sources := answer.Sources
	if sources == nil {
		sources = []domain.Source{}
	}
	return nil, AskOutput{
		Answer:   answer.Text,
		Sources:  sources,
		Grounded: answer.HasContext(),
	}, nil
}

func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit < 0 {
		limit = 0
	}

	results, err := s.ports.Search.Search(context.WithoutCancel(ctx), input.Query, limit)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}
	for i := range results {
		output.Results[i] = SearchResultOutput{
			Title:      results[i].Document.Title,
			Path:       results[i].Document.Path,
			URL:        results[i].Document.URL,
			ChunkIndex: results[i].Chunk.Index,
			Similarity: results[i].Similarity,
			Rank:       results[i].Rank,
			Content:    results[i].Chunk.Content,
		}
	}

	return nil, output, nil
}
