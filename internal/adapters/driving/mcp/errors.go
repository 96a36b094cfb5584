// Package mcp exposes the question service to MCP clients. It registers the
// ask and search tools and read-only corpus resources.
package mcp

import "errors"

// ErrMissingQuestionService is returned when no question service is provided.
var ErrMissingQuestionService = errors.New("mcp: question service is required")

// ErrMissingSearchService is returned when no search service is provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")
