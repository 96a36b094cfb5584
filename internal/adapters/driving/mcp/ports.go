package mcp

import (
	"github.com/custodia-labs/dossier/internal/core/ports/driving"
)

// Ports aggregates the driving ports the MCP server calls into.
type Ports struct {
	// Questions answers the ask tool.
	Questions driving.QuestionService

	// Search backs the search tool.
	Search driving.SearchService

	// Corpus backs the stats and document resources. Optional.
	Corpus driving.IngestService
}

// Validate ensures the required ports are set.
func (p *Ports) Validate() error {
	if p.Questions == nil {
		return ErrMissingQuestionService
	}
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
