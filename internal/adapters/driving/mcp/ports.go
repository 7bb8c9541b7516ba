package mcp

import (
	"github.com/custodia-labs/docsync/internal/core/ports/driving"
)

// Ports aggregates the driving ports the MCP server calls.
type Ports struct {
	// Search runs queries.
	Search driving.SearchService

	// Index runs maintenance operations.
	Index driving.IndexAdmin

	// Records backs the record resources. Optional.
	Records driving.RecordService

	// Health backs the health resource. Optional.
	Health driving.HealthService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	if p.Index == nil {
		return ErrMissingIndexAdmin
	}
	return nil
}
