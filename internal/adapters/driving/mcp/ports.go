package mcp

import (
	"github.com/custodia-labs/bioorbit/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search provides retrieval.
	Search driving.SearchService

	// Ingest triggers ingestion runs. Optional.
	Ingest driving.IngestionService

	// Watermark exposes the ingestion watermark. Optional.
	Watermark driving.WatermarkService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
