package http

import (
	"errors"

	"github.com/custodia-labs/bioorbit/internal/core/ports/driving"
)

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("http: search service is required")

// Ports aggregates the driving ports served over HTTP.
type Ports struct {
	// Search provides retrieval. Required.
	Search driving.SearchService

	// Ingest triggers ingestion. Optional; without it the ingest routes 503.
	Ingest driving.IngestionService

	// Watermark exposes the watermark. Optional.
	Watermark driving.WatermarkService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
