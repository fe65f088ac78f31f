// Package tui provides an interactive terminal user interface for bioorbit.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/bioorbit/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces used by the TUI.
type Ports struct {
	// Search runs similarity queries.
	Search driving.SearchService

	// Ingest triggers ingestion runs. Optional; the menu hides ingestion without it.
	Ingest driving.IngestionService

	// Watermark reads the ingestion watermark. Optional.
	Watermark driving.WatermarkService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(
	search driving.SearchService,
	ingest driving.IngestionService,
	watermark driving.WatermarkService,
) *Ports {
	return &Ports{
		Search:    search,
		Ingest:    ingest,
		Watermark: watermark,
	}
}

// Validate ensures the required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
