package driving

import (
	"context"

	"github.com/custodia-labs/bioorbit/internal/core/domain"
)

// IngestionService runs incremental, duplicate-aware ingestion.
type IngestionService interface {
	// Run executes one ingestion run. The report is non-nil even on error.
	Run(ctx context.Context, req domain.IngestRequest) (*domain.IngestReport, error)

	// Running reports whether a run is in progress in this process.
	Running() bool
}
