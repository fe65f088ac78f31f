package driven

import (
	"context"

	"github.com/custodia-labs/bioorbit/internal/core/domain"
)

// PostProcessor turns a record into chunks or refines existing chunks.
// PostProcessors are chained in a pipeline (e.g., chunking, attribute extraction).
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process takes a record and returns chunks.
	// A creating processor (the chunker) receives nil and returns new chunks.
	// A refining processor receives chunks and returns them annotated.
	Process(ctx context.Context, record *domain.SourceRecord, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline chains multiple PostProcessors.
type PostProcessorPipeline interface {
	// Process runs the record through all processors in order.
	Process(ctx context.Context, record *domain.SourceRecord) ([]domain.Chunk, error)
}
