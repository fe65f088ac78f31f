package driven

import (
	"context"

	"github.com/custodia-labs/bioorbit/internal/core/domain"
)

// EventPublisher announces completed ingestion runs to other systems.
type EventPublisher interface {
	// PublishIngest emits one event describing the report.
	PublishIngest(ctx context.Context, report *domain.IngestReport) error

	// Close releases resources.
	Close() error
}
