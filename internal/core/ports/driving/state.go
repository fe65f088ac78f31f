package driving

import (
	"context"
	"time"
)

// WatermarkService exposes the ingestion watermark to operators.
type WatermarkService interface {
	// GetWatermark returns the current watermark, or nil before the first run.
	GetWatermark(ctx context.Context) (*time.Time, error)

	// SetWatermark overrides the watermark (for example to re-ingest a window).
	SetWatermark(ctx context.Context, date time.Time) error

	// ResetWatermark clears the watermark so the next run starts from scratch.
	ResetWatermark(ctx context.Context) error
}
