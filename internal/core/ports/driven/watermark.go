package driven

import (
	"context"
	"time"
)

// WatermarkStore persists the single ingestion watermark.
type WatermarkStore interface {
	// Get returns the stored watermark, or nil when none exists.
	Get(ctx context.Context) (*time.Time, error)

	// Set replaces the watermark atomically. A failed Set leaves the
	// previous value intact.
	Set(ctx context.Context, date time.Time) error

	// Clear removes the watermark so the next run is a first run.
	Clear(ctx context.Context) error
}
