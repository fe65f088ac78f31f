package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/bioorbit/internal/core/domain"
	"github.com/custodia-labs/bioorbit/internal/core/ports/driven"
)

// DefaultWatermarkKey is the row holding the ingestion watermark.
const DefaultWatermarkKey = "ingest"

// watermarkStore implements driven.WatermarkStore over the watermarks table.
type watermarkStore struct {
	store *Store
	key   string
}

var _ driven.WatermarkStore = (*watermarkStore)(nil)

// Get returns the stored watermark, or nil when none exists.
func (w *watermarkStore) Get(ctx context.Context) (*time.Time, error) {
	var value string
	err := w.store.db.QueryRowContext(ctx, "SELECT value FROM watermarks WHERE key = ?", w.key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading watermark: %w", err)
	}

	t, err := domain.ParseWatermark(value)
	if err != nil {
		return nil, fmt.Errorf("decoding watermark: %w", err)
	}
	return &t, nil
}

// Set replaces the watermark in a single statement.
func (w *watermarkStore) Set(ctx context.Context, date time.Time) error {
	_, err := w.store.db.ExecContext(ctx, `
		INSERT INTO watermarks (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, w.key, domain.FormatWatermark(date), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("writing watermark: %w", err)
	}
	return nil
}

// Clear removes the watermark row.
func (w *watermarkStore) Clear(ctx context.Context) error {
	if _, err := w.store.db.ExecContext(ctx, "DELETE FROM watermarks WHERE key = ?", w.key); err != nil {
		return fmt.Errorf("clearing watermark: %w", err)
	}
	return nil
}
