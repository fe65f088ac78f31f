package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/bioorbit/internal/core/domain"
	"github.com/custodia-labs/bioorbit/internal/core/ports/driven"
	"github.com/custodia-labs/bioorbit/internal/core/ports/driving"
)

// Ensure StateService implements the interface.
var _ driving.WatermarkService = (*StateService)(nil)

// StateService owns the ingestion watermark and the set of ingested identifiers.
type StateService struct {
	watermarks driven.WatermarkStore
	index      driven.VectorIndex
}

// NewStateService creates a state service.
func NewStateService(watermarks driven.WatermarkStore, index driven.VectorIndex) *StateService {
	return &StateService{
		watermarks: watermarks,
		index:      index,
	}
}

// GetWatermark returns the last successful cutoff, or nil before the first run.
func (s *StateService) GetWatermark(ctx context.Context) (*time.Time, error) {
	wm, err := s.watermarks.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: get watermark: %w", domain.ErrState, err)
	}
	return wm, nil
}

// SetWatermark stores date, truncated to its UTC calendar day.
func (s *StateService) SetWatermark(ctx context.Context, date time.Time) error {
	if date.IsZero() {
		return fmt.Errorf("%w: watermark date is required", domain.ErrInvalidInput)
	}
	if err := s.watermarks.Set(ctx, domain.TruncateToDate(date)); err != nil {
		return fmt.Errorf("%w: set watermark: %w", domain.ErrState, err)
	}
	return nil
}

// ResetWatermark clears the watermark.
func (s *StateService) ResetWatermark(ctx context.Context) error {
	if err := s.watermarks.Clear(ctx); err != nil {
		return fmt.Errorf("%w: reset watermark: %w", domain.ErrState, err)
	}
	return nil
}

// ListIngestedIdentifiers returns every record ID present in the index.
func (s *StateService) ListIngestedIdentifiers(ctx context.Context) (map[string]struct{}, error) {
	ids, err := s.index.ListIdentifiers(ctx, domain.FieldPMID)
	if err != nil {
		return nil, fmt.Errorf("%w: list identifiers: %w", domain.ErrIndex, err)
	}
	return ids, nil
}
