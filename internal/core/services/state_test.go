package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/bioorbit/internal/core/domain"
)

func TestStateService_Watermark(t *testing.T) {
	ctx := context.Background()
	store := &mockWatermarkStore{}
	s := NewStateService(store, newMockVectorIndex())

	wm, err := s.GetWatermark(ctx)
	require.NoError(t, err)
	assert.Nil(t, wm, "first run has no watermark")

	require.NoError(t, s.SetWatermark(ctx, time.Date(2025, 5, 1, 15, 4, 0, 0, time.UTC)))
	wm, err = s.GetWatermark(ctx)
	require.NoError(t, err)
	require.NotNil(t, wm)
	assert.Equal(t, "2025/05/01", domain.FormatWatermark(*wm))
	assert.Equal(t, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), *wm)

	require.NoError(t, s.ResetWatermark(ctx))
	wm, err = s.GetWatermark(ctx)
	require.NoError(t, err)
	assert.Nil(t, wm)
}

func TestStateService_Errors(t *testing.T) {
	ctx := context.Background()

	s := NewStateService(&mockWatermarkStore{getErr: errBoom}, newMockVectorIndex())
	_, err := s.GetWatermark(ctx)
	assert.ErrorIs(t, err, domain.ErrState)

	s = NewStateService(&mockWatermarkStore{setErr: errBoom}, newMockVectorIndex())
	assert.ErrorIs(t, s.SetWatermark(ctx, time.Now()), domain.ErrState)
	assert.ErrorIs(t, s.SetWatermark(ctx, time.Time{}), domain.ErrInvalidInput)

	index := newMockVectorIndex()
	index.listErr = errBoom
	s = NewStateService(&mockWatermarkStore{}, index)
	_, err = s.ListIngestedIdentifiers(ctx)
	assert.ErrorIs(t, err, domain.ErrIndex)
}

func TestStateService_ListIngestedIdentifiers(t *testing.T) {
	s := NewStateService(&mockWatermarkStore{}, newMockVectorIndex("1", "2"))
	got, err := s.ListIngestedIdentifiers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{"1": {}, "2": {}}, got)
}
