package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatermarkStore_GetEmpty(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	got, err := store.WatermarkStore().Get(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestWatermarkStore_SetAndGet(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	wm := store.WatermarkStore()

	first := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	require.NoError(t, wm.Set(ctx, first))

	second := time.Date(2025, 2, 20, 0, 0, 0, 0, time.UTC)
	require.NoError(t, wm.Set(ctx, second))

	got, err := wm.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Equal(second))
}

func TestWatermarkStore_Clear(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	wm := store.WatermarkStore()

	require.NoError(t, wm.Set(ctx, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, wm.Clear(ctx))

	got, err := wm.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	// Clearing twice is fine.
	assert.NoError(t, wm.Clear(ctx))
}

func TestWatermarkStore_CorruptValue(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.db.Exec(`INSERT INTO watermarks (key, value, updated_at) VALUES (?, 'soon', '')`, DefaultWatermarkKey)
	require.NoError(t, err)

	_, err = store.WatermarkStore().Get(context.Background())
	assert.Error(t, err)
}
