package bolt

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatermarkStore_Lifecycle(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := NewWatermarkStore(dir)
	require.NoError(t, err)

	got, err := s.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	day := time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.Set(ctx, day))
	require.NoError(t, s.Close())

	reopened, err := NewWatermarkStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	got, err = reopened.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Equal(day))

	require.NoError(t, reopened.Clear(ctx))
	got, err = reopened.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}
