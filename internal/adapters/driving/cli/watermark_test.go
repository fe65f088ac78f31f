package cli

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/bioorbit/internal/core/domain"
)

func TestWatermarkShow_None(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "watermark", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "No watermark set")
}

func TestWatermarkSetThenShow(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "watermark", "set", "2024-03-09")
	require.NoError(t, err)
	assert.Contains(t, out, "Watermark set to 2024/03/09")

	require.NotNil(t, testMocks.watermark.mark)
	assert.Equal(t, time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), *testMocks.watermark.mark)

	out, err = execute(t, "watermark", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "2024/03/09")
}

func TestWatermarkSet_InvalidDate(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "watermark", "set", "yesterday")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, testMocks.watermark.mark)
}

func TestWatermarkReset(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	wm := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	testMocks.watermark.mark = &wm

	out, err := execute(t, "watermark", "reset")

	require.NoError(t, err)
	assert.Contains(t, out, "Watermark cleared.")
	assert.Nil(t, testMocks.watermark.mark)
}

func TestWatermarkShow_Error(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	testMocks.watermark.err = errors.New("corrupt state")

	_, err := execute(t, "watermark", "show")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "corrupt state")
}
