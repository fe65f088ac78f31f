package hashing

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/bioorbit/internal/core/domain"
)

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func TestNew_Defaults(t *testing.T) {
	s := New(0)
	assert.Equal(t, domain.DefaultDimensions, s.Dimensions())
	assert.Equal(t, ModelName, s.ModelName())
	assert.NoError(t, s.Ping(context.Background()))
	assert.NoError(t, s.Close())
}

func TestEmbed_DeterministicAndNormalised(t *testing.T) {
	s := New(64)
	ctx := context.Background()

	a, err := s.Embed(ctx, "Insulin binds the insulin receptor.")
	require.NoError(t, err)
	b, err := s.Embed(ctx, "Insulin binds the insulin receptor.")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
	assert.InDelta(t, 1.0, norm(a), 1e-5)
}

func TestEmbed_SharedVocabularyIsCloser(t *testing.T) {
	s := New(256)
	ctx := context.Background()

	query, _ := s.Embed(ctx, "insulin receptor binding affinity")
	related, _ := s.Embed(ctx, "binding affinity of the insulin receptor")
	unrelated, _ := s.Embed(ctx, "volcanic ash deposits in glaciers")

	assert.Greater(t,
		domain.CosineSimilarity(query, related),
		domain.CosineSimilarity(query, unrelated))
}

func TestEmbed_EmptyText(t *testing.T) {
	v, err := New(8).Embed(context.Background(), "  ")
	require.NoError(t, err)
	assert.Equal(t, make([]float32, 8), v)
}

func TestEmbedBatch(t *testing.T) {
	s := New(16)
	vecs, err := s.EmbedBatch(context.Background(), []string{"a b", "c d", "e"})
	require.NoError(t, err)
	assert.Len(t, vecs, 3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.EmbedBatch(ctx, []string{"x"})
	assert.ErrorIs(t, err, context.Canceled)
}
