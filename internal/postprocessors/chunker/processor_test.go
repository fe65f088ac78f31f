package chunker

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/bioorbit/internal/core/domain"
)

type fixedSimilarity struct {
	score float64
	err   error
	calls int
}

func (s *fixedSimilarity) Similarity(_ context.Context, _, _ string) (float64, error) {
	s.calls++
	return s.score, s.err
}

const abstract = "Insulin binds its receptor with high affinity. " +
	"The binding free energy was measured by calorimetry. " +
	"Mutations in the alpha subunit reduced affinity tenfold! " +
	"Is the beta subunit involved?\n" +
	"Further work is needed to resolve the allosteric mechanism."

func TestNew_Defaults(t *testing.T) {
	p := New()
	assert.Equal(t, "chunker", p.Name())
	assert.Equal(t, DefaultMaxSize, p.maxSize)
	assert.Equal(t, DefaultMinSize, p.minSize)
	assert.Equal(t, DefaultThreshold, p.threshold)
	assert.Nil(t, p.similarity)
}

func TestNew_IgnoresInvalidOptions(t *testing.T) {
	p := New(WithMaxSize(0), WithMinSize(-1), WithThreshold(1.5))
	assert.Equal(t, DefaultMaxSize, p.maxSize)
	assert.Equal(t, DefaultMinSize, p.minSize)
	assert.Equal(t, DefaultThreshold, p.threshold)
}

func TestSplit_Empty(t *testing.T) {
	p := New()
	assert.Empty(t, p.Split(context.Background(), ""))
	assert.Empty(t, p.Split(context.Background(), "   \n"))
}

func TestSplit_ShortTextUnchanged(t *testing.T) {
	p := New()
	text := "  Short note. Two.  "
	assert.Equal(t, []string{text}, p.Split(context.Background(), text))
}

func TestSplit_FallbackRespectsMaxSize(t *testing.T) {
	p := New(WithMaxSize(80))
	passages := p.Split(context.Background(), abstract)

	require.Greater(t, len(passages), 1)
	for _, passage := range passages {
		assert.NotEmpty(t, passage)
		assert.Equal(t, strings.TrimSpace(passage), passage)
		assert.LessOrEqual(t, utf8.RuneCountInString(passage), 80)
	}
}

func TestSplit_FallbackPreservesContent(t *testing.T) {
	p := New(WithMaxSize(80))
	passages := p.Split(context.Background(), abstract)

	joined := strings.Join(passages, " ")
	assert.Equal(t, strings.Fields(abstract), strings.Fields(joined))
}

func TestSplit_OversizedSentenceEmittedWhole(t *testing.T) {
	long := strings.Repeat("a", 120)
	text := "First sentence is here. " + long + ". Last one here."
	p := New(WithMaxSize(60))

	passages := p.Split(context.Background(), text)
	assert.Contains(t, passages, long+".")
}

func TestSplit_SemanticKeepsSimilarTogether(t *testing.T) {
	sim := &fixedSimilarity{score: 0.9}
	p := New(WithSimilarity(sim))

	passages := p.Split(context.Background(), abstract)
	assert.Len(t, passages, 1)
	assert.Positive(t, sim.calls)
}

func TestSplit_SemanticBreaksOnLowSimilarity(t *testing.T) {
	sim := &fixedSimilarity{score: 0.1}
	p := New(WithSimilarity(sim))

	passages := p.Split(context.Background(), abstract)
	assert.Equal(t, []string{
		"Insulin binds its receptor with high affinity.",
		"The binding free energy was measured by calorimetry.",
		"Mutations in the alpha subunit reduced affinity tenfold!",
		"Is the beta subunit involved?",
		"Further work is needed to resolve the allosteric mechanism.",
	}, passages)
}

func TestSplit_SemanticFailureFallsBack(t *testing.T) {
	sim := &fixedSimilarity{err: errors.New("model offline")}
	withSim := New(WithSimilarity(sim), WithMaxSize(80))
	plain := New(WithMaxSize(80))

	assert.Equal(t,
		plain.Split(context.Background(), abstract),
		withSim.Split(context.Background(), abstract))
}

func TestProcess_BuildsChunks(t *testing.T) {
	p := New(WithMaxSize(80))
	record := &domain.SourceRecord{ID: "42", Abstract: abstract}

	chunks, err := p.Process(context.Background(), record, nil)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	for i, c := range chunks {
		assert.Equal(t, "42", c.RecordID)
		assert.Equal(t, i, c.Ordinal)
		assert.Equal(t, utf8.RuneCountInString(c.Text), c.Length)
	}
}

func TestProcess_NilRecord(t *testing.T) {
	_, err := New().Process(context.Background(), nil, nil)
	assert.Error(t, err)
}

func TestSplitUnits_Reconstructs(t *testing.T) {
	text := "One. Two!  Three?\nFour 3.5 kcal\n\nend"
	units := splitUnits(text)
	assert.Equal(t, text, strings.Join(units, ""))
	assert.Equal(t, []string{"One. ", "Two!  ", "Three?\n", "Four 3.5 kcal\n\n", "end"}, units)
}
