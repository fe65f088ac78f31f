package list

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/bioorbit/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/bioorbit/internal/core/domain"
)

func sampleResults() []domain.SearchResult {
	return []domain.SearchResult{
		{ID: "a", Score: 0.95, Payload: domain.Payload{PMID: "101", Title: "Kinase inhibitor binding", Chunk: "Binding was tight.", DeltaG: -9.1}},
		{ID: "b", Score: 0.85, Payload: domain.Payload{PMID: "102", Title: "Receptor dynamics", Chunk: "Loops move."}},
		{ID: "c", Score: 0.75, Payload: domain.Payload{PMID: "103", Title: "Ligand screening", Chunk: "Hits were rare."}},
	}
}

func TestNewResultList(t *testing.T) {
	l := NewResultList(styles.DefaultStyles())

	require.NotNil(t, l)
	assert.Equal(t, 0, l.Selected())
	assert.True(t, l.IsEmpty())
	assert.Nil(t, l.Init())
}

func TestNewResultList_NilStyles(t *testing.T) {
	l := NewResultList(nil)
	assert.NotNil(t, l.styles)
}

func TestResultList_SetResultsResetsSelection(t *testing.T) {
	l := NewResultList(nil)
	l.SetResults(sampleResults())
	l.SetSelected(2)
	assert.Equal(t, 2, l.Selected())

	l.SetResults(sampleResults())
	assert.Equal(t, 0, l.Selected())
	assert.Equal(t, 3, l.Count())
}

func TestResultList_Navigation(t *testing.T) {
	l := NewResultList(nil)
	l.SetResults(sampleResults())

	l.MoveUp()
	assert.Equal(t, 0, l.Selected())

	l.MoveDown()
	l.MoveDown()
	l.MoveDown()
	assert.Equal(t, 2, l.Selected())
}

func TestResultList_UpdateKeys(t *testing.T) {
	l := NewResultList(nil)
	l.SetResults(sampleResults())

	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	assert.Equal(t, 1, l.Selected())
	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 2, l.Selected())
	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	assert.Equal(t, 1, l.Selected())
	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, l.Selected())
}

func TestResultList_SetSelectedOutOfRange(t *testing.T) {
	l := NewResultList(nil)
	l.SetResults(sampleResults())
	l.SetSelected(10)
	assert.Equal(t, 0, l.Selected())
	l.SetSelected(-1)
	assert.Equal(t, 0, l.Selected())
}

func TestResultList_SelectedResult(t *testing.T) {
	l := NewResultList(nil)
	assert.Nil(t, l.SelectedResult())

	l.SetResults(sampleResults())
	l.MoveDown()
	require.NotNil(t, l.SelectedResult())
	assert.Equal(t, "102", l.SelectedResult().Payload.PMID)
}

func TestResultList_ViewEmpty(t *testing.T) {
	assert.Contains(t, NewResultList(nil).View(), "No results")
}

func TestResultList_ViewShowsPayload(t *testing.T) {
	l := NewResultList(nil)
	l.SetDimensions(120, 40)
	l.SetResults(sampleResults())

	view := l.View()
	assert.Contains(t, view, "Results (3)")
	assert.Contains(t, view, "Kinase inhibitor binding")
	assert.Contains(t, view, "PMID 101")
	assert.Contains(t, view, "ΔG -9.10")
	assert.Contains(t, view, "0.950")
	assert.Contains(t, view, "Binding was tight.")
}

func TestResultList_ViewUntitled(t *testing.T) {
	l := NewResultList(nil)
	l.SetDimensions(120, 40)
	l.SetResults([]domain.SearchResult{{Payload: domain.Payload{PMID: "1"}}})
	assert.Contains(t, l.View(), "(untitled)")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate(strings.Repeat("abcdefghij", 3), 10))
	assert.Equal(t, "ab", truncate("abcdef", 2))
	assert.Equal(t, "ΔGΔG...", truncate("ΔGΔGΔGΔGΔG", 7))
}

func TestOneLine(t *testing.T) {
	assert.Equal(t, "a b c", oneLine("a\n b\t\tc "))
}
