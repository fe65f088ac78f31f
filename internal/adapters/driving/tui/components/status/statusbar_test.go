package status

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/bioorbit/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/bioorbit/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/bioorbit/internal/core/domain"
)

func TestNewBar(t *testing.T) {
	bar := NewBar(styles.DefaultStyles(), keymap.DefaultKeyMap())

	require.NotNil(t, bar)
	assert.Equal(t, StateReady, bar.State())
	assert.Equal(t, "", bar.Message())
	assert.Equal(t, 0, bar.ResultCount())
	assert.Equal(t, 80, bar.Width())
}

func TestNewBar_NilArgs(t *testing.T) {
	bar := NewBar(nil, nil)
	assert.NotNil(t, bar.styles)
	assert.NotNil(t, bar.keymap)
}

func TestBar_InitAndUpdate(t *testing.T) {
	bar := NewBar(nil, nil)
	assert.Nil(t, bar.Init())

	updated, cmd := bar.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Same(t, bar, updated)
	assert.Nil(t, cmd)
}

func TestBar_ViewStates(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*Bar)
		want  string
	}{
		{"ready", func(*Bar) {}, "Ready"},
		{"searching", func(b *Bar) { b.SetState(StateSearching) }, "Searching..."},
		{"ingesting", func(b *Bar) { b.SetState(StateIngesting) }, "Ingesting..."},
		{"error with message", func(b *Bar) {
			b.SetState(StateError)
			b.SetMessage("index offline")
		}, "Error: index offline"},
		{"error bare", func(b *Bar) { b.SetState(StateError) }, "Error"},
		{"results", func(b *Bar) {
			b.SetState(StateResults)
			b.SetResultCount(7)
		}, "7 results"},
		{"message", func(b *Bar) { b.SetMessage("ingested 4 passages") }, "ingested 4 passages"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := NewBar(nil, nil)
			bar.SetWidth(160)
			tt.setup(bar)
			assert.Contains(t, bar.View(), tt.want)
		})
	}
}

func TestBar_ViewShowsTuning(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(160)
	bar.SetTuning(domain.ModalityMolecule, 0.7)

	view := bar.View()
	assert.Contains(t, view, "molecule")
	assert.Contains(t, view, "λ 0.70")
}

func TestBar_HintsFollowState(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(200)
	assert.Contains(t, bar.View(), "tab: modality")

	bar.SetState(StateResults)
	bar.SetResultCount(2)
	assert.Contains(t, bar.View(), "n: new search")
}

func TestBar_Clear(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetState(StateError)
	bar.SetMessage("boom")
	bar.SetResultCount(3)
	bar.SetTuning(domain.ModalityProtein, 0.2)

	bar.Clear()

	assert.Equal(t, StateReady, bar.State())
	assert.Equal(t, "", bar.Message())
	assert.Equal(t, 0, bar.ResultCount())
	assert.Equal(t, domain.ModalityProtein, bar.modality)
}
