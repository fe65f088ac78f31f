// Package keymap defines keybindings for the TUI.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the TUI.
type KeyMap struct {
	// Quit exits the application.
	Quit key.Binding

	// Help shows the help view.
	Help key.Binding

	// Back returns to the previous view.
	Back key.Binding

	// Search submits the query.
	Search key.Binding

	// Up navigates up in a list.
	Up key.Binding

	// Down navigates down in a list.
	Down key.Binding

	// Select opens the selected result.
	Select key.Binding

	// NewSearch starts a new search from results view.
	NewSearch key.Binding

	// Modality cycles text, protein and molecule.
	Modality key.Binding

	// LessDiverse moves lambda towards pure relevance.
	LessDiverse key.Binding

	// MoreDiverse moves lambda towards diversity.
	MoreDiverse key.Binding

	// Ingest starts an ingestion run.
	Ingest key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Search: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "search"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		NewSearch: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new search"),
		),
		Modality: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "modality"),
		),
		LessDiverse: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "relevance"),
		),
		MoreDiverse: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "diversity"),
		),
		Ingest: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "run ingest"),
		),
	}
}

// ShortHelp returns a short list of keybindings for the status bar.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Modality, k.LessDiverse, k.MoreDiverse, k.Back}
}

// ResultsHelp returns keybindings for the results view.
func (k *KeyMap) ResultsHelp() []key.Binding {
	return []key.Binding{k.NewSearch, k.Up, k.Select, k.Back}
}

// IngestHelp returns keybindings for the ingest view.
func (k *KeyMap) IngestHelp() []key.Binding {
	return []key.Binding{k.Ingest, k.Back}
}

// FullHelp returns the full list of keybindings for the help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select},
		{k.Search, k.NewSearch, k.Back},
		{k.Modality, k.LessDiverse, k.MoreDiverse},
		{k.Ingest, k.Help, k.Quit},
	}
}

// Matches checks if a key string matches a binding.
func Matches(keyStr string, binding key.Binding) bool {
	for _, k := range binding.Keys() {
		if k == keyStr {
			return true
		}
	}
	return false
}
