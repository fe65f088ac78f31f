// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"time"

	"github.com/custodia-labs/bioorbit/internal/core/domain"
)

// SearchRequested is a command to perform a search.
type SearchRequested struct {
	Request domain.SearchRequest
}

// SearchCompleted carries search results back to the model.
type SearchCompleted struct {
	Results []domain.SearchResult
	Err     error
}

// ResultSelected is sent when a search result is opened in the detail pane.
type ResultSelected struct {
	Index int
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewSearch is the search input and results view.
	ViewSearch
	// ViewIngest shows the watermark and runs ingestion.
	ViewIngest
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewSearch:
		return "search"
	case ViewIngest:
		return "ingest"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// IngestStarted is sent when a run begins.
type IngestStarted struct{}

// IngestCompleted carries the report of a finished run.
// Report is non-nil even when Err is set.
type IngestCompleted struct {
	Report *domain.IngestReport
	Err    error
}

// WatermarkLoaded carries the current watermark. Nil means no run has completed.
type WatermarkLoaded struct {
	Watermark *time.Time
	Err       error
}
