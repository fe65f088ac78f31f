// Package ingest provides the ingestion view: the current watermark, a
// trigger for a new run and the report of the last one.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/bioorbit/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/bioorbit/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/bioorbit/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/bioorbit/internal/core/domain"
	"github.com/custodia-labs/bioorbit/internal/core/ports/driving"
)

// ErrNoIngestService indicates that the view was built without an ingestion service.
var ErrNoIngestService = errors.New("ingest: no ingestion service configured")

// View shows ingestion state.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	ingest    driving.IngestionService
	watermark driving.WatermarkService
	ctx       context.Context

	current *domain.IngestReport
	mark    string
	running bool
	err     error
	width   int
	height  int
	ready   bool
}

// NewView creates the ingestion view. watermark may be nil.
func NewView(
	s *styles.Styles, km *keymap.KeyMap,
	ingest driving.IngestionService, watermark driving.WatermarkService,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles:    s,
		keymap:    km,
		ingest:    ingest,
		watermark: watermark,
		ctx:       context.Background(),
		width:     80,
		height:    24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the watermark.
func (v *View) Init() tea.Cmd {
	return v.loadWatermark()
}

func (v *View) loadWatermark() tea.Cmd {
	if v.watermark == nil {
		return nil
	}
	svc := v.watermark
	ctx := v.ctx
	return func() tea.Msg {
		wm, err := svc.GetWatermark(ctx)
		return messages.WatermarkLoaded{Watermark: wm, Err: err}
	}
}

// Update handles messages for the ingestion view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case messages.WatermarkLoaded:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.mark = "none (next run fetches all matching records)"
		if msg.Watermark != nil {
			v.mark = domain.FormatWatermark(*msg.Watermark)
		}

	case messages.IngestCompleted:
		v.running = false
		v.current = msg.Report
		v.err = msg.Err
		return v, v.loadWatermark()

	case tea.KeyMsg:
		switch {
		case msg.Type == tea.KeyEsc:
			return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewMenu} }
		case keymap.Matches(msg.String(), v.keymap.Ingest):
			return v, v.start()
		}
	}
	return v, nil
}

// start launches a run unless one is already active.
func (v *View) start() tea.Cmd {
	if v.running {
		return nil
	}
	if v.ingest == nil {
		v.err = ErrNoIngestService
		return nil
	}
	v.running = true
	v.err = nil
	svc := v.ingest
	ctx := v.ctx
	return func() tea.Msg {
		report, err := svc.Run(ctx, domain.IngestRequest{})
		return messages.IngestCompleted{Report: report, Err: err}
	}
}

// View renders the ingestion view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Ingestion"))
	b.WriteString("\n\n")
	b.WriteString(v.styles.Normal.Render("Watermark: "))
	if v.mark == "" {
		b.WriteString(v.styles.Muted.Render("unknown"))
	} else {
		b.WriteString(v.styles.Subtitle.Render(v.mark))
	}
	b.WriteString("\n\n")

	switch {
	case v.running:
		b.WriteString(v.styles.Warning.Render("Ingesting..."))
		b.WriteString("\n")
	case v.current != nil:
		b.WriteString(v.renderReport(v.current))
	}

	if v.err != nil {
		b.WriteString("\n")
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n")
	}

	hints := make([]string, 0, 2)
	for _, k := range v.keymap.IngestHelp() {
		h := k.Help()
		hints = append(hints, fmt.Sprintf("[%s] %s", h.Key, h.Desc))
	}
	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render(strings.Join(hints, "  ")))
	return b.String()
}

func (v *View) renderReport(r *domain.IngestReport) string {
	status := v.styles.Success
	if r.Status == domain.IngestStatusFailed {
		status = v.styles.Error
	}
	c := r.Counts
	lines := []string{
		"Last run: " + status.Render(string(r.Status)),
		v.styles.Muted.Render(r.Message),
		fmt.Sprintf("  fetched %d  duplicates %d  skipped %d", c.Fetched, c.Duplicates, c.SkippedEmpty),
		fmt.Sprintf("  chunks %d  embedded %d  upserted %d", c.Chunks, c.Embedded, c.Upserted),
	}
	if r.Duration > 0 {
		lines = append(lines, v.styles.Muted.Render("  took "+r.Duration.Round(1e6).String()))
	}
	return strings.Join(lines, "\n") + "\n"
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Running reports whether a run started from this view is in flight.
func (v *View) Running() bool {
	return v.running
}

// Report returns the last report, or nil.
func (v *View) Report() *domain.IngestReport {
	return v.current
}

// Err returns the last error, if any.
func (v *View) Err() error {
	return v.err
}
