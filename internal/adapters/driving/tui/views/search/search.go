// Package search provides the main search view for the TUI.
package search

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/bioorbit/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/bioorbit/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/bioorbit/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/bioorbit/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/bioorbit/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/bioorbit/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/bioorbit/internal/core/domain"
	"github.com/custodia-labs/bioorbit/internal/core/ports/driving"
)

// LambdaStep is the change applied by one [ or ] press.
const LambdaStep = 0.1

// View represents the search view with input, results list, detail pane
// and status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.SearchInput
	list      *list.ResultList
	statusbar *status.Bar
	detail    viewport.Model

	searchService driving.SearchService
	ctx           context.Context

	modality   domain.Modality
	lambda     float64
	lastQuery  string
	width      int
	height     int
	ready      bool
	err        error
	focusInput bool // true = typing a query, false = navigating results
	showDetail bool
}

// NewView creates a new search view.
func NewView(s *styles.Styles, km *keymap.KeyMap, searchService driving.SearchService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:        s,
		keymap:        km,
		input:         input.NewSearchInput(s),
		list:          list.NewResultList(s),
		statusbar:     status.NewBar(s, km),
		detail:        viewport.New(80, 10),
		searchService: searchService,
		ctx:           context.Background(),
		modality:      domain.ModalityText,
		lambda:        domain.DefaultDiversityLambda,
		width:         80,
		height:        24,
		focusInput:    true,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the search view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.SearchCompleted:
		v.handleSearchCompleted(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	if v.focusInput {
		v.input, cmd = v.input.Update(msg)
	}
	return v, cmd
}

//nolint:gocyclo // key dispatch
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.showDetail {
		switch msg.String() {
		case "esc", "enter", "q":
			v.showDetail = false
			return v, nil
		}
		var cmd tea.Cmd
		v.detail, cmd = v.detail.Update(msg)
		return v, cmd
	}

	if msg.Type == tea.KeyEsc {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	if keymap.Matches(msg.String(), v.keymap.Modality) {
		v.CycleModality()
		return v, v.rerun()
	}

	if v.focusInput {
		if msg.Type == tea.KeyEnter {
			query := strings.TrimSpace(v.input.Value())
			if query == "" {
				return v, nil
			}
			v.focusInput = false
			v.input.Blur()
			return v, v.performSearch(query)
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	switch msg.String() {
	case "up", "k":
		v.list.MoveUp()
	case "down", "j":
		v.list.MoveDown()
	case "enter":
		v.openDetail()
	case "n":
		v.focusInput = true
		v.input.SetValue("")
		return v, v.input.Focus()
	case "[":
		v.AdjustLambda(-LambdaStep)
		return v, v.rerun()
	case "]":
		v.AdjustLambda(LambdaStep)
		return v, v.rerun()
	}
	return v, nil
}

// CycleModality switches text -> protein -> molecule -> text.
func (v *View) CycleModality() {
	all := domain.AllModalities()
	for i, m := range all {
		if m == v.modality {
			v.modality = all[(i+1)%len(all)]
			break
		}
	}
	v.input.SetModality(v.modality)
	v.statusbar.SetTuning(v.modality, v.lambda)
}

// AdjustLambda moves lambda by delta, clamped to [0, 1].
func (v *View) AdjustLambda(delta float64) {
	l := math.Round((v.lambda+delta)*100) / 100
	v.lambda = math.Max(0, math.Min(1, l))
	v.statusbar.SetTuning(v.modality, v.lambda)
}

// rerun repeats the last query with the current tuning, if there is one.
func (v *View) rerun() tea.Cmd {
	if v.lastQuery == "" || v.focusInput {
		return nil
	}
	return v.performSearch(v.lastQuery)
}

func (v *View) performSearch(query string) tea.Cmd {
	v.lastQuery = query
	v.statusbar.SetState(status.StateSearching)
	v.statusbar.SetMessage("")

	req := domain.SearchRequest{
		Query:           query,
		Modality:        v.modality,
		DiversityLambda: domain.Float64(v.lambda),
	}
	svc := v.searchService
	ctx := v.ctx
	return func() tea.Msg {
		if svc == nil {
			return messages.ErrorOccurred{Err: ErrNoSearchService}
		}
		results, err := svc.Search(ctx, req)
		return messages.SearchCompleted{Results: results, Err: err}
	}
}

func (v *View) handleSearchCompleted(msg messages.SearchCompleted) {
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}

	v.err = nil
	v.list.SetResults(msg.Results)
	v.statusbar.SetState(status.StateResults)
	v.statusbar.SetResultCount(len(msg.Results))
	v.focusInput = false
	v.input.Blur()
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

func (v *View) openDetail() {
	r := v.list.SelectedResult()
	if r == nil {
		return
	}
	v.detail.SetContent(v.renderDetail(r))
	v.detail.GotoTop()
	v.showDetail = true
}

func (v *View) renderDetail(r *domain.SearchResult) string {
	p := r.Payload
	lines := []string{
		v.styles.Subtitle.Render(p.Title),
		v.styles.Muted.Render(fmt.Sprintf("PMID %s  ·  passage %d  ·  score %.3f", p.PMID, p.ChunkIndex, r.Score)),
	}
	if p.URL != "" {
		lines = append(lines, v.styles.Muted.Render(p.URL))
	}
	if p.DeltaG != 0 {
		lines = append(lines, v.styles.Attribute.Render(fmt.Sprintf("ΔG %.2f kcal/mol", p.DeltaG)))
	}
	body := lipgloss.NewStyle().Width(v.detail.Width).Render(p.Chunk)
	lines = append(lines, "", body)
	return strings.Join(lines, "\n")
}

// View renders the search view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 8)
	sections = append(sections, v.styles.Title.Render("BioOrbit"), "", v.input.View(), "")

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	if v.showDetail {
		sections = append(sections, v.styles.Border.Render(v.detail.View()))
	} else {
		sections = append(sections, v.list.View())
	}

	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.list.SetDimensions(width, height-10)
	v.statusbar.SetWidth(width)

	v.detail.Width = max(width-4, 20)
	v.detail.Height = max(height-12, 3)
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Query returns the current search query.
func (v *View) Query() string {
	return v.input.Value()
}

// SetQuery sets the search query.
func (v *View) SetQuery(query string) {
	v.input.SetValue(query)
}

// Modality returns the modality searched next.
func (v *View) Modality() domain.Modality {
	return v.modality
}

// Lambda returns the diversity lambda sent with each search.
func (v *View) Lambda() float64 {
	return v.lambda
}

// Results returns the current search results.
func (v *View) Results() []domain.SearchResult {
	return v.list.Results()
}

// SelectedIndex returns the index of the selected result.
func (v *View) SelectedIndex() int {
	return v.list.Selected()
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// DetailOpen reports whether the detail pane is showing.
func (v *View) DetailOpen() bool {
	return v.showDetail
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}

// Reset returns to input mode with an empty query. Tuning is kept.
func (v *View) Reset() {
	v.focusInput = true
	v.showDetail = false
	v.lastQuery = ""
	v.input.Focus()
	v.input.SetValue("")
	v.list.SetResults(nil)
	v.err = nil
	v.statusbar.Clear()
}
