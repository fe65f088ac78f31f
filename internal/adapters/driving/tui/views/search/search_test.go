package search

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/bioorbit/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/bioorbit/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/bioorbit/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/bioorbit/internal/core/domain"
)

// MockSearchService implements driving.SearchService for testing.
type MockSearchService struct {
	SearchFunc func(ctx context.Context, req domain.SearchRequest) ([]domain.SearchResult, error)
	Requests   []domain.SearchRequest
}

func (m *MockSearchService) Search(ctx context.Context, req domain.SearchRequest) ([]domain.SearchResult, error) {
	m.Requests = append(m.Requests, req)
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, req)
	}
	return testResults(), nil
}

func testResults() []domain.SearchResult {
	return []domain.SearchResult{
		{ID: "a", Score: 0.91, Payload: domain.Payload{
			PMID: "101", Title: "Kinase inhibitor binding", URL: "https://pubmed.ncbi.nlm.nih.gov/101/",
			Chunk: "The inhibitor bound with nanomolar affinity.", DeltaG: -10.4,
		}},
		{ID: "b", Score: 0.82, Payload: domain.Payload{PMID: "102", Title: "Receptor loops", Chunk: "Loop motion."}},
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// submit types a query, presses enter and feeds the result back.
func submit(t *testing.T, v *View, query string) {
	t.Helper()
	v.SetQuery(query)
	_, cmd := v.Update(key("enter"))
	require.NotNil(t, cmd)
	v.Update(cmd())
}

func readyView(svc *MockSearchService) *View {
	v := NewView(styles.DefaultStyles(), keymap.DefaultKeyMap(), svc)
	v.SetDimensions(120, 40)
	return v
}

func TestNewView(t *testing.T) {
	v := NewView(nil, nil, nil)

	require.NotNil(t, v)
	assert.False(t, v.Ready())
	assert.True(t, v.InputFocused())
	assert.Equal(t, domain.ModalityText, v.Modality())
	assert.Equal(t, domain.DefaultDiversityLambda, v.Lambda())
	assert.NotNil(t, v.styles)
	assert.NotNil(t, v.keymap)
}

func TestView_WithContext(t *testing.T) {
	v := NewView(nil, nil, nil)
	type ctxKey string
	ctx := context.WithValue(context.Background(), ctxKey("k"), "v")

	assert.Same(t, v, v.WithContext(ctx))
	assert.Equal(t, ctx, v.ctx)
}

func TestView_Init(t *testing.T) {
	assert.NotNil(t, NewView(nil, nil, nil).Init())
}

func TestView_WindowSize(t *testing.T) {
	v := NewView(nil, nil, nil)
	v.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	assert.True(t, v.Ready())
	assert.Equal(t, 96, v.detail.Width)
	assert.Equal(t, 18, v.detail.Height)
}

func TestView_SubmitSearch(t *testing.T) {
	svc := &MockSearchService{}
	v := readyView(svc)

	submit(t, v, "kinase inhibitor")

	require.Len(t, svc.Requests, 1)
	req := svc.Requests[0]
	assert.Equal(t, "kinase inhibitor", req.Query)
	assert.Equal(t, domain.ModalityText, req.Modality)
	require.NotNil(t, req.DiversityLambda)
	assert.Equal(t, 0.5, *req.DiversityLambda)

	assert.False(t, v.InputFocused())
	assert.Len(t, v.Results(), 2)
	assert.NoError(t, v.Err())
}

func TestView_EmptyQueryIgnored(t *testing.T) {
	svc := &MockSearchService{}
	v := readyView(svc)

	v.SetQuery("   ")
	_, cmd := v.Update(key("enter"))

	assert.Nil(t, cmd)
	assert.True(t, v.InputFocused())
}

func TestView_SearchError(t *testing.T) {
	svc := &MockSearchService{SearchFunc: func(context.Context, domain.SearchRequest) ([]domain.SearchResult, error) {
		return nil, errors.New("index offline")
	}}
	v := readyView(svc)

	submit(t, v, "anything")

	require.Error(t, v.Err())
	assert.Contains(t, v.View(), "index offline")
}

func TestView_NoService(t *testing.T) {
	v := readyView(nil)
	v.searchService = nil

	submit(t, v, "query")

	assert.ErrorIs(t, v.Err(), ErrNoSearchService)
}

func TestView_TabCyclesModalityAndReruns(t *testing.T) {
	svc := &MockSearchService{}
	v := readyView(svc)

	// Before any query, tab only changes the modality.
	_, cmd := v.Update(key("tab"))
	assert.Nil(t, cmd)
	assert.Equal(t, domain.ModalityProtein, v.Modality())

	submit(t, v, "ATP pocket")
	_, cmd = v.Update(key("tab"))
	require.NotNil(t, cmd)
	v.Update(cmd())

	assert.Equal(t, domain.ModalityMolecule, v.Modality())
	require.Len(t, svc.Requests, 2)
	assert.Equal(t, domain.ModalityMolecule, svc.Requests[1].Modality)

	v.CycleModality()
	assert.Equal(t, domain.ModalityText, v.Modality())
}

func TestView_LambdaKeys(t *testing.T) {
	svc := &MockSearchService{}
	v := readyView(svc)
	submit(t, v, "binding")

	_, cmd := v.Update(key("]"))
	require.NotNil(t, cmd)
	v.Update(cmd())
	assert.InDelta(t, 0.6, v.Lambda(), 1e-9)
	assert.InDelta(t, 0.6, *svc.Requests[1].DiversityLambda, 1e-9)

	v.Update(key("["))
	v.Update(key("["))
	assert.InDelta(t, 0.4, v.Lambda(), 1e-9)
}

func TestView_AdjustLambdaClamps(t *testing.T) {
	v := NewView(nil, nil, nil)
	for i := 0; i < 20; i++ {
		v.AdjustLambda(LambdaStep)
	}
	assert.Equal(t, 1.0, v.Lambda())
	for i := 0; i < 20; i++ {
		v.AdjustLambda(-LambdaStep)
	}
	assert.Equal(t, 0.0, v.Lambda())
}

func TestView_BracketsTypedInInputMode(t *testing.T) {
	v := readyView(&MockSearchService{})
	v.Update(key("["))
	assert.Equal(t, "[", v.Query())
	assert.Equal(t, domain.DefaultDiversityLambda, v.Lambda())
}

func TestView_ResultNavigationAndDetail(t *testing.T) {
	v := readyView(&MockSearchService{})
	submit(t, v, "kinase")

	v.Update(key("j"))
	assert.Equal(t, 1, v.SelectedIndex())
	v.Update(key("k"))
	assert.Equal(t, 0, v.SelectedIndex())

	v.Update(key("enter"))
	require.True(t, v.DetailOpen())
	out := v.View()
	assert.Contains(t, out, "PMID 101")
	assert.Contains(t, out, "ΔG -10.40 kcal/mol")
	assert.Contains(t, out, "nanomolar affinity")

	v.Update(key("esc"))
	assert.False(t, v.DetailOpen())
}

func TestView_EscGoesToMenu(t *testing.T) {
	v := readyView(&MockSearchService{})

	_, cmd := v.Update(key("esc"))

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewMenu}, cmd())
}

func TestView_NewSearch(t *testing.T) {
	v := readyView(&MockSearchService{})
	submit(t, v, "kinase")

	v.Update(key("n"))

	assert.True(t, v.InputFocused())
	assert.Equal(t, "", v.Query())
}

func TestView_ErrorOccurred(t *testing.T) {
	v := readyView(nil)
	v.Update(messages.ErrorOccurred{Err: errors.New("boom")})
	assert.EqualError(t, v.Err(), "boom")
}

func TestView_ViewNotReady(t *testing.T) {
	assert.Equal(t, "Initialising...", NewView(nil, nil, nil).View())
}

func TestView_ViewShowsResults(t *testing.T) {
	v := readyView(&MockSearchService{})
	submit(t, v, "kinase")

	out := v.View()
	assert.Contains(t, out, "BioOrbit")
	assert.Contains(t, out, "Results (2)")
	assert.Contains(t, out, "Kinase inhibitor binding")
}

func TestView_ResetKeepsTuning(t *testing.T) {
	v := readyView(&MockSearchService{})
	v.CycleModality()
	submit(t, v, "kinase")

	v.Reset()

	assert.True(t, v.InputFocused())
	assert.Empty(t, v.Results())
	assert.Equal(t, domain.ModalityProtein, v.Modality())
	assert.NoError(t, v.Err())
}
