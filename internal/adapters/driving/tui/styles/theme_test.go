package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTheme(t *testing.T) {
	theme := DefaultTheme()
	require.NotNil(t, theme)

	colours := []lipgloss.Color{
		theme.Primary, theme.Secondary, theme.Foreground, theme.Muted,
		theme.Success, theme.Warning, theme.Error, theme.Border, theme.Bar,
	}
	for _, c := range colours {
		assert.NotEmpty(t, string(c))
	}
}

func TestNewStyles_NilTheme(t *testing.T) {
	s := NewStyles(nil)
	require.NotNil(t, s)
	assert.Equal(t, DefaultTheme(), s.Theme())
}

func TestNewStyles_CustomTheme(t *testing.T) {
	theme := DefaultTheme()
	theme.Primary = lipgloss.Color("#FF0000")

	s := NewStyles(theme)
	assert.Equal(t, theme, s.Theme())
	assert.Equal(t, lipgloss.Color("#FF0000"), s.Title.GetForeground())
}

func TestDefaultStyles_Render(t *testing.T) {
	s := DefaultStyles()
	assert.Contains(t, s.Title.Render("BioOrbit"), "BioOrbit")
	assert.Contains(t, s.Badge.Render("protein"), "protein")
	assert.Contains(t, s.Attribute.Render("ΔG -7.2"), "-7.2")
}

func TestDefaultStyles_Bold(t *testing.T) {
	s := DefaultStyles()
	assert.True(t, s.Title.GetBold())
	assert.True(t, s.Subtitle.GetBold())
	assert.True(t, s.Selected.GetBold())
	assert.True(t, s.Badge.GetBold())
	assert.False(t, s.Normal.GetBold())
}
