package theme

import (
	"github.com/charmbracelet/lipgloss"
)

// ASCIITheme implements an ASCII-only theme for better terminal compatibility
type ASCIITheme struct {
	*DefaultTheme
}

// NewASCIITheme creates a new ASCII-only theme
func NewASCIITheme() Theme {
	base := NewDefaultTheme().(*DefaultTheme)
	base.glamour = "ascii"
	return &ASCIITheme{DefaultTheme: base}
}

// Override border styles to use ASCII characters
func (t *ASCIITheme) Border() lipgloss.Style {
	return t.DefaultTheme.Border().Border(lipgloss.NormalBorder())
}

func (t *ASCIITheme) BorderActive() lipgloss.Style {
	return t.DefaultTheme.BorderActive().Border(lipgloss.NormalBorder())
}

func (t *ASCIITheme) ModelBubble() lipgloss.Style {
	return t.DefaultTheme.ModelBubble().Border(lipgloss.NormalBorder())
}

func (t *ASCIITheme) ErrorStyle() lipgloss.Style {
	return t.DefaultTheme.ErrorStyle().Border(lipgloss.NormalBorder())
}
