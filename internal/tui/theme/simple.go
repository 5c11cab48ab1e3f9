package theme

import (
	"github.com/charmbracelet/lipgloss"
)

// SimpleTheme uses the terminal's 16 ANSI colors and no backgrounds
type SimpleTheme struct {
	*DefaultTheme
}

// NewSimpleTheme creates a new simple theme
func NewSimpleTheme() Theme {
	return &SimpleTheme{
		DefaultTheme: &DefaultTheme{
			primary:    lipgloss.Color("5"), // Magenta
			secondary:  lipgloss.Color("4"), // Blue
			foreground: lipgloss.Color("7"),
			surface:    lipgloss.Color("8"),
			error:      lipgloss.Color("1"),
			success:    lipgloss.Color("2"),
			muted:      lipgloss.Color("8"),
			glamour:    "dark",
		},
	}
}

func (t *SimpleTheme) Button() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(t.primary)
}

func (t *SimpleTheme) ButtonDisabled() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.muted)
}

func (t *SimpleTheme) UserBubble() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.primary)
}
