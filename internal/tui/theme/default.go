package theme

import (
	"github.com/charmbracelet/lipgloss"
)

// DefaultTheme implements the DhidarGPT pink and purple theme
type DefaultTheme struct {
	primary    lipgloss.Color
	secondary  lipgloss.Color
	foreground lipgloss.Color
	surface    lipgloss.Color
	error      lipgloss.Color
	success    lipgloss.Color
	muted      lipgloss.Color
	glamour    string
}

// NewDefaultTheme creates a new default theme
func NewDefaultTheme() Theme {
	return &DefaultTheme{
		primary:    lipgloss.Color("#EC4899"), // Pink
		secondary:  lipgloss.Color("#9333EA"), // Purple
		foreground: lipgloss.Color("#F3F4F6"),
		surface:    lipgloss.Color("#374151"),
		error:      lipgloss.Color("#FCA5A5"),
		success:    lipgloss.Color("#86EFAC"),
		muted:      lipgloss.Color("#9CA3AF"),
		glamour:    "dark",
	}
}

func (t *DefaultTheme) Title() lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(t.foreground).
		MarginBottom(1)
}

func (t *DefaultTheme) PrimaryText() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.primary)
}

func (t *DefaultTheme) SecondaryText() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.secondary)
}

func (t *DefaultTheme) MutedText() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.muted)
}

func (t *DefaultTheme) SuccessText() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.success)
}

func (t *DefaultTheme) Border() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.muted).
		Padding(0, 1)
}

func (t *DefaultTheme) BorderActive() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.primary).
		Padding(0, 1)
}

func (t *DefaultTheme) Button() lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(t.secondary).
		Padding(0, 2)
}

func (t *DefaultTheme) ButtonDisabled() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(t.muted).
		Background(t.surface).
		Padding(0, 2)
}

func (t *DefaultTheme) UserBubble() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(t.secondary).
		Padding(0, 1)
}

func (t *DefaultTheme) ModelBubble() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(t.foreground).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.surface).
		Padding(0, 1)
}

func (t *DefaultTheme) ErrorStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(t.error).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.error).
		Padding(0, 1)
}

func (t *DefaultTheme) GlamourStyle() string { return t.glamour }
