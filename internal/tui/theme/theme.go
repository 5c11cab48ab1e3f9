// Package theme holds the lipgloss styles shared by every page.
package theme

import (
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the interface for TUI themes
type Theme interface {
	Title() lipgloss.Style

	// Text styles
	PrimaryText() lipgloss.Style
	SecondaryText() lipgloss.Style
	MutedText() lipgloss.Style
	SuccessText() lipgloss.Style

	// UI element styles
	Border() lipgloss.Style
	BorderActive() lipgloss.Style
	Button() lipgloss.Style
	ButtonDisabled() lipgloss.Style

	// Chat bubbles
	UserBubble() lipgloss.Style
	ModelBubble() lipgloss.Style

	// Special styles
	ErrorStyle() lipgloss.Style

	// GlamourStyle names the glamour standard style used for Markdown.
	GlamourStyle() string
}

// Names lists the available themes.
var Names = []string{"dhidar", "simple", "ascii"}

// Known reports whether name is one of Names.
func Known(name string) bool {
	return slices.Contains(Names, normalize(name))
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// GetTheme returns the theme called name, or the default theme.
func GetTheme(name string) Theme {
	switch normalize(name) {
	case "simple":
		return NewSimpleTheme()
	case "ascii":
		return NewASCIITheme()
	default:
		return NewDefaultTheme()
	}
}
