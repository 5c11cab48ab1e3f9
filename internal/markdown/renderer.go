// Package markdown renders model replies for the terminal.
package markdown

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

// Renderer wraps glamour with the display tweaks used for replies and
// summaries.
type Renderer struct {
	glamourRenderer *glamour.TermRenderer
	width           int
}

// NewRenderer creates a renderer for the given glamour style (a built-in
// style name or a JSON file) wrapping at width columns.
func NewRenderer(style string, width int) (*Renderer, error) {
	if width < 1 {
		width = 80
	}
	glamourRenderer, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create glamour renderer: %w", err)
	}
	return &Renderer{glamourRenderer: glamourRenderer, width: width}, nil
}

// Width returns the wrap width.
func (r *Renderer) Width() int { return r.width }

// Render renders markdown content to styled terminal output.
func (r *Renderer) Render(markdown string) (string, error) {
	if strings.TrimSpace(markdown) == "" {
		return "", nil
	}
	rendered, err := r.glamourRenderer.Render(preprocess(markdown))
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return strings.Trim(postprocess(rendered), "\n"), nil
}

// RenderOrPlain renders markdown and falls back to the raw text when r is
// nil or rendering fails.
func (r *Renderer) RenderOrPlain(markdown string) string {
	if r == nil {
		return markdown
	}
	out, err := r.Render(markdown)
	if err != nil {
		return markdown
	}
	return out
}

// preprocess trims trailing whitespace outside code fences.
func preprocess(markdown string) string {
	lines := strings.Split(markdown, "\n")
	inFence := false
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inFence = !inFence
			continue
		}
		if !inFence {
			lines[i] = strings.TrimRight(line, " \t\r")
		}
	}
	return strings.Join(lines, "\n")
}

// postprocess collapses runs of blank lines into one.
func postprocess(rendered string) string {
	lines := strings.Split(rendered, "\n")
	result := lines[:0]
	blank := 0
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			blank++
			if blank > 1 {
				continue
			}
		} else {
			blank = 0
		}
		result = append(result, line)
	}
	return strings.Join(result, "\n")
}
