package media

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/lipgloss"
	"github.com/disintegration/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"
)

var livePreviews atomic.Int64

// LivePreviews returns the number of acquired and not yet released previews.
func LivePreviews() int {
	return int(livePreviews.Load())
}

// Preview is a scoped display handle for image content. It renders the image
// as coloured half-block cells. Every acquired preview must be released once
// it is no longer displayed.
type Preview struct {
	mu       sync.Mutex
	source   image.Image
	label    string
	width    int
	height   int
	cache    map[[2]int]string
	released bool
}

// NewPreview decodes data and acquires a preview handle.
func NewPreview(data []byte) (*Preview, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	b := img.Bounds()
	livePreviews.Add(1)
	return &Preview{
		source: img,
		width:  b.Dx(),
		height: b.Dy(),
		cache:  make(map[[2]int]string),
	}, nil
}

// NewPlaceholderPreview acquires a handle that only shows a label.
func NewPlaceholderPreview(label string) *Preview {
	livePreviews.Add(1)
	return &Preview{label: label, cache: make(map[[2]int]string)}
}

// Dimensions returns the source image size in pixels, zero for placeholders.
func (p *Preview) Dimensions() (int, int) {
	if p == nil {
		return 0, 0
	}
	return p.width, p.height
}

// Released reports whether Release was called.
func (p *Preview) Released() bool {
	if p == nil {
		return true
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.released
}

// Release drops the decoded pixels. Calling it more than once is a no-op.
func (p *Preview) Release() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.released {
		return
	}
	p.released = true
	p.source = nil
	p.cache = nil
	livePreviews.Add(-1)
}

// Render draws the image within cols x rows terminal cells. Each cell holds
// two vertical pixels. A released preview renders as an empty string.
func (p *Preview) Render(cols, rows int) string {
	if p == nil || cols <= 0 || rows <= 0 {
		return ""
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.released {
		return ""
	}
	if p.source == nil {
		return lipgloss.NewStyle().Italic(true).Render(fmt.Sprintf("[aperçu indisponible : %s]", p.label))
	}

	key := [2]int{cols, rows}
	if out, ok := p.cache[key]; ok {
		return out
	}

	thumb := imaging.Fit(p.source, cols, rows*2, imaging.Lanczos)
	b := thumb.Bounds()

	var sb strings.Builder
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		if y > b.Min.Y {
			sb.WriteByte('\n')
		}
		for x := b.Min.X; x < b.Max.X; x++ {
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(hexColor(thumb.At(x, y))))
			if y+1 < b.Max.Y {
				style = style.Background(lipgloss.Color(hexColor(thumb.At(x, y+1))))
			}
			sb.WriteString(style.Render("▀"))
		}
	}

	out := sb.String()
	p.cache[key] = out
	return out
}

func hexColor(c color.Color) string {
	cf, ok := colorful.MakeColor(c)
	if !ok {
		// fully transparent
		return "#000000"
	}
	return cf.Clamped().Hex()
}
