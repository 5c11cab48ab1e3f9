package page

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/dhidargpt/dhidar/internal/llm"
	"github.com/dhidargpt/dhidar/internal/media"
	state "github.com/dhidargpt/dhidar/internal/page"
	"github.com/dhidargpt/dhidar/internal/tui/theme"
)

// ImageResultMsg carries a generated image and its decoded preview.
type ImageResultMsg struct {
	Mount   int
	Result  llm.Result
	Preview *media.Preview
}

func (m ImageResultMsg) MountID() int { return m.Mount }

// Release frees the preview of a result nobody received.
func (m ImageResultMsg) Release() { m.Preview.Release() }

// ImageLoadedMsg carries a picked image file.
type ImageLoadedMsg struct {
	Mount int
	Image *media.InputImage
	Err   error
}

func (m ImageLoadedMsg) MountID() int { return m.Mount }

// Release frees the image of a message nobody received.
func (m ImageLoadedMsg) Release() { m.Image.Release() }

type imageKeyMap struct {
	Generate key.Binding
	Open     key.Binding
	Remove   key.Binding
	Copy     key.Binding
	Back     key.Binding
}

func (k imageKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Generate, k.Open, k.Remove, k.Copy, k.Back}
}

func (k imageKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var imageKeys = imageKeyMap{
	Generate: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("entrée", "générer"),
	),
	Open: key.NewBinding(
		key.WithKeys("ctrl+o"),
		key.WithHelp("ctrl+o", "joindre une image"),
	),
	Remove: key.NewBinding(
		key.WithKeys("ctrl+x"),
		key.WithHelp("ctrl+x", "retirer l'image"),
	),
	Copy: key.NewBinding(
		key.WithKeys("ctrl+y"),
		key.WithHelp("ctrl+y", "copier l'image (data URL)"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "accueil"),
	),
}

const (
	imageTitle      = "🎨 Génération d'Image"
	imageIntro      = "Décrivez l'image que vous souhaitez créer ou modifier, et laissez la magie de l'IA opérer."
	imageAttachHint = "📎 ctrl+o pour télécharger une image (optionnel)"
	imageLoading    = "Création de votre image en cours..."
	imageLoadingSub = "Cela peut prendre un moment."
	imageEmpty      = "Votre image générée apparaîtra ici."
)

// ImagePage is the image generation and editing screen.
type ImagePage struct {
	ctx     context.Context
	gateway Gateway
	theme   theme.Theme
	mount   int

	state   state.ImageState
	prompt  textinput.Model
	picker  filepicker.Model
	picking bool
	spinner spinner.Model
	help    help.Model
	notice  string

	width  int
	height int
}

// NewImagePage creates the image page.
func NewImagePage(opts Options) *ImagePage {
	opts = opts.withDefaults()

	ti := textinput.New()
	ti.Placeholder = state.GeneratePlaceholder
	ti.CharLimit = 2000
	ti.Focus()

	return &ImagePage{
		ctx:     opts.Ctx,
		gateway: opts.Gateway,
		theme:   opts.Theme,
		mount:   opts.Mount,
		prompt:  ti,
		picker:  newPicker(opts.WorkingDir, nil),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:    help.New(),
	}
}

func (p *ImagePage) ID() state.ID { return state.Image }

func (p *ImagePage) MountID() int { return p.mount }

// Modal reports whether the file picker is open.
func (p *ImagePage) Modal() bool { return p.picking }

// State returns the page state.
func (p *ImagePage) State() state.ImageState { return p.state }

// Close releases the previews held by the page.
func (p *ImagePage) Close() {
	p.state = p.state.Close()
}

func (p *ImagePage) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.help.Width = width
	p.prompt.Width = max(10, width-20)
}

func (p *ImagePage) Init() tea.Cmd {
	return textinput.Blink
}

func (p *ImagePage) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.SetSize(msg.Width, msg.Height)
		if p.picking {
			var cmd tea.Cmd
			p.picker, cmd = p.picker.Update(msg)
			return p, cmd
		}
		return p, nil

	case ImageLoadedMsg:
		if msg.Err != nil {
			p.state = p.state.RejectFile(msg.Err)
		} else {
			p.state = p.state.Attach(msg.Image)
		}
		p.prompt.Placeholder = p.state.Placeholder()
		return p, nil

	case ImageResultMsg:
		p.state = p.state.Complete(msg.Result, msg.Preview)
		return p, nil

	case spinner.TickMsg:
		if !p.state.Loading() {
			return p, nil
		}
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(msg)
		return p, cmd
	}

	if p.picking {
		return p, p.updatePicker(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, imageKeys.Generate):
			return p, p.generate()
		case key.Matches(msg, imageKeys.Open):
			if p.state.Loading() {
				return p, nil
			}
			p.picking = true
			return p, p.picker.Init()
		case key.Matches(msg, imageKeys.Remove):
			p.state = p.state.Remove()
			p.prompt.Placeholder = p.state.Placeholder()
			return p, nil
		case key.Matches(msg, imageKeys.Copy):
			p.notice = copyText(p.state.Output)
			return p, nil
		}
	}

	if p.state.Loading() {
		return p, nil
	}
	var cmd tea.Cmd
	p.prompt, cmd = p.prompt.Update(msg)
	p.state = p.state.SetPrompt(p.prompt.Value())
	return p, cmd
}

func (p *ImagePage) updatePicker(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		p.picking = false
		return nil
	}

	var cmd tea.Cmd
	p.picker, cmd = p.picker.Update(msg)

	if ok, path := p.picker.DidSelectFile(msg); ok {
		p.picking = false
		mount := p.mount
		return func() tea.Msg {
			img, err := media.LoadImage(path)
			return ImageLoadedMsg{Mount: mount, Image: img, Err: err}
		}
	}
	return cmd
}

func (p *ImagePage) generate() tea.Cmd {
	p.state = p.state.SetPrompt(p.prompt.Value())
	next, prompt, input, ok := p.state.Generate()
	p.state = next
	p.notice = ""
	if !ok {
		return nil
	}

	ctx, gw, mount := p.ctx, p.gateway, p.mount
	request := func() tea.Msg {
		result := gw.GenerateOrEditImage(ctx, prompt, input)
		return ImageResultMsg{Mount: mount, Result: result, Preview: outputPreview(result)}
	}
	return tea.Batch(request, p.spinner.Tick)
}

// outputPreview decodes a successful result for display.
func outputPreview(result llm.Result) *media.Preview {
	if !result.OK() {
		return nil
	}
	_, data, err := media.DecodeDataURL(result.Payload)
	if err != nil {
		log.Warn("generated image is not a data URL", "err", err)
		return media.NewPlaceholderPreview("image générée")
	}
	preview, err := media.NewPreview(data)
	if err != nil {
		log.Debug("generated image preview unavailable", "err", err)
		return media.NewPlaceholderPreview("image générée")
	}
	return preview
}

func (p *ImagePage) previewSize() (int, int) {
	cols := 40
	if p.width > 0 {
		cols = max(10, min(p.width-4, 64))
	}
	rows := 16
	if p.height > 0 {
		rows = max(4, min(p.height/3, 24))
	}
	return cols, rows
}

func (p *ImagePage) View() string {
	parts := []string{
		p.theme.Title().Render(imageTitle),
		p.theme.MutedText().Render(imageIntro),
	}

	if p.picking {
		parts = append(parts,
			p.theme.SecondaryText().Render("Choisissez une image, esc pour annuler :"),
			p.picker.View(),
		)
		return lipgloss.JoinVertical(lipgloss.Left, parts...)
	}

	cols, rows := p.previewSize()
	if in := p.state.Input; in != nil {
		details := fmt.Sprintf("%s, %d octets", in.MIMEType, in.Size)
		if w, h := in.Preview.Dimensions(); w > 0 {
			details = fmt.Sprintf("%s, %d×%d px, %d octets", in.MIMEType, w, h, in.Size)
		}
		label := p.theme.MutedText().Render(fmt.Sprintf("Aperçu : %s (%s) · ctrl+x pour retirer", in.Name, details))
		parts = append(parts, p.theme.Border().Render(lipgloss.JoinVertical(lipgloss.Left,
			in.Preview.Render(cols, rows/2),
			label,
		)))
	} else {
		parts = append(parts, p.theme.Border().Render(p.theme.MutedText().Render(imageAttachHint)))
	}

	button := p.theme.Button().Render("✨ Générer")
	if p.state.Loading() {
		button = p.theme.ButtonDisabled().Render(p.spinner.View() + " Génération...")
	} else if !p.state.CanGenerate() {
		button = p.theme.ButtonDisabled().Render("✨ Générer")
	}
	parts = append(parts, lipgloss.JoinHorizontal(lipgloss.Center,
		p.theme.BorderActive().Render(p.prompt.View()), " ", button))

	if p.state.Err != "" {
		parts = append(parts, p.theme.ErrorStyle().Render(p.state.Err))
	}

	var output string
	switch {
	case p.state.Loading():
		output = lipgloss.JoinVertical(lipgloss.Center,
			p.spinner.View(),
			imageLoading,
			p.theme.MutedText().Render(imageLoadingSub),
		)
	case p.state.OutputPreview != nil && !p.state.OutputPreview.Released():
		output = p.state.OutputPreview.Render(cols, rows)
	default:
		output = p.theme.MutedText().Render(imageEmpty)
	}
	parts = append(parts, p.theme.Border().Render(output))

	if p.notice != "" {
		parts = append(parts, p.theme.SuccessText().Render(p.notice))
	}
	parts = append(parts, p.help.View(imageKeys))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
