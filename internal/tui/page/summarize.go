package page

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/dhidargpt/dhidar/internal/llm"
	"github.com/dhidargpt/dhidar/internal/markdown"
	"github.com/dhidargpt/dhidar/internal/media"
	state "github.com/dhidargpt/dhidar/internal/page"
	"github.com/dhidargpt/dhidar/internal/tui/theme"
)

// SummaryMsg carries the outcome of a summarize request.
type SummaryMsg struct {
	Mount  int
	Result llm.Result
}

func (m SummaryMsg) MountID() int { return m.Mount }

// TextLoadedMsg carries the content of a picked text file.
type TextLoadedMsg struct {
	Mount int
	Path  string
	Text  string
	Err   error
}

func (m TextLoadedMsg) MountID() int { return m.Mount }

type summarizeKeyMap struct {
	Submit  key.Binding
	Open    key.Binding
	Example key.Binding
	Copy    key.Binding
	Back    key.Binding
}

func (k summarizeKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Open, k.Example, k.Copy, k.Back}
}

func (k summarizeKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var summarizeKeys = summarizeKeyMap{
	Submit: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("ctrl+s", "résumer"),
	),
	Open: key.NewBinding(
		key.WithKeys("ctrl+o"),
		key.WithHelp("ctrl+o", "ouvrir un fichier"),
	),
	Example: key.NewBinding(
		key.WithKeys("ctrl+l"),
		key.WithHelp("ctrl+l", "charger un exemple"),
	),
	Copy: key.NewBinding(
		key.WithKeys("ctrl+y"),
		key.WithHelp("ctrl+y", "copier le résumé"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "accueil"),
	),
}

const (
	summarizeTitle       = "📝 Résumé de Texte"
	summarizeIntro       = "Entrez votre texte ci-dessous ou téléchargez un fichier pour obtenir un résumé concis grâce à Gemini."
	summarizePlaceholder = "Entrez votre texte ici pour le résumer..."
	summarizeFileHint    = "📎 ctrl+o pour télécharger un fichier texte (.txt, .md, .html)"
	summarizeLoading     = "Résumé en cours..."
)

// SummarizePage is the summarization screen.
type SummarizePage struct {
	ctx     context.Context
	gateway Gateway
	theme   theme.Theme
	mount   int

	state    state.SummarizeState
	editor   textarea.Model
	picker   filepicker.Model
	picking  bool
	spinner  spinner.Model
	help     help.Model
	renderer *markdown.Renderer
	notice   string

	width  int
	height int
}

// NewSummarizePage creates the summarize page. The file picker starts in the
// working directory.
func NewSummarizePage(opts Options) *SummarizePage {
	opts = opts.withDefaults()

	ta := textarea.New()
	ta.Placeholder = summarizePlaceholder
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(8)
	ta.Focus()

	return &SummarizePage{
		ctx:     opts.Ctx,
		gateway: opts.Gateway,
		theme:   opts.Theme,
		mount:   opts.Mount,
		editor:  ta,
		picker:  newPicker(opts.WorkingDir, media.TextExtensions),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:    help.New(),
	}
}

// newPicker opens in dir. A nil allowed list shows every file and leaves the
// type check to the loader.
func newPicker(dir string, allowed []string) filepicker.Model {
	fp := filepicker.New()
	fp.AllowedTypes = allowed
	if dir == "" {
		dir, _ = os.Getwd()
	}
	fp.CurrentDirectory = dir
	return fp
}

func (p *SummarizePage) ID() state.ID { return state.Summarize }

func (p *SummarizePage) MountID() int { return p.mount }

// Modal reports whether the file picker is open.
func (p *SummarizePage) Modal() bool { return p.picking }

// State returns the page state.
func (p *SummarizePage) State() state.SummarizeState { return p.state }

func (p *SummarizePage) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.help.Width = width
	p.editor.SetWidth(max(20, width-4))

	if wrap := max(20, width-4); p.renderer == nil || p.renderer.Width() != wrap {
		renderer, err := markdown.NewRenderer(p.theme.GlamourStyle(), wrap)
		if err != nil {
			log.Warn("markdown renderer unavailable", "err", err)
		}
		p.renderer = renderer
	}
}

func (p *SummarizePage) Init() tea.Cmd {
	return textarea.Blink
}

func (p *SummarizePage) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.SetSize(msg.Width, msg.Height)
		if p.picking {
			var cmd tea.Cmd
			p.picker, cmd = p.picker.Update(msg)
			return p, cmd
		}
		return p, nil

	case SummaryMsg:
		p.state = p.state.Complete(msg.Result)
		return p, nil

	case TextLoadedMsg:
		p.state = p.state.FileLoaded(msg.Text, msg.Err)
		if msg.Err == nil {
			p.editor.SetValue(msg.Text)
		}
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
		case key.Matches(msg, summarizeKeys.Submit):
			return p, p.submit()
		case key.Matches(msg, summarizeKeys.Open):
			p.picking = true
			return p, p.picker.Init()
		case key.Matches(msg, summarizeKeys.Example):
			p.state = p.state.LoadExample()
			p.editor.SetValue(p.state.Input)
			return p, nil
		case key.Matches(msg, summarizeKeys.Copy):
			summary := ""
			if p.state.Result != nil {
				summary = p.state.Result.Summary
			}
			p.notice = copyText(summary)
			return p, nil
		}
	}

	var cmd tea.Cmd
	p.editor, cmd = p.editor.Update(msg)
	p.state = p.state.SetInput(p.editor.Value())
	return p, cmd
}

func (p *SummarizePage) updatePicker(msg tea.Msg) tea.Cmd {
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
			text, err := media.ReadText(path)
			return TextLoadedMsg{Mount: mount, Path: path, Text: text, Err: err}
		}
	}
	if ok, _ := p.picker.DidSelectDisabledFile(msg); ok {
		p.picking = false
		p.state = p.state.FileLoaded("", &media.ValidationError{Message: media.InvalidTextMessage})
		return nil
	}
	return cmd
}

func (p *SummarizePage) submit() tea.Cmd {
	p.state = p.state.SetInput(p.editor.Value())
	next, text, ok := p.state.Submit()
	p.state = next
	p.notice = ""
	if !ok {
		return nil
	}

	ctx, gw, mount := p.ctx, p.gateway, p.mount
	request := func() tea.Msg {
		return SummaryMsg{Mount: mount, Result: gw.Summarize(ctx, text)}
	}
	return tea.Batch(request, p.spinner.Tick)
}

func (p *SummarizePage) renderSummary(r *state.SummaryResult) string {
	width := max(20, p.width-4)
	body := p.renderer.RenderOrPlain(r.Summary)

	metrics := lipgloss.JoinHorizontal(lipgloss.Top,
		fmt.Sprintf("Longueur originale : %d caractères", r.OriginalLength),
		"   ",
		fmt.Sprintf("Longueur du résumé : %d caractères", r.SummaryLength),
		"   ",
		fmt.Sprintf("Taux de compression : %d%%", r.CompressionRatio),
	)
	return lipgloss.JoinVertical(lipgloss.Left,
		p.theme.PrimaryText().Bold(true).Render("📋 Résumé :"),
		p.theme.MutedText().Render(metrics),
		p.theme.MutedText().Render(strings.Repeat("─", width)),
		body,
	)
}

func (p *SummarizePage) View() string {
	parts := []string{
		p.theme.Title().Render(summarizeTitle),
		p.theme.MutedText().Render(summarizeIntro),
	}

	if p.picking {
		parts = append(parts,
			p.theme.SecondaryText().Render("Choisissez un fichier (.txt, .md, .html), esc pour annuler :"),
			p.picker.View(),
		)
		return lipgloss.JoinVertical(lipgloss.Left, parts...)
	}

	parts = append(parts,
		p.theme.BorderActive().Render(p.editor.View()),
		p.theme.MutedText().Render(summarizeFileHint),
	)

	var button string
	switch {
	case p.state.Loading():
		button = p.theme.ButtonDisabled().Render(p.spinner.View() + " " + summarizeLoading)
	default:
		button = p.theme.Button().Render("✨ Résumer")
	}
	parts = append(parts, button+"  "+p.theme.Border().Render("📄 Charger un exemple"))

	if p.state.Err != "" {
		parts = append(parts, p.theme.ErrorStyle().Render(p.state.Err))
	}
	if p.state.Result != nil {
		parts = append(parts, p.renderSummary(p.state.Result))
	}
	if p.notice != "" {
		parts = append(parts, p.theme.SuccessText().Render(p.notice))
	}
	parts = append(parts, p.help.View(summarizeKeys))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
