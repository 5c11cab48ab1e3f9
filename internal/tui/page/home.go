package page

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	state "github.com/dhidargpt/dhidar/internal/page"
	"github.com/dhidargpt/dhidar/internal/tui/theme"
)

// Footer credits the author on the home page.
const Footer = "Développé par MoustaphaDereyCODE"

const tagline = "Votre suite d'outils IA optimisée par Google Gemini."

type featureCard struct {
	icon        string
	title       string
	description string
	to          state.ID
}

var featureCards = []featureCard{
	{
		icon:        "🤖",
		title:       "Chat IA",
		description: "Discutez avec un assistant IA avancé pour obtenir des réponses, des idées, et plus encore.",
		to:          state.Chat,
	},
	{
		icon:        "📝",
		title:       "Résumé de Texte",
		description: "Obtenez des résumés concis de longs documents, articles ou textes.",
		to:          state.Summarize,
	},
	{
		icon:        "🎨",
		title:       "Génération d'Image",
		description: "Créez des images uniques et de haute qualité à partir de simples descriptions textuelles.",
		to:          state.Image,
	},
}

type homeKeyMap struct {
	Prev   key.Binding
	Next   key.Binding
	Open   key.Binding
	Direct key.Binding
	Quit   key.Binding
}

func (k homeKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.Open, k.Direct, k.Quit}
}

func (k homeKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var homeKeys = homeKeyMap{
	Prev: key.NewBinding(
		key.WithKeys("left", "up", "h", "k", "shift+tab"),
		key.WithHelp("←", "précédent"),
	),
	Next: key.NewBinding(
		key.WithKeys("right", "down", "l", "j", "tab"),
		key.WithHelp("→", "suivant"),
	),
	Open: key.NewBinding(
		key.WithKeys("enter", " "),
		key.WithHelp("entrée", "ouvrir"),
	),
	Direct: key.NewBinding(
		key.WithKeys("1", "2", "3"),
		key.WithHelp("1-3", "accès direct"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c", "q"),
		key.WithHelp("q", "quitter"),
	),
}

// HomePage is the feature menu.
type HomePage struct {
	theme    theme.Theme
	mount    int
	selected int
	width    int
	height   int
	help     help.Model
}

// NewHomePage creates the home page
func NewHomePage(opts Options) *HomePage {
	opts = opts.withDefaults()
	return &HomePage{
		theme: opts.Theme,
		mount: opts.Mount,
		help:  help.New(),
	}
}

func (p *HomePage) ID() state.ID { return state.Home }

func (p *HomePage) MountID() int { return p.mount }

func (p *HomePage) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.help.Width = width
}

// Selected returns the highlighted card's destination.
func (p *HomePage) Selected() state.ID { return featureCards[p.selected].to }

func (p *HomePage) Init() tea.Cmd { return nil }

func (p *HomePage) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.SetSize(msg.Width, msg.Height)
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, homeKeys.Quit):
			return p, tea.Quit
		case key.Matches(msg, homeKeys.Prev):
			p.selected = (p.selected + len(featureCards) - 1) % len(featureCards)
		case key.Matches(msg, homeKeys.Next):
			p.selected = (p.selected + 1) % len(featureCards)
		case key.Matches(msg, homeKeys.Open):
			return p, Navigate(p.Selected())
		case key.Matches(msg, homeKeys.Direct):
			p.selected = int(msg.Runes[0] - '1')
			return p, Navigate(p.Selected())
		}
	}
	return p, nil
}

func (p *HomePage) View() string {
	title := lipgloss.NewStyle().Bold(true).Render("Dhidar") +
		p.theme.PrimaryText().Bold(true).Render("GPT")

	header := lipgloss.JoinVertical(lipgloss.Center,
		title,
		p.theme.MutedText().Render(tagline),
	)

	cardWidth := 30
	horizontal := p.width == 0 || p.width >= 3*(cardWidth+4)
	if !horizontal {
		cardWidth = max(20, p.width-6)
	}

	cards := make([]string, 0, len(featureCards))
	for i, card := range featureCards {
		style := p.theme.Border()
		if i == p.selected {
			style = p.theme.BorderActive()
		}
		body := lipgloss.JoinVertical(lipgloss.Center,
			card.icon,
			lipgloss.NewStyle().Bold(true).Render(card.title),
			"",
			p.theme.MutedText().Render(card.description),
		)
		cards = append(cards, style.Width(cardWidth).Align(lipgloss.Center).Render(body))
	}

	var grid string
	if horizontal {
		grid = lipgloss.JoinHorizontal(lipgloss.Top, interleave(cards, " ")...)
	} else {
		grid = lipgloss.JoinVertical(lipgloss.Left, cards...)
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		header,
		"",
		grid,
		"",
		p.theme.MutedText().Render(Footer),
		"",
		p.help.View(homeKeys),
	)

	if p.width == 0 || p.height == 0 {
		return content
	}
	return lipgloss.Place(p.width, p.height, lipgloss.Center, lipgloss.Center, content)
}

func interleave(items []string, sep string) []string {
	out := make([]string, 0, 2*len(items))
	for i, item := range items {
		if i > 0 {
			out = append(out, sep)
		}
		out = append(out, item)
	}
	return out
}
