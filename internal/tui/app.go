package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/dhidargpt/dhidar/internal/app"
	state "github.com/dhidargpt/dhidar/internal/page"
	"github.com/dhidargpt/dhidar/internal/tui/page"
	"github.com/dhidargpt/dhidar/internal/tui/theme"
)

// Model is the navigation shell. It owns the mounted page and is the only
// place the current page changes.
type Model struct {
	ctx        context.Context
	gateway    page.Gateway
	theme      theme.Theme
	workingDir string

	current page.Page
	mounts  int
	width   int
	height  int
}

// New creates the shell showing the home page.
func New(ctx context.Context, gateway page.Gateway, th theme.Theme, workingDir string) *Model {
	if th == nil {
		th = theme.NewDefaultTheme()
	}
	m := &Model{
		ctx:        ctx,
		gateway:    gateway,
		theme:      th,
		workingDir: workingDir,
	}
	m.current = m.build(state.Home)
	return m
}

// Current returns the mounted page.
func (m *Model) Current() page.Page { return m.current }

func (m *Model) build(id state.ID) page.Page {
	m.mounts++
	opts := page.Options{
		Ctx:        m.ctx,
		Gateway:    m.gateway,
		Theme:      m.theme,
		WorkingDir: m.workingDir,
		Mount:      m.mounts,
	}
	var p page.Page
	switch id {
	case state.Chat:
		p = page.NewChatPage(opts)
	case state.Summarize:
		p = page.NewSummarizePage(opts)
	case state.Image:
		p = page.NewImagePage(opts)
	default:
		p = page.NewHomePage(opts)
	}
	if m.width > 0 {
		p.SetSize(m.width, m.height)
	}
	return p
}

// navigate unmounts the current page and mounts a fresh one.
func (m *Model) navigate(to state.ID) tea.Cmd {
	m.unmount()
	m.current = m.build(to)
	log.Debug("navigate", "to", to, "mount", m.current.MountID())
	return m.current.Init()
}

func (m *Model) unmount() {
	if closer, ok := m.current.(page.Closer); ok {
		closer.Close()
	}
}

func (m *Model) Init() tea.Cmd {
	return m.current.Init()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.current.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.unmount()
			return m, tea.Quit
		case key.Matches(msg, keys.Home):
			if m.current.ID() != state.Home && !isModal(m.current) {
				return m, m.navigate(state.Home)
			}
		}

	case page.NavigateMsg:
		return m, m.navigate(msg.To)

	case page.Mounted:
		if msg.MountID() != m.current.MountID() {
			log.Debug("dropping result for unmounted page", "type", fmt.Sprintf("%T", msg), "mount", msg.MountID())
			if r, ok := msg.(page.Releaser); ok {
				r.Release()
			}
			return m, nil
		}
	}

	next, cmd := m.current.Update(msg)
	if p, ok := next.(page.Page); ok {
		m.current = p
	}
	return m, cmd
}

func isModal(p page.Page) bool {
	modal, ok := p.(page.Modal)
	return ok && modal.Modal()
}

func (m *Model) View() string {
	return m.current.View()
}

// Run starts the TUI application
func Run(ctx context.Context, application *app.App) error {
	name := application.Config.TUI.Theme
	if !theme.Known(name) {
		log.Warn("unknown theme, using the default", "theme", name, "available", strings.Join(theme.Names, ", "))
	}
	th := theme.GetTheme(name)
	model := New(ctx, application.Gateway, th, application.WorkspaceRoot)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

// Key bindings
type keyMap struct {
	Quit key.Binding
	Home key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quitter"),
	),
	Home: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "accueil"),
	),
}
