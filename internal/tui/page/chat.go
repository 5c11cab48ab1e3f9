package page

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/dhidargpt/dhidar/internal/llm"
	"github.com/dhidargpt/dhidar/internal/markdown"
	state "github.com/dhidargpt/dhidar/internal/page"
	"github.com/dhidargpt/dhidar/internal/tui/theme"
)

// ChatReplyMsg carries the reply to a chat message.
type ChatReplyMsg struct {
	Mount   int
	Epoch   int
	Session *llm.Session
	Result  llm.Result
}

func (m ChatReplyMsg) MountID() int { return m.Mount }

type chatKeyMap struct {
	Send        key.Binding
	SwitchModel key.Binding
	Copy        key.Binding
	Scroll      key.Binding
	Back        key.Binding
}

func (k chatKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Send, k.SwitchModel, k.Copy, k.Scroll, k.Back}
}

func (k chatKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var chatKeys = chatKeyMap{
	Send: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("entrée", "envoyer"),
	),
	SwitchModel: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "changer de modèle"),
	),
	Copy: key.NewBinding(
		key.WithKeys("ctrl+y"),
		key.WithHelp("ctrl+y", "copier la réponse"),
	),
	Scroll: key.NewBinding(
		key.WithKeys("pgup", "pgdown"),
		key.WithHelp("pgup/pgdn", "défiler"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "accueil"),
	),
}

const (
	chatTitle       = "DhidarGPT Chat"
	chatPlaceholder = "Demandez n'importe quoi..."
	thinkingLabel   = "Réflexion..."
)

// ChatPage is the conversation screen.
type ChatPage struct {
	ctx     context.Context
	gateway Gateway
	theme   theme.Theme
	mount   int

	models   []llm.ModelOption
	modelIdx int
	session  *llm.Session
	state    state.ChatState

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	help     help.Model
	renderer *markdown.Renderer
	notice   string

	width  int
	height int
}

// NewChatPage creates the chat page and opens a session on the default model.
func NewChatPage(opts Options) *ChatPage {
	opts = opts.withDefaults()
	models := opts.Gateway.Models()
	if len(models.Chat) == 0 {
		models.Chat = llm.DefaultChatModels
	}

	ti := textinput.New()
	ti.Placeholder = chatPlaceholder
	ti.CharLimit = 10000
	ti.Focus()

	p := &ChatPage{
		ctx:      opts.Ctx,
		gateway:  opts.Gateway,
		theme:    opts.Theme,
		mount:    opts.Mount,
		models:   models.Chat,
		state:    state.NewChatState(models.Chat[0].ID),
		viewport: viewport.New(0, 0),
		input:    ti,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:     help.New(),
	}
	p.spinner.Style = p.theme.PrimaryText()
	p.session = p.gateway.StartChat(p.ctx, p.state.Model, p.state.History())
	return p
}

func (p *ChatPage) ID() state.ID { return state.Chat }

func (p *ChatPage) MountID() int { return p.mount }

// State returns the current conversation state.
func (p *ChatPage) State() state.ChatState { return p.state }

// Session returns the session replies are requested on.
func (p *ChatPage) Session() *llm.Session { return p.session }

func (p *ChatPage) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.help.Width = width
	p.input.Width = max(10, width-6)
	p.viewport.Width = width
	p.viewport.Height = max(3, height-8)

	if wrap := p.bubbleWidth() - 4; p.renderer == nil || p.renderer.Width() != wrap {
		renderer, err := markdown.NewRenderer(p.theme.GlamourStyle(), wrap)
		if err != nil {
			log.Warn("markdown renderer unavailable", "err", err)
		}
		p.renderer = renderer
	}
	p.refresh()
}

func (p *ChatPage) Init() tea.Cmd {
	return textinput.Blink
}

func (p *ChatPage) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.SetSize(msg.Width, msg.Height)
		return p, nil

	case ChatReplyMsg:
		if msg.Epoch == p.state.Epoch && msg.Session != nil {
			p.session = msg.Session
		}
		p.state = p.state.Receive(msg.Epoch, msg.Result)
		p.refresh()
		return p, nil

	case spinner.TickMsg:
		if !p.state.Loading() {
			return p, nil
		}
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(msg)
		p.refresh()
		return p, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, chatKeys.Send):
			return p, p.send()
		case key.Matches(msg, chatKeys.SwitchModel):
			p.switchModel((p.modelIdx + 1) % len(p.models))
			return p, nil
		case key.Matches(msg, chatKeys.Copy):
			p.notice = copyText(p.state.LastReply())
			return p, nil
		case key.Matches(msg, chatKeys.Scroll):
			var cmd tea.Cmd
			p.viewport, cmd = p.viewport.Update(msg)
			return p, cmd
		}
	}

	if !p.state.Loading() {
		var cmd tea.Cmd
		p.input, cmd = p.input.Update(msg)
		cmds = append(cmds, cmd)
		p.state = p.state.SetInput(p.input.Value())
	}
	return p, tea.Batch(cmds...)
}

func (p *ChatPage) send() tea.Cmd {
	p.state = p.state.SetInput(p.input.Value())
	next, text, ok := p.state.Send()
	if !ok {
		return nil
	}
	p.state = next
	p.input.Reset()
	p.notice = ""
	p.refresh()

	ctx, gw, session := p.ctx, p.gateway, p.session
	mount, epoch := p.mount, p.state.Epoch
	request := func() tea.Msg {
		updated, result := gw.SendChatMessage(ctx, session, text)
		return ChatReplyMsg{Mount: mount, Epoch: epoch, Session: updated, Result: result}
	}
	return tea.Batch(request, p.spinner.Tick)
}

func (p *ChatPage) switchModel(idx int) {
	p.modelIdx = idx
	p.state = p.state.SwitchModel(p.models[idx].ID)
	p.session = p.gateway.StartChat(p.ctx, p.state.Model, p.state.History())
	p.notice = ""
	p.refresh()
}

func (p *ChatPage) bubbleWidth() int {
	if p.width <= 0 {
		return 60
	}
	return max(20, p.width*3/4)
}

func (p *ChatPage) refresh() {
	width := p.bubbleWidth()
	var sb strings.Builder
	for i, msg := range p.state.Messages {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		if msg.Role == llm.RoleUser {
			style := p.theme.UserBubble()
			if lipgloss.Width(msg.Text()) > width-2 {
				style = style.Width(width)
			}
			bubble := style.Render(msg.Text())
			sb.WriteString(lipgloss.PlaceHorizontal(max(p.width, lipgloss.Width(bubble)), lipgloss.Right, bubble))
			continue
		}
		sb.WriteString(p.theme.ModelBubble().Render(p.renderer.RenderOrPlain(msg.Text())))
	}
	if p.state.Loading() {
		sb.WriteString("\n\n")
		sb.WriteString(p.theme.ModelBubble().Render(p.spinner.View() + " " + thinkingLabel))
	}
	p.viewport.SetContent(sb.String())
	p.viewport.GotoBottom()
}

func (p *ChatPage) View() string {
	title := p.theme.Title().Render(chatTitle)
	model := p.theme.MutedText().Render(fmt.Sprintf("Modèle : %s", p.models[p.modelIdx].Name))
	header := lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", model)

	inputStyle := p.theme.BorderActive()
	if p.state.Loading() {
		inputStyle = p.theme.Border()
	}
	button := p.theme.ButtonDisabled().Render("Envoyer")
	if p.state.CanSend() {
		button = p.theme.Button().Render("Envoyer")
	}
	inputRow := lipgloss.JoinHorizontal(lipgloss.Center, inputStyle.Render(p.input.View()), " ", button)

	parts := []string{header, p.viewport.View(), inputRow}
	if p.notice != "" {
		parts = append(parts, p.theme.SuccessText().Render(p.notice))
	}
	parts = append(parts, p.help.View(chatKeys))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
