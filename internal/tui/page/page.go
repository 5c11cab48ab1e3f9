// Package page contains the bubbletea models of each screen. They render the
// state machines of internal/page and turn their transitions into gateway
// calls.
package page

import (
	"context"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/dhidargpt/dhidar/internal/llm"
	state "github.com/dhidargpt/dhidar/internal/page"
	"github.com/dhidargpt/dhidar/internal/tui/theme"
)

// Gateway is the part of the AI gateway the pages call.
type Gateway interface {
	Models() llm.Models
	StartChat(ctx context.Context, modelID string, history []llm.ChatMessage) *llm.Session
	SendChatMessage(ctx context.Context, session *llm.Session, text string) (*llm.Session, llm.Result)
	Summarize(ctx context.Context, text string) llm.Result
	GenerateOrEditImage(ctx context.Context, prompt string, input *llm.ImageInput) llm.Result
}

var _ Gateway = (*llm.Gateway)(nil)

// Page is a mounted screen.
type Page interface {
	tea.Model
	ID() state.ID
	MountID() int
	SetSize(width, height int)
}

// Closer is implemented by pages holding resources to free when unmounted.
type Closer interface {
	Close()
}

// Modal is implemented by pages that sometimes need esc for themselves.
type Modal interface {
	Modal() bool
}

// Mounted is implemented by results addressed to one mount of a page.
type Mounted interface {
	MountID() int
}

// Releaser is implemented by results carrying handles the receiver must free.
type Releaser interface {
	Release()
}

// NavigateMsg asks the shell to show another page.
type NavigateMsg struct {
	To state.ID
}

// Navigate returns a command emitting NavigateMsg.
func Navigate(to state.ID) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{To: to} }
}

// Options are the dependencies of a page.
type Options struct {
	Ctx        context.Context
	Gateway    Gateway
	Theme      theme.Theme
	WorkingDir string
	Mount      int
}

func (o Options) withDefaults() Options {
	if o.Ctx == nil {
		o.Ctx = context.Background()
	}
	if o.Theme == nil {
		o.Theme = theme.NewDefaultTheme()
	}
	return o
}

// Notices shown after copy actions.
const (
	CopiedNotice     = "Copié dans le presse-papiers."
	CopyFailedNotice = "Impossible de copier dans le presse-papiers."
	NothingToCopy    = "Rien à copier pour le moment."
)

// writeClipboard is replaced in tests.
var writeClipboard = clipboard.WriteAll

func copyText(text string) string {
	if text == "" {
		return NothingToCopy
	}
	if err := writeClipboard(text); err != nil {
		log.Warn("clipboard write failed", "err", err)
		return CopyFailedNotice
	}
	return CopiedNotice
}
