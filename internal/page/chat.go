package page

import (
	"slices"
	"strings"

	"github.com/dhidargpt/dhidar/internal/llm"
)

// Greeting opens every conversation. It is displayed but never sent as history.
const Greeting = "Bonjour ! Je suis DhidarGPT, votre assistant IA. Comment puis-je vous aider aujourd'hui ?"

// ChatState is the chat page: the rendered conversation and its input line.
// Epoch changes on every model switch so replies to an abandoned conversation
// can be recognised.
type ChatState struct {
	Messages []llm.ChatMessage
	Input    string
	Phase    Phase
	Model    string
	Epoch    int
}

// NewChatState starts a conversation on model with only the greeting.
func NewChatState(model string) ChatState {
	return ChatState{
		Messages: []llm.ChatMessage{llm.NewMessage(llm.RoleModel, Greeting)},
		Model:    model,
	}
}

// Loading reports whether a reply is pending.
func (s ChatState) Loading() bool { return s.Phase == Loading }

// CanSend reports whether the send trigger is enabled.
func (s ChatState) CanSend() bool {
	return !s.Loading() && strings.TrimSpace(s.Input) != ""
}

// SetInput replaces the text being typed.
func (s ChatState) SetInput(text string) ChatState {
	s.Input = text
	return s
}

// Send appends the typed text as a user turn and waits for the reply. The
// returned text is what must be sent; ok is false when sending is disabled.
func (s ChatState) Send() (next ChatState, text string, ok bool) {
	if !s.CanSend() {
		return s, "", false
	}
	text = s.Input
	s.Messages = append(slices.Clip(s.Messages), llm.NewMessage(llm.RoleUser, text))
	s.Input = ""
	s.Phase = Loading
	return s, text, true
}

// Receive appends the reply to the request sent during epoch. Failures are
// shown in the conversation as model turns. Replies from another epoch, or
// arriving while nothing is pending, are ignored.
func (s ChatState) Receive(epoch int, r llm.Result) ChatState {
	if epoch != s.Epoch || !s.Loading() {
		return s
	}
	text := r.Message()
	s.Phase = Success
	switch r.Kind {
	case llm.ResultFailure:
		s.Phase = Error
	case llm.ResultPolicyRejected:
		text = llm.ChatFailureMessage
		s.Phase = Error
	}
	if text == "" {
		text = llm.ChatFailureMessage
	}
	s.Messages = append(slices.Clip(s.Messages), llm.NewMessage(llm.RoleModel, text))
	return s
}

// SwitchModel discards the conversation and starts over on model. The caller
// must open a new session with History.
func (s ChatState) SwitchModel(model string) ChatState {
	next := NewChatState(model)
	next.Input = s.Input
	next.Epoch = s.Epoch + 1
	return next
}

// History returns the turns to seed a provider session with, greeting excluded.
func (s ChatState) History() []llm.ChatMessage {
	var history []llm.ChatMessage
	for i, msg := range s.Messages {
		if i == 0 && msg.Role == llm.RoleModel && msg.Text() == Greeting {
			continue
		}
		history = append(history, msg)
	}
	return history
}

// LastReply returns the text of the latest model turn.
func (s ChatState) LastReply() string {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == llm.RoleModel {
			return s.Messages[i].Text()
		}
	}
	return ""
}
