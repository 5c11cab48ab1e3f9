package llm

import (
	"strings"

	"google.golang.org/genai"
)

// Role identifies the author of a chat turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Part is one text segment of a chat turn.
type Part struct {
	Text string `json:"text"`
}

// ChatMessage is a chat turn. Order matters: the sequence is both the display
// history and the conversation context sent to the provider.
type ChatMessage struct {
	Role  Role   `json:"role"`
	Parts []Part `json:"parts"`
}

// NewMessage builds a single-part message.
func NewMessage(role Role, text string) ChatMessage {
	return ChatMessage{Role: role, Parts: []Part{{Text: text}}}
}

// Text joins the message parts.
func (m ChatMessage) Text() string {
	if len(m.Parts) == 1 {
		return m.Parts[0].Text
	}
	var sb strings.Builder
	for _, p := range m.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String()
}

// toContents converts history to the provider's content schema. Messages
// without parts are skipped since the provider rejects empty turns.
func toContents(history []ChatMessage) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		if len(msg.Parts) == 0 {
			continue
		}
		parts := make([]*genai.Part, 0, len(msg.Parts))
		for _, p := range msg.Parts {
			parts = append(parts, &genai.Part{Text: p.Text})
		}
		role := string(RoleUser)
		if msg.Role == RoleModel {
			role = string(RoleModel)
		}
		contents = append(contents, &genai.Content{Role: role, Parts: parts})
	}
	return contents
}
