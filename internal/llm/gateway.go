package llm

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/dhidargpt/dhidar/internal/media"
	"google.golang.org/genai"
)

// User-facing failure reasons. The application speaks French.
const (
	ChatFailureMessage      = "Désolé, une erreur s'est produite. Veuillez réessayer."
	SummarizeFailureMessage = "Désolé, une erreur s'est produite lors du résumé du texte."
	ImageFailureMessage     = "Désolé, une erreur inattendue s'est produite lors de la génération de l'image."
	NoImageDataMessage      = "Impossible de générer l'image. Aucune donnée d'image n'a été trouvée dans la réponse."
	NoImageReturnedMessage  = "Impossible de générer l'image. Aucune image n'a été retournée par l'API."

	EmptyMessageMessage = "Le message ne peut pas être vide."
	EmptyTextMessage    = "Veuillez entrer du texte à résumer ou télécharger un fichier."
	EmptyPromptMessage  = "Veuillez entrer une description pour l'image."
)

const (
	generatedImageMIMEType = "image/jpeg"
	generatedAspectRatio   = "1:1"
)

// ModelOption is a selectable chat model.
type ModelOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DefaultChatModels are offered by the chat page, first one is the default.
var DefaultChatModels = []ModelOption{
	{ID: "gemini-2.5-flash", Name: "Gemini 2.5 Flash"},
	{ID: "gemini-2.5-pro", Name: "Gemini 2.5 Pro"},
}

// Models names the provider models used by each feature.
type Models struct {
	Chat          []ModelOption
	Summarize     string
	ImageEdit     string
	ImageGenerate string
}

// DefaultModels returns the stock model selection.
func DefaultModels() Models {
	return Models{
		Chat:          append([]ModelOption(nil), DefaultChatModels...),
		Summarize:     "gemini-2.5-flash",
		ImageEdit:     "gemini-2.5-flash-image",
		ImageGenerate: "imagen-4.0-generate-001",
	}
}

// DefaultChat returns the id of the first chat model.
func (m Models) DefaultChat() string {
	if len(m.Chat) == 0 {
		return DefaultChatModels[0].ID
	}
	return m.Chat[0].ID
}

func (m Models) withDefaults() Models {
	def := DefaultModels()
	if len(m.Chat) == 0 {
		m.Chat = def.Chat
	}
	if m.Summarize == "" {
		m.Summarize = def.Summarize
	}
	if m.ImageEdit == "" {
		m.ImageEdit = def.ImageEdit
	}
	if m.ImageGenerate == "" {
		m.ImageGenerate = def.ImageGenerate
	}
	return m
}

// ImageInput is an optional image to edit, as a base64 payload.
type ImageInput struct {
	Payload  string
	MIMEType string
}

// Session is a chat conversation bound to one model and one starting
// history. Its holder threads it through SendChatMessage; StartChat replaces it.
type Session struct {
	model   string
	history []ChatMessage
	chat    Chat
}

// Model returns the model id the session is bound to.
func (s *Session) Model() string { return s.model }

// Gateway translates local request shapes into provider calls and provider
// responses into Results. It never returns provider errors to its caller.
type Gateway struct {
	client Client
	models Models
}

// NewGateway builds a gateway. Empty model fields fall back to DefaultModels.
func NewGateway(client Client, models Models) *Gateway {
	return &Gateway{client: client, models: models.withDefaults()}
}

// Models returns the model selection in use.
func (g *Gateway) Models() Models { return g.models }

// StartChat opens a session for modelID seeded with history. Display-only
// messages such as the greeting must already be excluded. If the provider
// refuses to open the conversation, the session retries on first send.
func (g *Gateway) StartChat(ctx context.Context, modelID string, history []ChatMessage) *Session {
	if modelID == "" {
		modelID = g.models.DefaultChat()
	}
	s := &Session{
		model:   modelID,
		history: append([]ChatMessage(nil), history...),
	}
	chat, err := g.client.NewChat(ctx, modelID, toContents(s.history))
	if err != nil {
		log.Error("failed to start chat", "model", modelID, "err", err)
		return s
	}
	s.chat = chat
	log.Debug("chat started", "model", modelID, "history", len(history))
	return s
}

// SendChatMessage sends text on session and returns the reply. A nil session
// is replaced by a default one, which is returned for the caller to keep.
func (g *Gateway) SendChatMessage(ctx context.Context, session *Session, text string) (*Session, Result) {
	if strings.TrimSpace(text) == "" {
		return session, Failure(EmptyMessageMessage)
	}
	if session == nil {
		session = g.StartChat(ctx, g.models.DefaultChat(), nil)
	}
	if session.chat == nil {
		chat, err := g.client.NewChat(ctx, session.model, toContents(session.history))
		if err != nil {
			log.Error("failed to start chat", "model", session.model, "err", err)
			return session, Failure(ChatFailureMessage)
		}
		session.chat = chat
	}

	resp, err := session.chat.SendMessage(ctx, genai.Part{Text: text})
	if err != nil {
		log.Error("error getting chat response", "model", session.model, "err", err)
		return session, Failure(ChatFailureMessage)
	}
	reply := responseText(resp)
	if reply == "" {
		log.Warn("empty chat response", "model", session.model)
		return session, Failure(ChatFailureMessage)
	}
	return session, Success(reply)
}

// SummaryPrompt is the single-turn instruction sent for summarization.
func SummaryPrompt(text string) string {
	return "Résume le texte suivant en français. Sois concis et extrais les points clés. Le texte est : \n\n" + text
}

// Summarize asks for a concise French summary of text. Length validation is
// the caller's job; long input is left to the provider's limits.
func (g *Gateway) Summarize(ctx context.Context, text string) Result {
	if strings.TrimSpace(text) == "" {
		return Failure(EmptyTextMessage)
	}
	resp, err := g.client.GenerateContent(ctx, g.models.Summarize, genai.Text(SummaryPrompt(text)), nil)
	if err != nil {
		log.Error("error summarizing text", "model", g.models.Summarize, "err", err)
		return Failure(SummarizeFailureMessage)
	}
	summary := responseText(resp)
	if summary == "" {
		log.Warn("empty summary response", "model", g.models.Summarize)
		return Failure(SummarizeFailureMessage)
	}
	return Success(summary)
}

// GenerateOrEditImage edits input according to prompt, or generates a new
// image when input is nil. Success carries a data URL.
func (g *Gateway) GenerateOrEditImage(ctx context.Context, prompt string, input *ImageInput) Result {
	if strings.TrimSpace(prompt) == "" {
		return Failure(EmptyPromptMessage)
	}
	if input != nil && input.Payload != "" && input.MIMEType != "" {
		return g.editImage(ctx, prompt, input)
	}
	return g.generateImage(ctx, prompt)
}

func (g *Gateway) editImage(ctx context.Context, prompt string, input *ImageInput) Result {
	data, err := base64.StdEncoding.DecodeString(input.Payload)
	if err != nil {
		log.Error("invalid input image payload", "err", err)
		return Failure(ImageFailureMessage)
	}

	contents := []*genai.Content{{
		Role: string(RoleUser),
		Parts: []*genai.Part{
			{InlineData: &genai.Blob{Data: data, MIMEType: input.MIMEType}},
			{Text: prompt},
		},
	}}
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE"},
	}

	resp, err := g.client.GenerateContent(ctx, g.models.ImageEdit, contents, config)
	if err != nil {
		log.Error("error editing image", "model", g.models.ImageEdit, "err", err)
		return Failure(ImageFailureMessage)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return Failure(NoImageDataMessage)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		log.Warn("image edit blocked by safety filter", "model", g.models.ImageEdit)
		return PolicyRejected()
	}
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part != nil && part.InlineData != nil {
				return Success(media.DataURL(part.InlineData.MIMEType, part.InlineData.Data))
			}
		}
	}
	return Failure(NoImageDataMessage)
}

func (g *Gateway) generateImage(ctx context.Context, prompt string) Result {
	config := &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		OutputMIMEType: generatedImageMIMEType,
		AspectRatio:    generatedAspectRatio,
	}

	resp, err := g.client.GenerateImages(ctx, g.models.ImageGenerate, prompt, config)
	if err != nil {
		log.Error("error generating image", "model", g.models.ImageGenerate, "err", err)
		return Failure(ImageFailureMessage)
	}
	if resp == nil || len(resp.GeneratedImages) == 0 {
		return Failure(NoImageReturnedMessage)
	}
	first := resp.GeneratedImages[0]
	if first == nil || first.Image == nil || len(first.Image.ImageBytes) == 0 {
		return Failure(NoImageReturnedMessage)
	}
	return Success(media.DataURL(generatedImageMIMEType, first.Image.ImageBytes))
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	return resp.Text()
}
