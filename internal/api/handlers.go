package api

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/dhidargpt/dhidar/internal/llm"
	"github.com/dhidargpt/dhidar/internal/media"
	"github.com/dhidargpt/dhidar/internal/page"
)

// maxBodyBytes bounds request bodies; an attached image travels as base64.
const maxBodyBytes = 32 << 20

const (
	invalidBodyMessage   = "Requête invalide."
	unknownModelMessage  = "Modèle inconnu."
	missingImageMIMEType = "Le type MIME de l'image est requis."
)

type errorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

// ChatStartRequest selects the model of a new conversation.
type ChatStartRequest struct {
	Model string `json:"model,omitempty"`
}

// ChatMessageRequest is a user turn.
type ChatMessageRequest struct {
	Message string `json:"message"`
}

// ChatMessageResponse is the reply to a user turn.
type ChatMessageResponse struct {
	Status string `json:"status"`
	Text   string `json:"text,omitempty"`
	Error  string `json:"error,omitempty"`
}

// SummarizeRequest carries the text to summarize.
type SummarizeRequest struct {
	Text string `json:"text"`
}

// SummarizeResponse is a summary with its metrics.
type SummarizeResponse struct {
	Status string `json:"status"`
	page.SummaryResult
}

// ImageRequest describes an image to generate, or to edit when Image is set.
// Image is either a raw base64 payload or a data URL.
type ImageRequest struct {
	Prompt   string `json:"prompt"`
	Image    string `json:"image,omitempty"`
	MIMEType string `json:"mimeType,omitempty"`
}

// ImageResponse carries the produced image as a data URL.
type ImageResponse struct {
	Status  string `json:"status"`
	DataURL string `json:"dataUrl,omitempty"`
	Error   string `json:"error,omitempty"`
}

// statusCode maps a result kind to the HTTP status of its response.
func statusCode(kind llm.ResultKind) int {
	switch kind {
	case llm.ResultSuccess:
		return http.StatusOK
	case llm.ResultPolicyRejected:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}

func decode(r *http.Request, v any) error {
	body := io.LimitReader(r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	models := s.gateway.Models()
	s.writeJSON(w, http.StatusOK, map[string]any{
		"chat":          models.Chat,
		"summarize":     models.Summarize,
		"imageEdit":     models.ImageEdit,
		"imageGenerate": models.ImageGenerate,
	})
}

func (s *Server) handleChatStart(w http.ResponseWriter, r *http.Request) {
	var req ChatStartRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, invalidBodyMessage, http.StatusBadRequest)
		return
	}

	models := s.gateway.Models()
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = models.DefaultChat()
	}
	if !slices.ContainsFunc(models.Chat, func(m llm.ModelOption) bool { return m.ID == model }) {
		s.writeError(w, unknownModelMessage, http.StatusBadRequest)
		return
	}

	session := s.gateway.StartChat(r.Context(), model, nil)

	s.mu.Lock()
	s.session = session
	s.mu.Unlock()

	log.FromContext(r.Context()).Info("chat session started", "model", model)
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status": llm.ResultSuccess.String(),
		"model":  model,
	})
}

func (s *Server) handleChatMessage(w http.ResponseWriter, r *http.Request) {
	var req ChatMessageRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, invalidBodyMessage, http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		s.writeError(w, llm.EmptyMessageMessage, http.StatusBadRequest)
		return
	}

	s.turn.Lock()
	defer s.turn.Unlock()

	s.mu.Lock()
	current := s.session
	s.mu.Unlock()

	session, result := s.gateway.SendChatMessage(r.Context(), current, req.Message)

	// A chat/start during the turn replaced the slot; keep its session.
	s.mu.Lock()
	if s.session == current {
		s.session = session
	}
	s.mu.Unlock()

	resp := ChatMessageResponse{Status: result.Kind.String()}
	switch result.Kind {
	case llm.ResultSuccess:
		resp.Text = result.Payload
	case llm.ResultPolicyRejected:
		resp.Error = llm.ChatFailureMessage
	default:
		resp.Error = result.Reason
		log.FromContext(r.Context()).Warn("chat message failed", "reason", result.Reason)
	}
	s.writeJSON(w, statusCode(result.Kind), resp)
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var req SummarizeRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, invalidBodyMessage, http.StatusBadRequest)
		return
	}
	if err := page.ValidateSummaryInput(req.Text); err != nil {
		s.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	result := s.gateway.Summarize(r.Context(), req.Text)
	if !result.OK() {
		log.FromContext(r.Context()).Warn("summarize failed", "kind", result.Kind, "reason", result.Reason)
		s.writeJSON(w, statusCode(result.Kind), errorResponse{
			Status: result.Kind.String(),
			Error:  failureText(result, llm.SummarizeFailureMessage),
		})
		return
	}
	s.writeJSON(w, http.StatusOK, SummarizeResponse{
		Status:        result.Kind.String(),
		SummaryResult: page.NewSummaryResult(req.Text, result.Payload),
	})
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	var req ImageRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, invalidBodyMessage, http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		s.writeError(w, llm.EmptyPromptMessage, http.StatusBadRequest)
		return
	}
	input, err := imageInput(req)
	if err != nil {
		var verr *media.ValidationError
		if errors.As(err, &verr) {
			s.writeError(w, verr.Message, http.StatusBadRequest)
			return
		}
		s.writeError(w, invalidBodyMessage, http.StatusBadRequest)
		return
	}

	result := s.gateway.GenerateOrEditImage(r.Context(), req.Prompt, input)
	resp := ImageResponse{Status: result.Kind.String()}
	switch result.Kind {
	case llm.ResultSuccess:
		resp.DataURL = result.Payload
	default:
		resp.Error = failureText(result, llm.ImageFailureMessage)
		log.FromContext(r.Context()).Warn("image request failed", "kind", result.Kind, "reason", result.Reason)
	}
	s.writeJSON(w, statusCode(result.Kind), resp)
}

// imageInput extracts the optional image of req.
func imageInput(req ImageRequest) (*llm.ImageInput, error) {
	if req.Image == "" {
		return nil, nil
	}
	mimeType, payload := req.MIMEType, req.Image
	if strings.HasPrefix(payload, "data:") {
		var err error
		mimeType, payload, err = media.SplitDataURL(payload)
		if err != nil {
			return nil, &media.ValidationError{Message: media.InvalidImageMessage, Err: err}
		}
	}
	if mimeType == "" {
		return nil, &media.ValidationError{Message: missingImageMIMEType}
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, &media.ValidationError{Message: media.InvalidImageMessage, Err: media.ErrNotImage}
	}
	if _, err := base64.StdEncoding.DecodeString(payload); err != nil {
		return nil, &media.ValidationError{Message: media.InvalidImageMessage, Err: media.ErrDecode}
	}
	return &llm.ImageInput{Payload: payload, MIMEType: mimeType}, nil
}

func failureText(result llm.Result, fallback string) string {
	if result.Kind == llm.ResultPolicyRejected {
		return page.PolicyRejectedMessage
	}
	if result.Reason != "" {
		return result.Reason
	}
	return fallback
}
