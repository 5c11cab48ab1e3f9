package page

import (
	"errors"
	"strings"

	"github.com/dhidargpt/dhidar/internal/llm"
	"github.com/dhidargpt/dhidar/internal/media"
)

// PolicyRejectedMessage is shown when the provider blocks a request on safety grounds.
const PolicyRejectedMessage = "La génération d'image a été bloquée car le prompt ou l'image enfreint les politiques de sécurité. Veuillez modifier votre demande."

// Prompt placeholders, depending on whether an image is attached.
const (
	GeneratePlaceholder = "Ex: Un astronaute surfant sur une vague cosmique..."
	EditPlaceholder     = "Décrivez les modifications à apporter..."
)

// ImageState is the image page. It owns the preview handles of the attached
// and generated images: every transition that drops one releases it.
type ImageState struct {
	Prompt string
	Input  *media.InputImage

	// Output is the generated image as a data URL.
	Output        string
	OutputPreview *media.Preview

	Err   string
	Phase Phase
}

// Loading reports whether an image is pending.
func (s ImageState) Loading() bool { return s.Phase == Loading }

// SetPrompt replaces the image description.
func (s ImageState) SetPrompt(prompt string) ImageState {
	s.Prompt = prompt
	return s
}

// Placeholder returns the hint shown in an empty prompt.
func (s ImageState) Placeholder() string {
	if s.Input != nil {
		return EditPlaceholder
	}
	return GeneratePlaceholder
}

// Attach makes img the image to edit, releasing the previous one.
func (s ImageState) Attach(img *media.InputImage) ImageState {
	if s.Input != img {
		s.Input.Release()
	}
	s.Input = img
	s.Err = ""
	return s
}

// RejectFile reports a picked file that cannot be used. The current
// attachment is kept.
func (s ImageState) RejectFile(err error) ImageState {
	var verr *media.ValidationError
	switch {
	case errors.As(err, &verr):
		s.Err = verr.Message
	default:
		s.Err = media.InvalidImageMessage
	}
	return s
}

// Remove drops the attached image.
func (s ImageState) Remove() ImageState {
	s.Input.Release()
	s.Input = nil
	return s
}

// CanGenerate reports whether the generate trigger is enabled.
func (s ImageState) CanGenerate() bool {
	return !s.Loading() && strings.TrimSpace(s.Prompt) != ""
}

// Generate starts a request. It returns the prompt and, when an image is
// attached, the image to edit. An empty prompt only sets the error.
func (s ImageState) Generate() (next ImageState, prompt string, input *llm.ImageInput, ok bool) {
	if s.Loading() {
		return s, "", nil, false
	}
	if strings.TrimSpace(s.Prompt) == "" {
		s.Err = llm.EmptyPromptMessage
		return s, "", nil, false
	}
	s.Err = ""
	s = s.clearOutput()
	s.Phase = Loading
	if s.Input != nil {
		input = &llm.ImageInput{Payload: s.Input.Payload, MIMEType: s.Input.MIMEType}
	}
	return s, s.Prompt, input, true
}

// Complete records the outcome of the pending request. preview is the decoded
// generated image, if any; it is released when not kept.
func (s ImageState) Complete(r llm.Result, preview *media.Preview) ImageState {
	if !s.Loading() {
		preview.Release()
		return s
	}
	switch r.Kind {
	case llm.ResultSuccess:
		s.Output = r.Payload
		s.OutputPreview = preview
		s.Phase = Success
		return s
	case llm.ResultPolicyRejected:
		s.Err = PolicyRejectedMessage
	default:
		s.Err = r.Reason
		if s.Err == "" {
			s.Err = llm.ImageFailureMessage
		}
	}
	preview.Release()
	s.Phase = Error
	return s
}

// Close releases every handle the page holds.
func (s ImageState) Close() ImageState {
	s = s.Remove()
	return s.clearOutput()
}

func (s ImageState) clearOutput() ImageState {
	s.OutputPreview.Release()
	s.OutputPreview = nil
	s.Output = ""
	return s
}
