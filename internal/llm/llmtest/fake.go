// Package llmtest provides a scriptable llm.Client for tests.
package llmtest

import (
	"context"
	"sync"

	"github.com/dhidargpt/dhidar/internal/llm"
	"google.golang.org/genai"
)

// ContentCall records one GenerateContent invocation.
type ContentCall struct {
	Model    string
	Contents []*genai.Content
	Config   *genai.GenerateContentConfig
}

// ImagesCall records one GenerateImages invocation.
type ImagesCall struct {
	Model  string
	Prompt string
	Config *genai.GenerateImagesConfig
}

// ChatCall records one NewChat invocation.
type ChatCall struct {
	Model   string
	History []*genai.Content
}

// FakeClient is a mock implementation of llm.Client. Unset funcs return
// empty successful responses.
type FakeClient struct {
	NewChatFunc         func(ctx context.Context, model string, history []*genai.Content) (llm.Chat, error)
	SendMessageFunc     func(ctx context.Context, model string, parts ...genai.Part) (*genai.GenerateContentResponse, error)
	GenerateContentFunc func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	GenerateImagesFunc  func(ctx context.Context, model, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)

	mu           sync.Mutex
	chatCalls    []ChatCall
	sentMessages []string
	contentCalls []ContentCall
	imagesCalls  []ImagesCall
}

var _ llm.Client = (*FakeClient)(nil)

// NewChat mocks the NewChat method
func (f *FakeClient) NewChat(ctx context.Context, model string, history []*genai.Content) (llm.Chat, error) {
	f.mu.Lock()
	f.chatCalls = append(f.chatCalls, ChatCall{Model: model, History: history})
	f.mu.Unlock()

	if f.NewChatFunc != nil {
		return f.NewChatFunc(ctx, model, history)
	}
	return &fakeChat{client: f, model: model}, nil
}

// GenerateContent mocks the GenerateContent method
func (f *FakeClient) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	f.contentCalls = append(f.contentCalls, ContentCall{Model: model, Contents: contents, Config: config})
	f.mu.Unlock()

	if f.GenerateContentFunc != nil {
		return f.GenerateContentFunc(ctx, model, contents, config)
	}
	return &genai.GenerateContentResponse{}, nil
}

// GenerateImages mocks the GenerateImages method
func (f *FakeClient) GenerateImages(ctx context.Context, model, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
	f.mu.Lock()
	f.imagesCalls = append(f.imagesCalls, ImagesCall{Model: model, Prompt: prompt, Config: config})
	f.mu.Unlock()

	if f.GenerateImagesFunc != nil {
		return f.GenerateImagesFunc(ctx, model, prompt, config)
	}
	return &genai.GenerateImagesResponse{}, nil
}

// ChatCalls returns every NewChat invocation so far.
func (f *FakeClient) ChatCalls() []ChatCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ChatCall(nil), f.chatCalls...)
}

// SentMessages returns the text of every message sent on any fake chat.
func (f *FakeClient) SentMessages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sentMessages...)
}

// ContentCalls returns every GenerateContent invocation so far.
func (f *FakeClient) ContentCalls() []ContentCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ContentCall(nil), f.contentCalls...)
}

// ImagesCalls returns every GenerateImages invocation so far.
func (f *FakeClient) ImagesCalls() []ImagesCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ImagesCall(nil), f.imagesCalls...)
}

type fakeChat struct {
	client *FakeClient
	model  string
}

func (c *fakeChat) SendMessage(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	c.client.mu.Lock()
	for _, p := range parts {
		c.client.sentMessages = append(c.client.sentMessages, p.Text)
	}
	c.client.mu.Unlock()

	if c.client.SendMessageFunc != nil {
		return c.client.SendMessageFunc(ctx, c.model, parts...)
	}
	return TextResponse(""), nil
}

// TextResponse builds a single-candidate text response.
func TextResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Role:  string(llm.RoleModel),
				Parts: []*genai.Part{{Text: text}},
			},
		}},
	}
}

// ImagePartResponse builds a response whose first candidate holds inline image data.
func ImagePartResponse(mimeType string, data []byte) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Role:  string(llm.RoleModel),
				Parts: []*genai.Part{{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}}},
			},
			FinishReason: genai.FinishReasonStop,
		}},
	}
}

// SafetyResponse builds a response blocked by the safety filter.
func SafetyResponse() *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}},
	}
}

// GeneratedImages builds an image generation response.
func GeneratedImages(images ...[]byte) *genai.GenerateImagesResponse {
	resp := &genai.GenerateImagesResponse{}
	for _, img := range images {
		resp.GeneratedImages = append(resp.GeneratedImages, &genai.GeneratedImage{
			Image: &genai.Image{ImageBytes: img, MIMEType: "image/jpeg"},
		})
	}
	return resp
}
