package llm

import (
	"context"

	"google.golang.org/genai"
)

// Chat is a provider-side conversation. *genai.Chat satisfies it.
type Chat interface {
	SendMessage(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Client is the subset of the provider API the gateway calls.
type Client interface {
	NewChat(ctx context.Context, model string, history []*genai.Content) (Chat, error)
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	GenerateImages(ctx context.Context, model, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)
}
