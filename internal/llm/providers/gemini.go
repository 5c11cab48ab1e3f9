package providers

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/dhidargpt/dhidar/internal/config"
	"github.com/dhidargpt/dhidar/internal/llm"
	"google.golang.org/genai"
)

// GeminiClient implements llm.Client using the official Google Gen AI SDK.
// The SDK client is created on first use.
type GeminiClient struct {
	apiKey string

	mu     sync.Mutex
	client *genai.Client
}

var _ llm.Client = (*GeminiClient)(nil)

// NewGeminiClient creates a Gemini client for apiKey
func NewGeminiClient(apiKey string) *GeminiClient {
	return &GeminiClient{apiKey: apiKey}
}

func (g *GeminiClient) sdk(ctx context.Context) (*genai.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.client != nil {
		return g.client, nil
	}
	if g.apiKey == "" {
		return nil, config.ErrMissingAPIKey
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  g.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	log.Debug("gemini client created")
	g.client = client
	return client, nil
}

// NewChat opens a multi-turn conversation seeded with history.
func (g *GeminiClient) NewChat(ctx context.Context, model string, history []*genai.Content) (llm.Chat, error) {
	client, err := g.sdk(ctx)
	if err != nil {
		return nil, err
	}
	chat, err := client.Chats.Create(ctx, model, nil, history)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat for %s: %w", model, err)
	}
	return chat, nil
}

// GenerateContent performs a single-turn request.
func (g *GeminiClient) GenerateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	client, err := g.sdk(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini generate content: %w", err)
	}
	return resp, nil
}

// GenerateImages asks an Imagen model for new images.
func (g *GeminiClient) GenerateImages(ctx context.Context, model, prompt string, cfg *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
	client, err := g.sdk(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := client.Models.GenerateImages(ctx, model, prompt, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini generate images: %w", err)
	}
	return resp, nil
}
