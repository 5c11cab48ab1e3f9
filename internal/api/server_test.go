package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dhidargpt/dhidar/internal/llm"
	"github.com/dhidargpt/dhidar/internal/llm/llmtest"
	"github.com/dhidargpt/dhidar/internal/media"
	"github.com/dhidargpt/dhidar/internal/page"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func newTestServer(t *testing.T, fake *llmtest.FakeClient) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewServer(llm.NewGateway(fake, llm.Models{})).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, srv *httptest.Server, path string, body any) (*http.Response, map[string]any) {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(srv.URL+path, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &llmtest.FakeClient{})

	resp, err := http.Get(srv.URL + "/api/v1/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	_, err = uuid.Parse(resp.Header.Get(RequestIDHeader))
	assert.NoError(t, err, "every response carries a request id")
}

func TestRequestIDIsEchoed(t *testing.T) {
	srv := newTestServer(t, &llmtest.FakeClient{})
	id := uuid.NewString()

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/health", nil)
	require.NoError(t, err)
	req.Header.Set(RequestIDHeader, id)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, id, resp.Header.Get(RequestIDHeader))
}

func TestModels(t *testing.T) {
	srv := newTestServer(t, &llmtest.FakeClient{})

	resp, err := http.Get(srv.URL + "/api/v1/models")
	require.NoError(t, err)
	defer resp.Body.Close()

	var out struct {
		Chat      []llm.ModelOption `json:"chat"`
		Summarize string            `json:"summarize"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, llm.DefaultChatModels, out.Chat)
	assert.Equal(t, "gemini-2.5-flash", out.Summarize)
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t, &llmtest.FakeClient{})

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/v1/chat/message", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestChatConversation(t *testing.T) {
	fake := &llmtest.FakeClient{
		SendMessageFunc: func(ctx context.Context, model string, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
			return llmtest.TextResponse("Bonjour depuis " + model), nil
		},
	}
	srv := newTestServer(t, fake)

	resp, out := post(t, srv, "/api/v1/chat/start", ChatStartRequest{Model: "gemini-2.5-pro"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "gemini-2.5-pro", out["model"])

	resp, out = post(t, srv, "/api/v1/chat/message", ChatMessageRequest{Message: "Salut"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "success", out["status"])
	assert.Equal(t, "Bonjour depuis gemini-2.5-pro", out["text"])

	post(t, srv, "/api/v1/chat/message", ChatMessageRequest{Message: "Encore"})
	assert.Equal(t, []string{"Salut", "Encore"}, fake.SentMessages())
	assert.Len(t, fake.ChatCalls(), 1, "the session slot is reused")
}

func TestChatMessageWithoutStartUsesDefaultModel(t *testing.T) {
	fake := &llmtest.FakeClient{
		SendMessageFunc: func(ctx context.Context, model string, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
			return llmtest.TextResponse(model), nil
		},
	}
	srv := newTestServer(t, fake)

	_, out := post(t, srv, "/api/v1/chat/message", ChatMessageRequest{Message: "Salut"})

	assert.Equal(t, llm.DefaultChatModels[0].ID, out["text"])
}

func TestChatStartResetsSession(t *testing.T) {
	fake := &llmtest.FakeClient{}
	srv := newTestServer(t, fake)

	post(t, srv, "/api/v1/chat/start", ChatStartRequest{})
	post(t, srv, "/api/v1/chat/message", ChatMessageRequest{Message: "un"})
	post(t, srv, "/api/v1/chat/start", ChatStartRequest{Model: "gemini-2.5-flash"})
	post(t, srv, "/api/v1/chat/message", ChatMessageRequest{Message: "deux"})

	assert.Len(t, fake.ChatCalls(), 2)
}

// postStatus posts from a goroutine and reports only the status code.
func postStatus(srv *httptest.Server, path string, body any) int {
	data, _ := json.Marshal(body)
	resp, err := http.Post(srv.URL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		return 0
	}
	resp.Body.Close()
	return resp.StatusCode
}

// blockingChat returns a client whose chat replies wait for release. Register
// release as a cleanup after the server so a failing test does not hang.
func blockingChat(t *testing.T) (fake *llmtest.FakeClient, sent <-chan struct{}, release func()) {
	t.Helper()
	sentCh := make(chan struct{}, 1)
	releaseCh := make(chan struct{})
	var once sync.Once
	release = func() { once.Do(func() { close(releaseCh) }) }
	fake = &llmtest.FakeClient{
		SendMessageFunc: func(ctx context.Context, model string, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
			sentCh <- struct{}{}
			<-releaseCh
			return llmtest.TextResponse("tard"), nil
		},
	}
	return fake, sentCh, release
}

func TestHealthDuringChatTurn(t *testing.T) {
	fake, sent, release := blockingChat(t)
	srv := newTestServer(t, fake)
	t.Cleanup(release)

	done := make(chan struct{})
	go func() {
		defer close(done)
		postStatus(srv, "/api/v1/chat/message", ChatMessageRequest{Message: "Salut"})
	}()
	<-sent

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(srv.URL + "/api/v1/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	release()
	<-done
}

func TestChatStartDuringChatTurn(t *testing.T) {
	fake, sent, release := blockingChat(t)
	srv := newTestServer(t, fake)
	t.Cleanup(release)
	post(t, srv, "/api/v1/chat/start", ChatStartRequest{Model: "gemini-2.5-flash"})

	done := make(chan struct{})
	go func() {
		defer close(done)
		postStatus(srv, "/api/v1/chat/message", ChatMessageRequest{Message: "Salut"})
	}()
	<-sent

	started := make(chan int, 1)
	go func() {
		started <- postStatus(srv, "/api/v1/chat/start", ChatStartRequest{Model: "gemini-2.5-pro"})
	}()
	select {
	case code := <-started:
		assert.Equal(t, http.StatusOK, code)
	case <-time.After(2 * time.Second):
		t.Fatal("chat/start waited for the pending turn")
	}

	release()
	<-done

	// The late reply does not bring the replaced session back.
	resp, err := http.Get(srv.URL + "/api/v1/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	var health map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "gemini-2.5-pro", health["chatModel"])
}

func TestChatStartRejectsUnknownModel(t *testing.T) {
	srv := newTestServer(t, &llmtest.FakeClient{})

	resp, out := post(t, srv, "/api/v1/chat/start", ChatStartRequest{Model: "gpt-4"})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, unknownModelMessage, out["error"])
}

func TestChatMessageValidation(t *testing.T) {
	fake := &llmtest.FakeClient{}
	srv := newTestServer(t, fake)

	resp, out := post(t, srv, "/api/v1/chat/message", ChatMessageRequest{Message: "   "})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "error", out["status"])
	assert.Equal(t, llm.EmptyMessageMessage, out["error"])
	assert.Empty(t, fake.SentMessages())
}

func TestChatMessageProviderFailure(t *testing.T) {
	fake := &llmtest.FakeClient{
		SendMessageFunc: func(ctx context.Context, model string, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
			return nil, errors.New("unavailable")
		},
	}
	srv := newTestServer(t, fake)

	resp, out := post(t, srv, "/api/v1/chat/message", ChatMessageRequest{Message: "Salut"})

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "error", out["status"])
	assert.Equal(t, llm.ChatFailureMessage, out["error"])
}

func TestInvalidBody(t *testing.T) {
	srv := newTestServer(t, &llmtest.FakeClient{})

	resp, err := http.Post(srv.URL+"/api/v1/summarize", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSummarize(t *testing.T) {
	fake := &llmtest.FakeClient{
		GenerateContentFunc: func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return llmtest.TextResponse("Résumé test"), nil
		},
	}
	srv := newTestServer(t, fake)

	resp, out := post(t, srv, "/api/v1/summarize", SummarizeRequest{Text: strings.Repeat("a", 150)})

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "success", out["status"])
	assert.Equal(t, "Résumé test", out["summary"])
	assert.EqualValues(t, 150, out["originalLength"])
	assert.EqualValues(t, 11, out["summaryLength"])
	assert.EqualValues(t, 7, out["compressionRatio"])
}

func TestSummarizeValidation(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"empty", "", llm.EmptyTextMessage},
		{"blank", "   \n", llm.EmptyTextMessage},
		{"too short", strings.Repeat("a", 99), page.TooShortMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &llmtest.FakeClient{}
			srv := newTestServer(t, fake)

			resp, out := post(t, srv, "/api/v1/summarize", SummarizeRequest{Text: tt.text})

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, tt.want, out["error"])
			assert.Empty(t, fake.ContentCalls())
		})
	}
}

func TestSummarizeFailure(t *testing.T) {
	fake := &llmtest.FakeClient{
		GenerateContentFunc: func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return nil, errors.New("quota exceeded")
		},
	}
	srv := newTestServer(t, fake)

	resp, out := post(t, srv, "/api/v1/summarize", SummarizeRequest{Text: strings.Repeat("a", 150)})

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "error", out["status"])
	assert.Equal(t, llm.SummarizeFailureMessage, out["error"])
}

func TestImageGenerate(t *testing.T) {
	fake := &llmtest.FakeClient{
		GenerateImagesFunc: func(ctx context.Context, model, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
			return llmtest.GeneratedImages([]byte{0xff, 0xd8, 0xff}), nil
		},
	}
	srv := newTestServer(t, fake)

	resp, out := post(t, srv, "/api/v1/image", ImageRequest{Prompt: "un chat astronaute"})

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "success", out["status"])
	assert.Equal(t, media.DataURL("image/jpeg", []byte{0xff, 0xd8, 0xff}), out["dataUrl"])
	require.Len(t, fake.ImagesCalls(), 1)
	assert.Equal(t, "un chat astronaute", fake.ImagesCalls()[0].Prompt)
}

func TestImageEditFromDataURL(t *testing.T) {
	fake := &llmtest.FakeClient{
		GenerateContentFunc: func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return llmtest.ImagePartResponse("image/png", []byte("edited")), nil
		},
	}
	srv := newTestServer(t, fake)

	resp, out := post(t, srv, "/api/v1/image", ImageRequest{
		Prompt: "ajoute un chapeau",
		Image:  media.DataURL("image/png", []byte("original")),
	})

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, media.DataURL("image/png", []byte("edited")), out["dataUrl"])

	calls := fake.ContentCalls()
	require.Len(t, calls, 1)
	parts := calls[0].Contents[0].Parts
	require.Len(t, parts, 2)
	assert.Equal(t, "image/png", parts[0].InlineData.MIMEType)
	assert.Equal(t, []byte("original"), parts[0].InlineData.Data)
	assert.Empty(t, fake.ImagesCalls())
}

func TestImagePolicyRejected(t *testing.T) {
	fake := &llmtest.FakeClient{
		GenerateContentFunc: func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return llmtest.SafetyResponse(), nil
		},
	}
	srv := newTestServer(t, fake)

	resp, out := post(t, srv, "/api/v1/image", ImageRequest{
		Prompt:   "modifie",
		Image:    base64.StdEncoding.EncodeToString([]byte("original")),
		MIMEType: "image/jpeg",
	})

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "policy_rejected", out["status"])
	assert.Equal(t, page.PolicyRejectedMessage, out["error"])
}

func TestImageValidation(t *testing.T) {
	tests := []struct {
		name string
		req  ImageRequest
		want string
	}{
		{"empty prompt", ImageRequest{Prompt: "  "}, llm.EmptyPromptMessage},
		{"missing mime type", ImageRequest{Prompt: "p", Image: "AAAA"}, missingImageMIMEType},
		{"not an image", ImageRequest{Prompt: "p", Image: "AAAA", MIMEType: "text/plain"}, media.InvalidImageMessage},
		{"malformed data url", ImageRequest{Prompt: "p", Image: "data:image/png;AAAA"}, media.InvalidImageMessage},
		{"malformed payload", ImageRequest{Prompt: "p", Image: "@@@not-base64", MIMEType: "image/png"}, media.InvalidImageMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &llmtest.FakeClient{}
			srv := newTestServer(t, fake)

			resp, out := post(t, srv, "/api/v1/image", tt.req)

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, tt.want, out["error"])
			assert.Empty(t, fake.ContentCalls())
			assert.Empty(t, fake.ImagesCalls())
		})
	}
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusOK, statusCode(llm.ResultSuccess))
	assert.Equal(t, http.StatusUnprocessableEntity, statusCode(llm.ResultPolicyRejected))
	assert.Equal(t, http.StatusBadGateway, statusCode(llm.ResultFailure))
}
