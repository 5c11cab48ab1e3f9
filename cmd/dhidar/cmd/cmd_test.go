package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dhidargpt/dhidar/internal/config"
	"github.com/dhidargpt/dhidar/internal/llm"
	"github.com/dhidargpt/dhidar/internal/llm/llmtest"
	"github.com/dhidargpt/dhidar/internal/media"
	"github.com/dhidargpt/dhidar/internal/page"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

// run executes the root command with args against fake, or against the
// real provider wiring when fake is nil.
func run(t *testing.T, fake *llmtest.FakeClient, stdin string, args ...string) (string, error) {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", home)
	for _, key := range []string{"DHIDAR_API_KEY", "GEMINI_API_KEY", "API_KEY"} {
		t.Setenv(key, "")
	}

	chatModel, summarizeJSON, imagePrompt, imageInput, serveAddr, debug = "", false, "", "", "", false
	client = nil
	if fake != nil {
		client = fake
	}
	t.Cleanup(func() { client = nil })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append(args, "--wd", t.TempDir()))

	err := rootCmd.ExecuteContext(context.Background())
	cleanup()
	return out.String(), err
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func summaryClient(reply string) *llmtest.FakeClient {
	return &llmtest.FakeClient{
		GenerateContentFunc: func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return llmtest.TextResponse(reply), nil
		},
	}
}

func TestMissingAPIKey(t *testing.T) {
	_, err := run(t, nil, "", "chat", "Bonjour")

	assert.ErrorIs(t, err, config.ErrMissingAPIKey)
}

func TestChatCommand(t *testing.T) {
	fake := &llmtest.FakeClient{
		SendMessageFunc: func(ctx context.Context, model string, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
			return llmtest.TextResponse("Salut !"), nil
		},
	}

	out, err := run(t, fake, "", "chat", "--model", "gemini-2.5-pro", "Bonjour", "toi")

	require.NoError(t, err)
	assert.Equal(t, "Salut !\n", out)
	assert.Equal(t, []string{"Bonjour toi"}, fake.SentMessages())
	require.Len(t, fake.ChatCalls(), 1)
	assert.Equal(t, "gemini-2.5-pro", fake.ChatCalls()[0].Model)
}

func TestChatCommandReadsStdin(t *testing.T) {
	fake := &llmtest.FakeClient{
		SendMessageFunc: func(ctx context.Context, model string, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
			return llmtest.TextResponse("ok"), nil
		},
	}

	_, err := run(t, fake, "Question depuis un pipe\n", "chat")

	require.NoError(t, err)
	assert.Equal(t, []string{"Question depuis un pipe\n"}, fake.SentMessages())
	assert.Equal(t, llm.DefaultChatModels[0].ID, fake.ChatCalls()[0].Model)
}

func TestChatCommandEmptyMessage(t *testing.T) {
	fake := &llmtest.FakeClient{}

	_, err := run(t, fake, "", "chat")

	assert.EqualError(t, err, llm.EmptyMessageMessage)
	assert.Empty(t, fake.SentMessages())
}

func TestChatCommandFailure(t *testing.T) {
	fake := &llmtest.FakeClient{
		SendMessageFunc: func(ctx context.Context, model string, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
			return nil, errors.New("boom")
		},
	}

	_, err := run(t, fake, "", "chat", "Bonjour")

	assert.EqualError(t, err, llm.ChatFailureMessage)
}

func TestSummarizeCommandFile(t *testing.T) {
	path := writeFile(t, "article.md", []byte(strings.Repeat("a", 150)))

	out, err := run(t, summaryClient("Résumé test"), "", "summarize", path)

	require.NoError(t, err)
	assert.Contains(t, out, "Résumé test\n")
	assert.Contains(t, out, "Longueur originale : 150 caractères")
	assert.Contains(t, out, "Longueur du résumé : 11 caractères")
	assert.Contains(t, out, "Taux de compression : 7%")
}

func TestSummarizeCommandStdinJSON(t *testing.T) {
	out, err := run(t, summaryClient("Résumé test"), strings.Repeat("é", 150), "summarize", "-", "--json")
	require.NoError(t, err)

	var got page.SummaryResult
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, page.SummaryResult{
		Summary:          "Résumé test",
		OriginalLength:   150,
		SummaryLength:    11,
		CompressionRatio: 7,
	}, got)
}

func TestSummarizeCommandValidation(t *testing.T) {
	fake := summaryClient("unused")

	_, err := run(t, fake, strings.Repeat("a", 20), "summarize")

	assert.EqualError(t, err, page.TooShortMessage)
	assert.Empty(t, fake.ContentCalls())
}

func TestSummarizeCommandRejectsBinaryFile(t *testing.T) {
	path := writeFile(t, "notes.txt", []byte{0xff, 0xfe, 0xfd})

	_, err := run(t, summaryClient("unused"), "", "summarize", path)

	assert.EqualError(t, err, media.InvalidTextMessage)
}

func TestImageCommandGenerate(t *testing.T) {
	fake := &llmtest.FakeClient{
		GenerateImagesFunc: func(ctx context.Context, model, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
			return llmtest.GeneratedImages([]byte("jpeg")), nil
		},
	}

	out, err := run(t, fake, "", "image", "--prompt", "un phare au coucher du soleil")

	require.NoError(t, err)
	assert.Equal(t, media.DataURL("image/jpeg", []byte("jpeg"))+"\n", out)
	assert.Empty(t, fake.ContentCalls())
}

func TestImageCommandEdit(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	path := writeFile(t, "photo.png", buf.Bytes())

	fake := &llmtest.FakeClient{
		GenerateContentFunc: func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return llmtest.ImagePartResponse("image/png", []byte("edited")), nil
		},
	}

	out, err := run(t, fake, "", "image", "--prompt", "en noir et blanc", "--input", path)

	require.NoError(t, err)
	assert.Equal(t, media.DataURL("image/png", []byte("edited"))+"\n", out)
	require.Len(t, fake.ContentCalls(), 1)
	assert.Equal(t, buf.Bytes(), fake.ContentCalls()[0].Contents[0].Parts[0].InlineData.Data)
}

func TestImageCommandPolicyRejected(t *testing.T) {
	fake := &llmtest.FakeClient{
		GenerateContentFunc: func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return llmtest.SafetyResponse(), nil
		},
	}
	path := writeFile(t, "photo.png", []byte("\x89PNG\r\n\x1a\n"))

	_, err := run(t, fake, "", "image", "--prompt", "modifie", "--input", path)

	assert.EqualError(t, err, page.PolicyRejectedMessage)
}

func TestImageCommandRejectsNonImage(t *testing.T) {
	fake := &llmtest.FakeClient{}
	path := writeFile(t, "notes.txt", []byte("pas une image"))

	_, err := run(t, fake, "", "image", "--prompt", "modifie", "--input", path)

	assert.EqualError(t, err, media.InvalidImageMessage)
	assert.ErrorIs(t, err, media.ErrNotImage)
	assert.Empty(t, fake.ContentCalls())
	assert.Empty(t, fake.ImagesCalls())
}

func TestImageCommandEmptyPrompt(t *testing.T) {
	fake := &llmtest.FakeClient{}

	_, err := run(t, fake, "", "image", "--prompt", "   ")

	assert.EqualError(t, err, llm.EmptyPromptMessage)
}
