package media

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	md "github.com/JohannesKaufmann/html-to-markdown"
)

// InvalidTextMessage is shown when a text file is not valid UTF-8.
const InvalidTextMessage = "Le fichier doit être un texte encodé en UTF-8 (.txt, .md, .html)."

// TextExtensions lists the extensions offered by the summarize file picker.
var TextExtensions = []string{".txt", ".md", ".html", ".htm"}

// ReadText loads a text file for summarization. HTML files are converted to
// Markdown so the provider sees the prose rather than the markup.
func ReadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return DecodeText(filepath.Base(path), data)
}

// DecodeText validates data as UTF-8 and converts HTML by extension.
func DecodeText(name string, data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", &ValidationError{Message: InvalidTextMessage}
	}
	text := strings.TrimPrefix(string(data), "\ufeff")

	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".htm":
		converter := md.NewConverter("", true, nil)
		markdown, err := converter.ConvertString(text)
		if err != nil {
			return "", fmt.Errorf("failed to convert %s to markdown: %w", name, err)
		}
		return markdown, nil
	}
	return text, nil
}
