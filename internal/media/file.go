package media

import (
	"bytes"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// InvalidImageMessage is shown when the user picks a file that is not an image.
const InvalidImageMessage = "Veuillez sélectionner un fichier image valide."

// File is a file selected by the user, read fully into memory.
type File struct {
	Path     string
	Name     string
	MIMEType string
	Data     []byte
}

// OpenFile reads path and detects its MIME type.
func OpenFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	name := filepath.Base(path)
	return &File{
		Path:     path,
		Name:     name,
		MIMEType: DetectMIMEType(name, data),
		Data:     data,
	}, nil
}

// DetectMIMEType uses the file extension first and falls back to sniffing the
// content. Parameters such as charset are dropped.
func DetectMIMEType(name string, data []byte) string {
	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	if base, _, ok := strings.Cut(mimeType, ";"); ok {
		mimeType = base
	}
	return strings.TrimSpace(mimeType)
}

// IsImage reports whether the file has an image/* MIME type.
func (f *File) IsImage() bool {
	return strings.HasPrefix(f.MIMEType, "image/")
}

// Base64Payload returns the file content as a base64 payload.
func (f *File) Base64Payload() (string, error) {
	return EncodeBase64Payload(bytes.NewReader(f.Data), f.MIMEType)
}

// InputImage is an image supplied by the user for editing.
type InputImage struct {
	Name     string
	MIMEType string
	Payload  string
	Size     int
	Preview  *Preview
}

// LoadImage reads an image file, encodes it and acquires its preview. The
// caller owns the preview and must call Release.
func LoadImage(path string) (*InputImage, error) {
	f, err := OpenFile(path)
	if err != nil {
		return nil, err
	}
	return NewInputImage(f)
}

// NewInputImage validates f as an image and builds its payload and preview.
func NewInputImage(f *File) (*InputImage, error) {
	if !f.IsImage() {
		return nil, &ValidationError{Message: InvalidImageMessage, Err: ErrNotImage}
	}
	payload, err := f.Base64Payload()
	if err != nil {
		return nil, err
	}

	preview, err := NewPreview(f.Data)
	if err != nil {
		// Formats imaging cannot decode (webp) still get a handle.
		log.Debug("image preview unavailable", "file", f.Name, "err", err)
		preview = NewPlaceholderPreview(f.Name)
	}

	return &InputImage{
		Name:     f.Name,
		MIMEType: f.MIMEType,
		Payload:  payload,
		Size:     len(f.Data),
		Preview:  preview,
	}, nil
}

// Release frees the preview handle. Safe on nil and safe to call twice.
func (i *InputImage) Release() {
	if i == nil {
		return
	}
	i.Preview.Release()
}
