// Package media converts user-selected files into the payloads the AI gateway
// sends and the previews the terminal pages display.
package media

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	// ErrDecode is returned when a string is not a base64 data URL.
	ErrDecode = errors.New("media: not a base64 data URL")

	// ErrNotImage is returned when an image was expected but the file is not one.
	ErrNotImage = errors.New("media: not an image file")
)

// ValidationError is a client-side input problem shown to the user as is.
type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return e.Err }

// DataURL embeds data as data:<mime>;base64,<payload>.
func DataURL(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// SplitDataURL returns the MIME type and the base64 payload of a data URL.
// The payload is everything after the first comma.
func SplitDataURL(url string) (mimeType, payload string, err error) {
	rest, ok := strings.CutPrefix(url, "data:")
	if !ok {
		return "", "", ErrDecode
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", "", ErrDecode
	}
	mimeType, ok = strings.CutSuffix(header, ";base64")
	if !ok {
		return "", "", ErrDecode
	}
	return mimeType, payload, nil
}

// DecodeDataURL returns the MIME type and raw bytes of a data URL.
func DecodeDataURL(url string) (string, []byte, error) {
	mimeType, payload, err := SplitDataURL(url)
	if err != nil {
		return "", nil, err
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return mimeType, data, nil
}

// EncodeBase64Payload reads r fully and returns its base64 payload, without
// the data URL prefix. The same content always yields the same payload.
func EncodeBase64Payload(r io.Reader, mimeType string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read content: %w", err)
	}
	_, payload, err := SplitDataURL(DataURL(mimeType, data))
	if err != nil {
		return "", err
	}
	return payload, nil
}
