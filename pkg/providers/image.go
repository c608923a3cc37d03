package providers

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/h2non/filetype"
)

var (
	ErrEmptyImage = errors.New("image payload is empty")
	ErrNotImage   = errors.New("payload is not an image")
)

// DecodeImage validates a base64 image payload and sniffs its MIME type.
func DecodeImage(b64 string) (*ImageResponse, error) {
	b64 = strings.TrimSpace(b64)
	if b64 == "" {
		return nil, ErrEmptyImage
	}

	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	if !filetype.IsImage(raw) {
		return nil, ErrNotImage
	}

	kind, err := filetype.Match(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	return &ImageResponse{Base64: b64, MIME: kind.MIME.Value}, nil
}
