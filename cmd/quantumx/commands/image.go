package commands

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/h2non/filetype"

	"github.com/quantumx/quantumx/pkg/providers"
)

// saveImage writes a generated image into dir, named by time and sniffed
// extension.
func saveImage(dir, b64 string) (string, error) {
	if _, err := providers.DecodeImage(b64); err != nil {
		return "", err
	}
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return "", err
	}
	ext := "png"
	if kind, err := filetype.Match(raw); err == nil && kind != filetype.Unknown {
		ext = kind.Extension
	}
	path := filepath.Join(dir, fmt.Sprintf("quantumx-%s.%s", time.Now().Format("20060102-150405.000"), ext))
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", fmt.Errorf("saving image: %w", err)
	}
	return path, nil
}
