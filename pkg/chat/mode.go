package chat

import "strings"

// Mode selects how a prompt is answered.
type Mode string

const (
	ModeText  Mode = "text"
	ModeImage Mode = "image"
)

// ParseMode maps a raw form value to a known mode. Anything unknown is text.
func ParseMode(raw string) Mode {
	if Mode(strings.ToLower(strings.TrimSpace(raw))) == ModeImage {
		return ModeImage
	}
	return ModeText
}

var imageKeywords = []string{"desenhe", "imagem"}

// DetectMode picks image mode when the prompt asks for a drawing.
func DetectMode(prompt string) Mode {
	lowered := strings.ToLower(prompt)
	for _, kw := range imageKeywords {
		if strings.Contains(lowered, kw) {
			return ModeImage
		}
	}
	return ModeText
}
