package providers

import (
	"context"

	"github.com/quantumx/quantumx/pkg/chat"
)

type Message = chat.Message

type LLMResponse struct {
	Content      string `json:"content"`
	FinishReason string `json:"finish_reason"`
	Provider     string `json:"provider"`
}

// LLMProvider answers a conversation. Options understood by the built-in
// providers are "temperature" (float64) and "max_tokens" (int).
type LLMProvider interface {
	Chat(ctx context.Context, messages []Message, model string, options map[string]interface{}) (*LLMResponse, error)
	GetDefaultModel() string
}

// ImageResponse carries a generated image as base64 along with the MIME
// type sniffed from its bytes.
type ImageResponse struct {
	Base64 string
	MIME   string
}

type ImageProvider interface {
	GenerateImage(ctx context.Context, prompt string) (*ImageResponse, error)
}

func floatOption(options map[string]interface{}, key string) (float64, bool) {
	switch v := options[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	}
	return 0, false
}

func intOption(options map[string]interface{}, key string) (int, bool) {
	switch v := options[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}
