package providers

import (
	"context"
	"errors"

	"github.com/quantumx/quantumx/pkg/chat"
	"github.com/quantumx/quantumx/pkg/replies"
)

// LocalProvider answers the latest user message with rule-based replies.
// It never calls the network, so it closes every provider chain.
type LocalProvider struct{}

func NewLocalProvider() *LocalProvider { return &LocalProvider{} }

func (p *LocalProvider) Chat(ctx context.Context, messages []Message, model string, options map[string]interface{}) (*LLMResponse, error) {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == chat.RoleUser {
			return &LLMResponse{
				Content:      replies.Generate(messages[i].Content),
				FinishReason: "stop",
				Provider:     "local",
			}, nil
		}
	}
	return nil, errors.New("local provider: no user message")
}

func (p *LocalProvider) GetDefaultModel() string { return "rules" }
