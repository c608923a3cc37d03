package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	aoption "github.com/anthropics/anthropic-sdk-go/option"

	"github.com/quantumx/quantumx/pkg/chat"
	"github.com/quantumx/quantumx/pkg/config"
)

const defaultAnthropicMaxTokens = 1024

// AnthropicProvider talks to the Anthropic Messages API.
type AnthropicProvider struct {
	client anthropic.Client
	model  string
}

func NewAnthropicProvider(cfg config.AnthropicConfig, opts ...aoption.RequestOption) *AnthropicProvider {
	reqOpts := []aoption.RequestOption{aoption.WithAPIKey(cfg.APIKey)}
	if cfg.APIBase != "" {
		reqOpts = append(reqOpts, aoption.WithBaseURL(cfg.APIBase))
	}
	reqOpts = append(reqOpts, opts...)

	return &AnthropicProvider{
		client: anthropic.NewClient(reqOpts...),
		model:  cfg.Model,
	}
}

func (p *AnthropicProvider) Chat(ctx context.Context, messages []Message, model string, options map[string]interface{}) (*LLMResponse, error) {
	if model == "" {
		model = p.model
	}

	maxTokens := defaultAnthropicMaxTokens
	if n, ok := intOption(options, "max_tokens"); ok && n > 0 {
		maxTokens = n
	}

	system, turns := splitSystem(messages)
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokens),
		Messages:  turns,
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	if t, ok := floatOption(options, "temperature"); ok {
		params.Temperature = anthropic.Float(t)
	}

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic chat: %w", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return &LLMResponse{
		Content:      b.String(),
		FinishReason: string(msg.StopReason),
		Provider:     "anthropic",
	}, nil
}

func (p *AnthropicProvider) GetDefaultModel() string {
	return p.model
}

// splitSystem separates system prompts from the conversation. The
// conversation must open with a user turn.
func splitSystem(messages []Message) (string, []anthropic.MessageParam) {
	var (
		system []string
		turns  []anthropic.MessageParam
	)
	for _, m := range messages {
		switch m.Role {
		case chat.RoleSystem:
			system = append(system, m.Content)
		case chat.RoleAssistant:
			if len(turns) == 0 {
				continue
			}
			turns = append(turns, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			turns = append(turns, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	return strings.Join(system, "\n\n"), turns
}
