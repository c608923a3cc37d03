package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/quantumx/quantumx/pkg/chat"
	"github.com/quantumx/quantumx/pkg/config"
)

// OpenAIProvider talks to the OpenAI chat completions and image APIs.
type OpenAIProvider struct {
	client     openai.Client
	model      string
	imageModel string
	imageSize  string
}

func NewOpenAIProvider(cfg config.OpenAIConfig, opts ...option.RequestOption) *OpenAIProvider {
	reqOpts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.APIBase != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.APIBase))
	}
	reqOpts = append(reqOpts, opts...)

	return &OpenAIProvider{
		client:     openai.NewClient(reqOpts...),
		model:      cfg.Model,
		imageModel: cfg.ImageModel,
		imageSize:  cfg.ImageSize,
	}
}

func (p *OpenAIProvider) Chat(ctx context.Context, messages []Message, model string, options map[string]interface{}) (*LLMResponse, error) {
	if model == "" {
		model = p.model
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: toOpenAIMessages(messages),
	}
	if t, ok := floatOption(options, "temperature"); ok {
		params.Temperature = openai.Float(t)
	}
	if n, ok := intOption(options, "max_tokens"); ok && n > 0 {
		params.MaxCompletionTokens = openai.Int(int64(n))
	}

	completion, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai chat: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("openai chat: no choices returned")
	}

	choice := completion.Choices[0]
	return &LLMResponse{
		Content:      choice.Message.Content,
		FinishReason: string(choice.FinishReason),
		Provider:     "openai",
	}, nil
}

func (p *OpenAIProvider) GetDefaultModel() string {
	return p.model
}

func (p *OpenAIProvider) GenerateImage(ctx context.Context, prompt string) (*ImageResponse, error) {
	params := openai.ImageGenerateParams{
		Prompt: prompt,
		Model:  openai.ImageModel(p.imageModel),
	}
	if p.imageSize != "" {
		params.Size = openai.ImageGenerateParamsSize(p.imageSize)
	}
	if strings.HasPrefix(p.imageModel, "dall-e") {
		params.ResponseFormat = openai.ImageGenerateParamsResponseFormatB64JSON
	}

	resp, err := p.client.Images.Generate(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai image: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, ErrEmptyImage
	}
	return DecodeImage(resp.Data[0].B64JSON)
}

func toOpenAIMessages(messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case chat.RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case chat.RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}
