package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"github.com/quantumx/quantumx/pkg/chat"
	"github.com/quantumx/quantumx/pkg/config"
)

// BedrockProvider talks to the Bedrock Converse API.
type BedrockProvider struct {
	client *bedrockruntime.Client
	model  string
}

// LoadBedrockProvider resolves credentials and region from the default AWS
// chain, so the Lambda execution role works without extra settings.
func LoadBedrockProvider(ctx context.Context, cfg config.BedrockConfig, optFns ...func(*bedrockruntime.Options)) (*BedrockProvider, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}
	return NewBedrockProvider(awsCfg, cfg, optFns...), nil
}

func NewBedrockProvider(awsCfg aws.Config, cfg config.BedrockConfig, optFns ...func(*bedrockruntime.Options)) *BedrockProvider {
	if cfg.APIBase != "" {
		base := cfg.APIBase
		optFns = append([]func(*bedrockruntime.Options){func(o *bedrockruntime.Options) {
			o.BaseEndpoint = aws.String(base)
		}}, optFns...)
	}
	return &BedrockProvider{
		client: bedrockruntime.NewFromConfig(awsCfg, optFns...),
		model:  cfg.Model,
	}
}

func (p *BedrockProvider) Chat(ctx context.Context, messages []Message, model string, options map[string]interface{}) (*LLMResponse, error) {
	if model == "" {
		model = p.model
	}

	system, turns := bedrockMessages(messages)
	input := &bedrockruntime.ConverseInput{
		ModelId:  aws.String(model),
		Messages: turns,
	}
	if system != "" {
		input.System = []types.SystemContentBlock{&types.SystemContentBlockMemberText{Value: system}}
	}

	inference := &types.InferenceConfiguration{}
	if n, ok := intOption(options, "max_tokens"); ok && n > 0 {
		inference.MaxTokens = aws.Int32(int32(n))
	}
	if t, ok := floatOption(options, "temperature"); ok {
		inference.Temperature = aws.Float32(float32(t))
	}
	input.InferenceConfig = inference

	out, err := p.client.Converse(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("bedrock chat: %w", err)
	}

	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return nil, fmt.Errorf("bedrock chat: response carried no message")
	}
	var b strings.Builder
	for _, block := range msg.Value.Content {
		if text, ok := block.(*types.ContentBlockMemberText); ok {
			b.WriteString(text.Value)
		}
	}
	return &LLMResponse{
		Content:      b.String(),
		FinishReason: string(out.StopReason),
		Provider:     "bedrock",
	}, nil
}

func (p *BedrockProvider) GetDefaultModel() string {
	return p.model
}

// bedrockMessages mirrors splitSystem: Converse also requires the first
// turn to come from the user.
func bedrockMessages(messages []Message) (string, []types.Message) {
	var (
		system []string
		turns  []types.Message
	)
	for _, m := range messages {
		role := types.ConversationRoleUser
		switch m.Role {
		case chat.RoleSystem:
			system = append(system, m.Content)
			continue
		case chat.RoleAssistant:
			if len(turns) == 0 {
				continue
			}
			role = types.ConversationRoleAssistant
		}
		turns = append(turns, types.Message{
			Role:    role,
			Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: m.Content}},
		})
	}
	return strings.Join(system, "\n\n"), turns
}
