package providers

import (
	"context"
	"fmt"

	"github.com/quantumx/quantumx/pkg/config"
	"github.com/quantumx/quantumx/pkg/logger"
)

// CreateProvider builds the text provider chain from config: every keyed
// remote provider in configured order, closed by the local rule provider.
func CreateProvider(cfg *config.Config) (LLMProvider, error) {
	var chain []FallbackEntry
	for _, name := range cfg.TextProviders() {
		switch name {
		case "openai":
			chain = append(chain, FallbackEntry{
				Provider: NewOpenAIProvider(cfg.Providers.OpenAI),
				Model:    cfg.Providers.OpenAI.Model,
			})
		case "anthropic":
			chain = append(chain, FallbackEntry{
				Provider: NewAnthropicProvider(cfg.Providers.Anthropic),
				Model:    cfg.Providers.Anthropic.Model,
			})
		case "bedrock":
			bedrock, err := LoadBedrockProvider(context.Background(), cfg.Providers.Bedrock)
			if err != nil {
				return nil, err
			}
			chain = append(chain, FallbackEntry{
				Provider: bedrock,
				Model:    cfg.Providers.Bedrock.Model,
			})
		default:
			return nil, fmt.Errorf("unknown provider %q", name)
		}
	}
	chain = append(chain, FallbackEntry{Provider: NewLocalProvider()})

	names := make([]string, 0, len(chain))
	for _, entry := range chain {
		names = append(names, entry.Provider.GetDefaultModel())
	}
	logger.InfoCF("provider", "Text provider chain ready", map[string]interface{}{"models": names})

	if len(chain) == 1 {
		return chain[0].Provider, nil
	}
	return NewFallbackProvider(chain[0].Provider, chain[0].Model, chain[1:]), nil
}

// CreateImageProvider returns nil when image generation is not configured.
func CreateImageProvider(cfg *config.Config) ImageProvider {
	if cfg.Providers.OpenAI.APIKey == "" {
		return nil
	}
	return NewOpenAIProvider(cfg.Providers.OpenAI)
}
