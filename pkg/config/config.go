package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DotEnvFile is the dotenv file consulted for values missing from the
// process environment.
var DotEnvFile = ".env"

type Config struct {
	Server    ServerConfig    `json:"server"`
	Engine    EngineConfig    `json:"engine"`
	Providers ProvidersConfig `json:"providers"`
	Sessions  SessionsConfig  `json:"sessions"`
	Client    ClientConfig    `json:"client"`
	Log       LogConfig       `json:"log"`
	mu        sync.RWMutex
}

type ServerConfig struct {
	Host         string `json:"host" env:"QUANTUMX_SERVER_HOST"`
	Port         int    `json:"port" env:"QUANTUMX_SERVER_PORT"`
	Username     string `json:"username" env:"QUANTUMX_SERVER_USERNAME"`
	Password     string `json:"password" env:"QUANTUMX_SERVER_PASSWORD"`
	MaxBodyBytes int64  `json:"max_body_bytes" env:"QUANTUMX_SERVER_MAX_BODY_BYTES"`
}

type EngineConfig struct {
	Name           string   `json:"name" env:"QUANTUMX_ENGINE_NAME"`
	SystemPrompt   string   `json:"system_prompt" env:"QUANTUMX_ENGINE_SYSTEM_PROMPT"`
	HistoryLimit   int      `json:"history_limit" env:"QUANTUMX_ENGINE_HISTORY_LIMIT"`
	Temperature    float64  `json:"temperature" env:"QUANTUMX_ENGINE_TEMPERATURE"`
	MaxTokens      int      `json:"max_tokens" env:"QUANTUMX_ENGINE_MAX_TOKENS"`
	RequestTimeout int      `json:"request_timeout" env:"QUANTUMX_ENGINE_REQUEST_TIMEOUT"` // seconds
	Providers      []string `json:"providers" env:"QUANTUMX_ENGINE_PROVIDERS"`             // text provider order
}

type ProvidersConfig struct {
	OpenAI    OpenAIConfig    `json:"openai"`
	Anthropic AnthropicConfig `json:"anthropic"`
	Bedrock   BedrockConfig   `json:"bedrock"`
}

type OpenAIConfig struct {
	APIKey     string `json:"api_key" env:"OPENAI_API_KEY"`
	APIBase    string `json:"api_base" env:"OPENAI_BASE_URL"`
	Model      string `json:"model" env:"OPENAI_MODEL"`
	ImageModel string `json:"image_model" env:"OPENAI_IMAGE_MODEL"`
	ImageSize  string `json:"image_size" env:"OPENAI_IMAGE_SIZE"`
}

type AnthropicConfig struct {
	APIKey  string `json:"api_key" env:"ANTHROPIC_API_KEY"`
	APIBase string `json:"api_base" env:"ANTHROPIC_BASE_URL"`
	Model   string `json:"model" env:"ANTHROPIC_MODEL"`
}

// BedrockConfig enables the Bedrock Converse provider when Model is set.
// Credentials come from the default AWS chain (env, shared files, IAM role).
type BedrockConfig struct {
	Region  string `json:"region" env:"AWS_REGION"`
	Model   string `json:"model" env:"QUANTUMX_BEDROCK_MODEL"`
	APIBase string `json:"api_base" env:"QUANTUMX_BEDROCK_BASE_URL"`
}

type SessionsConfig struct {
	CookieName        string  `json:"cookie_name" env:"QUANTUMX_SESSIONS_COOKIE_NAME"`
	IdleTTL           int     `json:"idle_ttl" env:"QUANTUMX_SESSIONS_IDLE_TTL"` // minutes
	RequestsPerMinute float64 `json:"requests_per_minute" env:"QUANTUMX_SESSIONS_REQUESTS_PER_MINUTE"`
	Burst             int     `json:"burst" env:"QUANTUMX_SESSIONS_BURST"`
	NewPerMinute      float64 `json:"new_per_minute" env:"QUANTUMX_SESSIONS_NEW_PER_MINUTE"` // store-wide
	NewBurst          int     `json:"new_burst" env:"QUANTUMX_SESSIONS_NEW_BURST"`
	MaxSessions       int     `json:"max_sessions" env:"QUANTUMX_SESSIONS_MAX_SESSIONS"`
}

type ClientConfig struct {
	ServerURL string `json:"server_url" env:"QUANTUMX_CLIENT_SERVER_URL"`
	Timeout   int    `json:"timeout" env:"QUANTUMX_CLIENT_TIMEOUT"` // seconds
	PrefsPath string `json:"prefs_path" env:"QUANTUMX_CLIENT_PREFS_PATH"`
}

type LogConfig struct {
	Level  string `json:"level" env:"QUANTUMX_LOG_LEVEL"`
	Format string `json:"format" env:"QUANTUMX_LOG_FORMAT"`
}

const DefaultSystemPrompt = "Você é QuantumX, um assistente super inteligente, claro e amigável. " +
	"Responda em português com precisão e objetividade."

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8000,
			MaxBodyBytes: 1 << 20,
		},
		Engine: EngineConfig{
			Name:           "QuantumX",
			SystemPrompt:   DefaultSystemPrompt,
			HistoryLimit:   20,
			Temperature:    0.4,
			MaxTokens:      1024,
			RequestTimeout: 60,
			Providers:      []string{"openai", "anthropic", "bedrock"},
		},
		Providers: ProvidersConfig{
			OpenAI: OpenAIConfig{
				Model:      "gpt-4o-mini",
				ImageModel: "gpt-image-1",
				ImageSize:  "1024x1024",
			},
			Anthropic: AnthropicConfig{
				Model: "claude-3-5-haiku-latest",
			},
		},
		Sessions: SessionsConfig{
			CookieName:        "qx_session",
			IdleTTL:           24 * 60,
			RequestsPerMinute: 30,
			Burst:             5,
			NewPerMinute:      120,
			NewBurst:          20,
			MaxSessions:       10000,
		},
		Client: ClientConfig{
			ServerURL: "http://localhost:8000",
			Timeout:   90,
			PrefsPath: "~/.quantumx/prefs.json",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	// Support full config from env var (for containers / serverless)
	if cfgJSON := os.Getenv("QUANTUMX_CONFIG_JSON"); cfgJSON != "" {
		if err := json.Unmarshal([]byte(cfgJSON), cfg); err != nil {
			return nil, fmt.Errorf("parsing QUANTUMX_CONFIG_JSON: %w", err)
		}
		return cfg, applyEnv(cfg)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := json.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return nil, err
		}
	}

	return cfg, applyEnv(cfg)
}

// applyEnv overlays environment values on cfg. Non-empty process
// variables win over entries from DotEnvFile.
func applyEnv(cfg *Config) error {
	environ, err := mergedEnvironment()
	if err != nil {
		return err
	}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return fmt.Errorf("parsing environment: %w", err)
	}
	return nil
}

func mergedEnvironment() (map[string]string, error) {
	merged := map[string]string{}

	if DotEnvFile != "" {
		values, err := godotenv.Read(DotEnvFile)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading %s: %w", DotEnvFile, err)
		}
		for k, v := range values {
			if v != "" {
				merged[k] = v
			}
		}
	}

	for k, v := range env.ToMap(os.Environ()) {
		if v != "" {
			merged[k] = v
		}
	}
	return merged, nil
}

func SaveConfig(path string, cfg *Config) error {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Addr returns the host:port the server listens on.
func (c *Config) Addr() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) AuthEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Server.Username != "" && c.Server.Password != ""
}

func (c *Config) PrefsPath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return ExpandHome(c.Client.PrefsPath)
}

// TextProviders returns the configured text providers in order, skipping
// those without an API key (or, for bedrock, without a model).
func (c *Config) TextProviders() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var names []string
	for _, name := range c.Engine.Providers {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "openai":
			if c.Providers.OpenAI.APIKey != "" {
				names = append(names, "openai")
			}
		case "anthropic":
			if c.Providers.Anthropic.APIKey != "" {
				names = append(names, "anthropic")
			}
		case "bedrock":
			if c.Providers.Bedrock.Model != "" {
				names = append(names, "bedrock")
			}
		}
	}
	return names
}

func ExpandHome(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		home, _ := os.UserHomeDir()
		if len(path) > 1 && path[1] == '/' {
			return home + path[1:]
		}
		return home
	}
	return path
}
