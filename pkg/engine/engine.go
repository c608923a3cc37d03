package engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/quantumx/quantumx/pkg/chat"
	"github.com/quantumx/quantumx/pkg/config"
	"github.com/quantumx/quantumx/pkg/logger"
	"github.com/quantumx/quantumx/pkg/providers"
	"github.com/quantumx/quantumx/pkg/replies"
)

const (
	emptyReply          = "Desculpe, não consegui responder agora."
	imageNotConfigured  = "Para gerar imagens, configure `OPENAI_API_KEY` no ambiente/.env. Exemplo: cp .env.example .env"
	imageCreated        = "Imagem criada com sucesso!"
	imageEmpty          = "Não consegui gerar imagem agora. Tente novamente."
	imageFailed         = "Falha ao gerar imagem no momento. Tente com outro prompt."
	defaultHistoryLimit = 20
)

// Result is the answer to one prompt.
type Result struct {
	Text        string
	ImageBase64 string
	ImageMIME   string
	Provider    string
}

type Options struct {
	SystemPrompt string
	HistoryLimit int
	Temperature  float64
	MaxTokens    int
	Timeout      time.Duration
}

func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		SystemPrompt: cfg.Engine.SystemPrompt,
		HistoryLimit: cfg.Engine.HistoryLimit,
		Temperature:  cfg.Engine.Temperature,
		MaxTokens:    cfg.Engine.MaxTokens,
		Timeout:      time.Duration(cfg.Engine.RequestTimeout) * time.Second,
	}
}

// Engine holds one conversation. Calls to Ask are serialized so history
// keeps request order.
type Engine struct {
	text  providers.LLMProvider
	image providers.ImageProvider
	opts  Options

	mu      sync.Mutex
	history []chat.Message
}

// New creates an engine. image may be nil when image generation is not
// configured.
func New(text providers.LLMProvider, image providers.ImageProvider, opts Options) *Engine {
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = defaultHistoryLimit
	}
	return &Engine{text: text, image: image, opts: opts}
}

// Ask records message in history, answers it in the given mode and records
// the answer.
func (e *Engine) Ask(ctx context.Context, message string, mode chat.Mode) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.history = append(e.history, chat.Message{Role: chat.RoleUser, Content: message})

	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}

	var result Result
	if mode == chat.ModeImage {
		result = e.generateImage(ctx, message)
	} else {
		result = e.askText(ctx, message)
	}

	e.history = append(e.history, chat.Message{Role: chat.RoleAssistant, Content: result.Text})
	if len(e.history) > e.opts.HistoryLimit {
		e.history = append([]chat.Message(nil), e.history[len(e.history)-e.opts.HistoryLimit:]...)
	}
	return result
}

// History returns a copy of the conversation so far.
func (e *Engine) History() []chat.Message {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]chat.Message(nil), e.history...)
}

func (e *Engine) askText(ctx context.Context, message string) Result {
	messages := make([]chat.Message, 0, len(e.history)+1)
	if e.opts.SystemPrompt != "" {
		messages = append(messages, chat.Message{Role: chat.RoleSystem, Content: e.opts.SystemPrompt})
	}
	messages = append(messages, e.history...)

	options := map[string]interface{}{"temperature": e.opts.Temperature}
	if e.opts.MaxTokens > 0 {
		options["max_tokens"] = e.opts.MaxTokens
	}

	resp, err := e.text.Chat(ctx, messages, "", options)
	if err != nil {
		logger.WarnCF("engine", "Text providers failed, answering locally", map[string]interface{}{"error": err.Error()})
		return Result{Text: replies.Generate(message), Provider: "local"}
	}

	text := resp.Content
	if strings.TrimSpace(text) == "" {
		text = emptyReply
	}
	return Result{Text: text, Provider: resp.Provider}
}

func (e *Engine) generateImage(ctx context.Context, prompt string) Result {
	if e.image == nil {
		return Result{Text: imageNotConfigured}
	}

	img, err := e.image.GenerateImage(ctx, prompt)
	switch {
	case errors.Is(err, providers.ErrEmptyImage), errors.Is(err, providers.ErrNotImage):
		logger.WarnCF("engine", "Image provider returned no usable image", map[string]interface{}{"error": err.Error()})
		return Result{Text: imageEmpty}
	case err != nil:
		logger.ErrorCF("engine", "Image generation failed", map[string]interface{}{"error": err.Error()})
		return Result{Text: imageFailed}
	}

	return Result{Text: imageCreated, ImageBase64: img.Base64, ImageMIME: img.MIME, Provider: "openai"}
}
