package providers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/openai/openai-go/v3/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumx/quantumx/pkg/config"
)

func newOpenAITestServer(t *testing.T, captured *map[string]interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if captured != nil {
			_ = json.Unmarshal(body, captured)
		}
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/chat/completions"):
			_, _ = io.WriteString(w, `{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4o-mini",
				"choices":[{"index":0,"finish_reason":"stop","logprobs":null,
				"message":{"role":"assistant","content":"Olá do modelo","refusal":null}}]}`)
		case strings.HasSuffix(r.URL.Path, "/images/generations"):
			b64 := base64.StdEncoding.EncodeToString(pngHeader)
			_, _ = io.WriteString(w, `{"created":1,"data":[{"b64_json":"`+b64+`"}]}`)
		default:
			http.NotFound(w, r)
		}
	}))
}

func testOpenAIConfig(base string) config.OpenAIConfig {
	return config.OpenAIConfig{
		APIKey:     "sk-test",
		APIBase:    base + "/v1",
		Model:      "gpt-4o-mini",
		ImageModel: "gpt-image-1",
		ImageSize:  "1024x1024",
	}
}

func TestOpenAIProviderChat(t *testing.T) {
	var captured map[string]interface{}
	srv := newOpenAITestServer(t, &captured)
	defer srv.Close()

	p := NewOpenAIProvider(testOpenAIConfig(srv.URL), option.WithMaxRetries(0))
	resp, err := p.Chat(context.Background(), []Message{
		{Role: "system", Content: "sys"},
		{Role: "user", Content: "oi"},
	}, "", map[string]interface{}{"temperature": 0.4})
	require.NoError(t, err)

	assert.Equal(t, "Olá do modelo", resp.Content)
	assert.Equal(t, "openai", resp.Provider)
	assert.Equal(t, "gpt-4o-mini", captured["model"])
	assert.InDelta(t, 0.4, captured["temperature"], 1e-9)
	assert.Len(t, captured["messages"], 2)
}

func TestOpenAIProviderChatError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"message":"bad key","type":"invalid_request_error"}}`)
	}))
	defer srv.Close()

	p := NewOpenAIProvider(testOpenAIConfig(srv.URL), option.WithMaxRetries(0))
	_, err := p.Chat(context.Background(), []Message{{Role: "user", Content: "oi"}}, "", nil)
	assert.Error(t, err)
}

func TestOpenAIProviderGenerateImage(t *testing.T) {
	var captured map[string]interface{}
	srv := newOpenAITestServer(t, &captured)
	defer srv.Close()

	p := NewOpenAIProvider(testOpenAIConfig(srv.URL), option.WithMaxRetries(0))
	img, err := p.GenerateImage(context.Background(), "um gato")
	require.NoError(t, err)

	assert.Equal(t, "image/png", img.MIME)
	assert.Equal(t, "um gato", captured["prompt"])
	assert.Equal(t, "gpt-image-1", captured["model"])
}
