package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumx/quantumx/pkg/channels"
	"github.com/quantumx/quantumx/pkg/chat"
	"github.com/quantumx/quantumx/pkg/config"
	"github.com/quantumx/quantumx/pkg/engine"
	"github.com/quantumx/quantumx/pkg/providers"
	"github.com/quantumx/quantumx/pkg/session"
)

func setup(t *testing.T) {
	t.Helper()
	t.Setenv("QUANTUMX_CONFIG_JSON", `{"log":{"level":"error"}}`)
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	require.NoError(t, initialize())
}

func TestHandlerChatSetsSessionCookie(t *testing.T) {
	setup(t)

	body := base64.StdEncoding.EncodeToString([]byte("message=calcule+2%2B2&mode=text"))
	resp, err := handler(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:      http.MethodPost,
		Path:            "/chat",
		Headers:         map[string]string{"Content-Type": "application/x-www-form-urlencoded"},
		Body:            body,
		IsBase64Encoded: true,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out chat.Response
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &out))
	assert.Equal(t, "Resultado de `2+2`: **4**", out.Response)

	cookies := resp.MultiValueHeaders["Set-Cookie"]
	require.Len(t, cookies, 1)
	assert.True(t, strings.HasPrefix(cookies[0], "qx_session="))
}

func TestHandlerHealth(t *testing.T) {
	setup(t)

	resp, err := handler(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodGet,
		Path:       "/health",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Body, `"runtime":"go"`)
}

func TestHandlerBadBase64(t *testing.T) {
	setup(t)

	resp, err := handler(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:      http.MethodPost,
		Path:            "/chat",
		Body:            "%%%",
		IsBase64Encoded: true,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestToHTTPRequestMergesQueryAndHeaders(t *testing.T) {
	req, err := toHTTPRequest(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:                      http.MethodGet,
		Path:                            "/",
		QueryStringParameters:           map[string]string{"a": "1"},
		MultiValueQueryStringParameters: map[string][]string{"b": {"2", "3"}},
		MultiValueHeaders:               map[string][]string{"Cookie": {"qx_session=abc"}},
		Headers:                         map[string]string{"X-Test": "yes"},
	})
	require.NoError(t, err)

	assert.Equal(t, "1", req.URL.Query().Get("a"))
	assert.Equal(t, []string{"2", "3"}, req.URL.Query()["b"])
	c, err := req.Cookie("qx_session")
	require.NoError(t, err)
	assert.Equal(t, "abc", c.Value)
	assert.Equal(t, "yes", req.Header.Get("X-Test"))
}

func TestServeEvictsIdleSessionsBetweenInvocations(t *testing.T) {
	cfg := config.DefaultConfig()
	store := session.NewStore(func() *engine.Engine {
		return engine.New(providers.NewLocalProvider(), nil, engine.OptionsFromConfig(cfg))
	}, session.Options{IdleTTL: time.Nanosecond})
	s := &server{handler: channels.NewWebChatChannel(cfg, store).Handler(), sessions: store}

	prev := evictInterval
	evictInterval = 0
	defer func() { evictInterval = prev }()

	resp := s.serve(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Path:       "/chat",
		Headers:    map[string]string{"Content-Type": "application/x-www-form-urlencoded"},
		Body:       "message=oi",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 1, store.Count())

	time.Sleep(time.Millisecond)
	resp = s.serve(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodGet,
		Path:       "/health",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Body, `"active_sessions":0`)
}
