package app

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumx/quantumx/pkg/config"
)

func TestNewWebChatWithoutKeysAnswersLocally(t *testing.T) {
	cfg := config.DefaultConfig()
	ch, store, err := NewWebChat(cfg)
	require.NoError(t, err)

	form := url.Values{"message": {"desenhe um gato"}, "mode": {"image"}}
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	ch.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"image_base64":null`)
	assert.Equal(t, 1, store.Count())
}
