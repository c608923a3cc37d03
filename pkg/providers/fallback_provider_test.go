package providers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	name   string
	model  string
	err    error
	calls  int
	models []string
}

func (s *stubProvider) Chat(ctx context.Context, messages []Message, model string, options map[string]interface{}) (*LLMResponse, error) {
	s.calls++
	s.models = append(s.models, model)
	if s.err != nil {
		return nil, s.err
	}
	return &LLMResponse{Content: s.name + " reply", Provider: s.name}, nil
}

func (s *stubProvider) GetDefaultModel() string { return s.model }

var userOnly = []Message{{Role: "user", Content: "oi"}}

func TestFallbackProviderPrimarySucceeds(t *testing.T) {
	primary := &stubProvider{name: "primary"}
	backup := &stubProvider{name: "backup"}
	p := NewFallbackProvider(primary, "m1", []FallbackEntry{{Provider: backup}})

	resp, err := p.Chat(context.Background(), userOnly, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "primary", resp.Provider)
	assert.Equal(t, []string{"m1"}, primary.models)
	assert.Zero(t, backup.calls)
	assert.Equal(t, "m1", p.GetDefaultModel())
}

func TestFallbackProviderUsesFallbacksInOrder(t *testing.T) {
	primary := &stubProvider{name: "primary", err: errors.New("boom")}
	second := &stubProvider{name: "second", err: errors.New("down"), model: "m2"}
	third := &stubProvider{name: "third", model: "m3"}
	p := NewFallbackProvider(primary, "m1", []FallbackEntry{
		{Provider: second},
		{Provider: third, Model: "override"},
	})

	resp, err := p.Chat(context.Background(), userOnly, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "third", resp.Provider)
	assert.Equal(t, []string{"m2"}, second.models)
	assert.Equal(t, []string{"override"}, third.models)
}

func TestFallbackProviderAllFail(t *testing.T) {
	last := errors.New("last")
	p := NewFallbackProvider(
		&stubProvider{err: errors.New("first")}, "m",
		[]FallbackEntry{{Provider: &stubProvider{err: last}}},
	)

	_, err := p.Chat(context.Background(), userOnly, "", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, last)
	assert.Contains(t, err.Error(), "all providers failed")
}

func TestFallbackProviderNoFallbacks(t *testing.T) {
	primaryErr := errors.New("only")
	p := NewFallbackProvider(&stubProvider{err: primaryErr}, "m", nil)

	_, err := p.Chat(context.Background(), userOnly, "", nil)
	assert.ErrorIs(t, err, primaryErr)
}

func TestFallbackProviderEndsWithLocal(t *testing.T) {
	p := NewFallbackProvider(&stubProvider{err: errors.New("offline")}, "m",
		[]FallbackEntry{{Provider: NewLocalProvider()}})

	resp, err := p.Chat(context.Background(), []Message{
		{Role: "system", Content: "prompt"},
		{Role: "user", Content: "calcule 2 + 2 * 3"},
	}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "local", resp.Provider)
	assert.Equal(t, "Resultado de `2 + 2 * 3`: **8**", resp.Content)
}
