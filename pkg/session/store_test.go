package session

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumx/quantumx/pkg/engine"
	"github.com/quantumx/quantumx/pkg/providers"
)

func newTestStore(opts Options) (*Store, *time.Time) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewStore(func() *engine.Engine {
		return engine.New(providers.NewLocalProvider(), nil, engine.Options{})
	}, opts)
	s.now = func() time.Time { return now }
	return s, &now
}

func TestStoreCreatesAndReusesSessions(t *testing.T) {
	s, _ := newTestStore(Options{})

	id, eng, created, err := s.Get("")
	require.NoError(t, err)
	require.True(t, created)
	require.NotEmpty(t, id)

	again, eng2, created2, err := s.Get(id)
	require.NoError(t, err)
	assert.False(t, created2)
	assert.Equal(t, id, again)
	assert.Same(t, eng, eng2)
	assert.Equal(t, 1, s.Count())
}

func TestStoreAdoptsUnknownUUID(t *testing.T) {
	s, _ := newTestStore(Options{})
	old := uuid.NewString()

	id, _, created, err := s.Get(old)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, old, id)
	assert.Equal(t, 1, s.Count())
}

func TestStoreReplacesMalformedID(t *testing.T) {
	s, _ := newTestStore(Options{})

	for _, bad := range []string{
		"from-old-cookie",
		strings.Repeat("x", 2048),
		"{" + uuid.NewString() + "}",
		strings.ToUpper(uuid.NewString()),
	} {
		id, _, created, err := s.Get(bad)
		require.NoError(t, err)
		assert.True(t, created)
		assert.NotEqual(t, bad, id)
		_, err = uuid.Parse(id)
		assert.NoError(t, err)
	}
	assert.Equal(t, 4, s.Count())
}

func TestStoreThrottlesCreation(t *testing.T) {
	s, now := newTestStore(Options{NewPerMinute: 60, NewBurst: 2})

	first, _, _, err := s.Get("")
	require.NoError(t, err)
	_, _, _, err = s.Get("")
	require.NoError(t, err)
	_, _, _, err = s.Get("")
	assert.ErrorIs(t, err, ErrSessionLimit)
	_, _, _, err = s.Get(uuid.NewString())
	assert.ErrorIs(t, err, ErrSessionLimit)

	_, _, created, err := s.Get(first)
	require.NoError(t, err, "existing sessions are not throttled")
	assert.False(t, created)

	*now = now.Add(time.Second)
	_, _, _, err = s.Get("")
	assert.NoError(t, err)
	assert.Equal(t, 3, s.Count())
}

func TestStoreMaxSessionsEvictsIdleFirst(t *testing.T) {
	s, now := newTestStore(Options{MaxSessions: 2, IdleTTL: time.Hour})

	_, _, _, err := s.Get("")
	require.NoError(t, err)
	*now = now.Add(2 * time.Hour)
	_, _, _, err = s.Get("")
	require.NoError(t, err)

	_, _, _, err = s.Get("")
	require.NoError(t, err, "the idle session makes room")
	_, _, _, err = s.Get("")
	assert.ErrorIs(t, err, ErrSessionLimit)
	assert.Equal(t, 2, s.Count())
}

func TestStoreEvictIfDue(t *testing.T) {
	s, now := newTestStore(Options{IdleTTL: time.Minute})
	_, _, _, err := s.Get("")
	require.NoError(t, err)

	*now = now.Add(2 * time.Minute)
	assert.Equal(t, 1, s.EvictIfDue(time.Minute))

	_, _, _, err = s.Get("")
	require.NoError(t, err)
	*now = now.Add(2 * time.Minute)
	s.mu.Lock()
	s.lastEvict = *now
	s.mu.Unlock()
	assert.Zero(t, s.EvictIfDue(time.Minute), "not due yet")
	*now = now.Add(time.Minute)
	assert.Equal(t, 1, s.EvictIfDue(time.Minute))
}

func TestStoreEvictsIdleSessions(t *testing.T) {
	s, now := newTestStore(Options{IdleTTL: time.Hour})

	old, _, _, err := s.Get("")
	require.NoError(t, err)
	*now = now.Add(50 * time.Minute)
	fresh, _, _, err := s.Get("")
	require.NoError(t, err)
	*now = now.Add(20 * time.Minute)

	assert.Equal(t, 1, s.Evict())
	assert.Equal(t, 1, s.Count())

	_, _, created, err := s.Get(fresh)
	require.NoError(t, err)
	assert.False(t, created)
	_, eng, _, err := s.Get(old)
	require.NoError(t, err)
	assert.Empty(t, eng.History())
}

func TestStoreRateLimit(t *testing.T) {
	s, now := newTestStore(Options{RequestsPerMinute: 60, Burst: 2})
	id, _, _, err := s.Get("")
	require.NoError(t, err)

	assert.True(t, s.Allow(id))
	assert.True(t, s.Allow(id))
	assert.False(t, s.Allow(id))

	*now = now.Add(time.Second)
	assert.True(t, s.Allow(id))
	assert.True(t, s.Allow("unknown"))
}

func TestStoreRunStopsWithContext(t *testing.T) {
	s, _ := newTestStore(Options{IdleTTL: time.Minute})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, time.Millisecond) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
}
