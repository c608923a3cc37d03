package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/quantumx/quantumx/pkg/config"
	"github.com/quantumx/quantumx/pkg/engine"
	"github.com/quantumx/quantumx/pkg/logger"
)

// Factory builds the engine for a new session.
type Factory func() *engine.Engine

type entry struct {
	engine   *engine.Engine
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ErrSessionLimit is returned when a new session cannot be opened now.
var ErrSessionLimit = errors.New("session limit reached")

type Options struct {
	IdleTTL           time.Duration
	RequestsPerMinute float64
	Burst             int
	// NewPerMinute and NewBurst throttle session creation store-wide.
	NewPerMinute float64
	NewBurst     int
	MaxSessions  int
}

func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		IdleTTL:           time.Duration(cfg.Sessions.IdleTTL) * time.Minute,
		RequestsPerMinute: cfg.Sessions.RequestsPerMinute,
		Burst:             cfg.Sessions.Burst,
		NewPerMinute:      cfg.Sessions.NewPerMinute,
		NewBurst:          cfg.Sessions.NewBurst,
		MaxSessions:       cfg.Sessions.MaxSessions,
	}
}

// Store maps session IDs to their engines.
type Store struct {
	newEngine Factory
	opts      Options
	now       func() time.Time
	creations *rate.Limiter

	mu        sync.Mutex
	sessions  map[string]*entry
	lastEvict time.Time
}

func NewStore(factory Factory, opts Options) *Store {
	return &Store{
		newEngine: factory,
		opts:      opts,
		now:       time.Now,
		creations: newLimiter(opts.NewPerMinute, opts.NewBurst),
		sessions:  make(map[string]*entry),
	}
}

// Get returns the engine for id. A canonical UUID that is not known yet is
// adopted so a browser keeps its cookie across restarts; anything else gets
// a fresh ID, and created tells the caller to hand it to the client. Both
// paths open a session and fail with ErrSessionLimit when creation is
// throttled or the store is full.
func (s *Store) Get(id string) (sessionID string, eng *engine.Engine, created bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !validID(id) {
		id = uuid.NewString()
		created = true
	}

	e, ok := s.sessions[id]
	if !ok {
		if err := s.admitLocked(); err != nil {
			return "", nil, false, err
		}
		e = &entry{engine: s.newEngine(), limiter: newLimiter(s.opts.RequestsPerMinute, s.opts.Burst)}
		s.sessions[id] = e
	}
	e.lastSeen = s.now()
	return id, e.engine, created, nil
}

func validID(id string) bool {
	parsed, err := uuid.Parse(id)
	return err == nil && parsed.String() == id
}

func (s *Store) admitLocked() error {
	if s.opts.MaxSessions > 0 && len(s.sessions) >= s.opts.MaxSessions {
		s.evictLocked()
		if len(s.sessions) >= s.opts.MaxSessions {
			return ErrSessionLimit
		}
	}
	if s.creations != nil && !s.creations.AllowN(s.now(), 1) {
		return ErrSessionLimit
	}
	return nil
}

// Allow reports whether the session may send another message now.
func (s *Store) Allow(id string) bool {
	s.mu.Lock()
	e, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok || e.limiter == nil {
		return true
	}
	return e.limiter.AllowN(s.now(), 1)
}

// newLimiter returns nil when perMinute is not positive.
func newLimiter(perMinute float64, burst int) *rate.Limiter {
	if perMinute <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perMinute/60), burst)
}

// Count returns the number of live sessions.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Evict drops sessions idle longer than the TTL and returns how many.
func (s *Store) Evict() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evictLocked()
}

// EvictIfDue runs Evict at most once per interval. It serves callers
// without a background janitor, such as a Lambda invocation.
func (s *Store) EvictIfDue(interval time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if now := s.now(); now.Sub(s.lastEvict) >= interval {
		s.lastEvict = now
		return s.evictLocked()
	}
	return 0
}

func (s *Store) evictLocked() int {
	if s.opts.IdleTTL <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.opts.IdleTTL)
	n := 0
	for id, e := range s.sessions {
		if e.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

// Run evicts idle sessions every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) error {
	if s.opts.IdleTTL <= 0 {
		<-ctx.Done()
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := s.Evict(); n > 0 {
				logger.InfoCF("session", "Evicted idle sessions", map[string]interface{}{
					"evicted": n,
					"active":  s.Count(),
				})
			}
		}
	}
}
