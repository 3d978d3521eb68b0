package sessions

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mcoot/matchqueue/internal/dependencies/clock"
	"github.com/mcoot/matchqueue/internal/dependencies/random"
	"github.com/mcoot/matchqueue/internal/model"
)

const (
	// TokenPrefix marks every session token
	TokenPrefix = "sess_"
	// tokenBytes gives 128 bits of entropy per token
	tokenBytes = 16
)

// Config holds configuration for the session table
type Config struct {
	SessionDuration  time.Duration
	MaxTokenAttempts int
}

// DefaultConfig returns default session configuration
func DefaultConfig() Config {
	return Config{
		SessionDuration:  24 * time.Hour,
		MaxTokenAttempts: 5,
	}
}

// Table maps opaque session tokens to authenticated usernames.
// A username may hold any number of concurrent sessions.
type Table struct {
	clock  clock.Clock
	random random.Random
	logger *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*model.Session
	byUser   map[model.Username]map[string]struct{}

	sessionDuration  time.Duration
	maxTokenAttempts int
}

// New creates a new session Table
func New(clock clock.Clock, random random.Random, cfg Config, logger *slog.Logger) *Table {
	defaults := DefaultConfig()
	if cfg.SessionDuration <= 0 {
		cfg.SessionDuration = defaults.SessionDuration
	}
	if cfg.MaxTokenAttempts <= 0 {
		cfg.MaxTokenAttempts = defaults.MaxTokenAttempts
	}
	return &Table{
		clock:            clock,
		random:           random,
		logger:           logger,
		sessions:         make(map[string]*model.Session),
		byUser:           make(map[model.Username]map[string]struct{}),
		sessionDuration:  cfg.SessionDuration,
		maxTokenAttempts: cfg.MaxTokenAttempts,
	}
}

// CreateSession issues a fresh token for username.
// It fails with model.ErrTokenGeneration if no unused token could be drawn.
func (t *Table) CreateSession(username model.Username) (model.Session, error) {
	now := t.clock.Now()

	t.mu.Lock()
	defer t.mu.Unlock()

	for attempt := 0; attempt < t.maxTokenAttempts; attempt++ {
		token := TokenPrefix + t.random.Token(tokenBytes)
		if existing, ok := t.sessions[token]; ok && !existing.Expired(now) {
			t.logger.Warn("session token collision", slog.Int("attempt", attempt+1))
			continue
		}
		// An expired holder of the same token is replaced outright
		t.removeLocked(token)

		session := &model.Session{
			Token:     token,
			Username:  username,
			CreatedAt: now,
			ExpiresAt: now.Add(t.sessionDuration),
		}
		t.sessions[token] = session
		tokens, ok := t.byUser[username]
		if !ok {
			tokens = make(map[string]struct{})
			t.byUser[username] = tokens
		}
		tokens[token] = struct{}{}

		return *session, nil
	}

	return model.Session{}, model.ErrTokenGeneration
}

// ResolveSession returns the username owning token.
// Malformed, unknown and expired tokens all resolve to nothing.
func (t *Table) ResolveSession(token string) (model.Username, bool) {
	if !WellFormed(token) {
		return "", false
	}

	t.mu.RLock()
	session, ok := t.sessions[token]
	t.mu.RUnlock()

	if !ok {
		return "", false
	}

	if session.Expired(t.clock.Now()) {
		t.mu.Lock()
		// Re-check under the write lock; the token may have been reissued meanwhile
		if current, ok := t.sessions[token]; ok && current.Expired(t.clock.Now()) {
			t.removeLocked(token)
		}
		t.mu.Unlock()
		return "", false
	}

	return session.Username, true
}

// DestroySession removes a session. It returns false if the token was not live.
func (t *Table) DestroySession(token string) bool {
	if !WellFormed(token) {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	session, ok := t.sessions[token]
	if !ok {
		return false
	}
	t.removeLocked(token)
	return !session.Expired(t.clock.Now())
}

// HasLiveSession reports whether username holds at least one unexpired session
func (t *Table) HasLiveSession(username model.Username) bool {
	now := t.clock.Now()

	t.mu.RLock()
	defer t.mu.RUnlock()

	for token := range t.byUser[username] {
		if session, ok := t.sessions[token]; ok && !session.Expired(now) {
			return true
		}
	}
	return false
}

// CleanExpiredSessions removes expired sessions and returns how many were removed
func (t *Table) CleanExpiredSessions() int {
	now := t.clock.Now()

	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	for token, session := range t.sessions {
		if session.Expired(now) {
			t.removeLocked(token)
			removed++
		}
	}
	return removed
}

// ActiveCount returns the number of stored sessions, including any expired
// ones not yet swept
func (t *Table) ActiveCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.sessions)
}

// removeLocked deletes token from both indexes. t.mu must be held for writing.
func (t *Table) removeLocked(token string) {
	session, ok := t.sessions[token]
	if !ok {
		return
	}
	delete(t.sessions, token)
	if tokens, ok := t.byUser[session.Username]; ok {
		delete(tokens, token)
		if len(tokens) == 0 {
			delete(t.byUser, session.Username)
		}
	}
}

// WellFormed reports whether token has the shape of an issued session token
func WellFormed(token string) bool {
	body, ok := strings.CutPrefix(token, TokenPrefix)
	if !ok || len(body) != random.TokenLength(tokenBytes) {
		return false
	}
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}
