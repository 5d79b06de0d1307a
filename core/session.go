package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/lborres/portal/pkg/crypto"
)

type SessionConfig struct {
	// MaxAge is fixed at creation; sessions do not slide.
	MaxAge time.Duration
}

func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		MaxAge: 7 * 24 * time.Hour,
	}
}

// SessionManager issues, validates, and revokes opaque session tokens.
type SessionManager struct {
	config  SessionConfig
	storage SessionStorage
	clock   clockwork.Clock
}

type CreateSessionResult struct {
	Session *Session `json:"session"`
	Token   string   `json:"token"`
}

func NewSessionManager(config SessionConfig, storage SessionStorage, clock clockwork.Clock) *SessionManager {
	if config.MaxAge == 0 {
		config = DefaultSessionConfig()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &SessionManager{
		config:  config,
		storage: storage,
		clock:   clock,
	}
}

// Create issues a new session for userID. Persistence errors propagate
// unmodified; session creation is never retried since a blind retry could
// mask a token collision.
func (sm *SessionManager) Create(ctx context.Context, userID string) (*CreateSessionResult, error) {
	token, err := crypto.GenerateToken(crypto.DefaultTokenLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	now := sm.clock.Now()
	session := &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Token:     token,
		ExpiresAt: now.Add(sm.config.MaxAge),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := sm.storage.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &CreateSessionResult{
		Session: session,
		Token:   token,
	}, nil
}

// Validate looks up the session by exact token match together with its
// owning user. It reports ErrInvalidSession both for unknown tokens and for
// rows whose expiry has passed; expired rows are left in place (lazy
// invalidation only).
func (sm *SessionManager) Validate(ctx context.Context, token string) (*SessionData, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}

	data, err := sm.storage.GetSessionByToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if !data.Session.ExpiresAt.After(sm.clock.Now()) {
		return nil, ErrInvalidSession
	}

	return data, nil
}

// Destroy removes the session row by token. A missing row is treated as
// success so logout stays idempotent.
func (sm *SessionManager) Destroy(ctx context.Context, token string) error {
	err := sm.storage.DeleteSessionByToken(ctx, token)
	if err != nil && !errors.Is(err, ErrSessionNotFound) {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
