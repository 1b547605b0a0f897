package session

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Role identifies which entry surface and capabilities a session is granted.
type Role string

const (
	RoleLearner   Role = "LEARNER"
	RoleAuthor    Role = "AUTHOR"
	RoleExecutive Role = "EXECUTIVE"
)

// ParseRole validates a role value received from the remote service.
func ParseRole(value string) (Role, bool) {
	switch Role(value) {
	case RoleLearner, RoleAuthor, RoleExecutive:
		return Role(value), true
	}
	return "", false
}

// Session is the authenticated identity held for the life of the process.
// Only Token is durable; Username and Role must be re-derived from the token
// after a restart and are never persisted.
type Session struct {
	Token    string
	Username string
	Role     Role
}

// TokenStore persists the bearer token across restarts.
type TokenStore interface {
	SaveToken(ctx context.Context, token string, now time.Time) error
	LoadToken(ctx context.Context) (string, error)
	DeleteToken(ctx context.Context) error
}

// Store owns the process-wide session. It is populated by the auth gateway
// on a successful credential exchange and cleared by logout; every
// authenticated remote call reads its token from here.
type Store struct {
	mu      sync.RWMutex
	current *Session
	token   string
	tokens  TokenStore
	clock   func() time.Time
}

// NewStore creates a session store backed by the given token persistence.
func NewStore(tokens TokenStore) *Store {
	return &Store{tokens: tokens, clock: time.Now}
}

// Set installs a fully resolved session and durably persists its token.
// The in-memory state is only replaced after persistence succeeds, so a
// storage failure leaves the store unchanged.
func (s *Store) Set(ctx context.Context, sess Session) error {
	if sess.Token == "" {
		return fmt.Errorf("session token is required")
	}
	if s.tokens != nil {
		if err := s.tokens.SaveToken(ctx, sess.Token, s.clock()); err != nil {
			return fmt.Errorf("persist token: %w", err)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := sess
	s.current = &copied
	s.token = sess.Token
	return nil
}

// Get returns the current fully resolved session. It reports false when no
// identity has been resolved this page lifetime, even if a durable token
// exists.
func (s *Store) Get() (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return Session{}, false
	}
	return *s.current, true
}

// Token returns the bearer token for authenticated calls. A token may be
// present without a resolved identity after Resume.
func (s *Store) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return "", false
	}
	return s.token, true
}

// Resume loads a previously persisted token into memory. It reports false
// when no session was persisted. The caller must re-resolve identity from
// the token before any role-gated action.
func (s *Store) Resume(ctx context.Context) (string, bool, error) {
	if s.tokens == nil {
		return "", false, nil
	}
	token, err := s.tokens.LoadToken(ctx)
	if err != nil {
		return "", false, fmt.Errorf("load token: %w", err)
	}
	if token == "" {
		return "", false, nil
	}
	s.mu.Lock()
	s.token = token
	s.current = nil
	s.mu.Unlock()
	return token, true, nil
}

// Clear removes the session and its durable token. The in-memory state is
// dropped even if durable deletion fails, so a logged-out process never
// keeps issuing authenticated calls.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.current = nil
	s.token = ""
	s.mu.Unlock()
	if s.tokens == nil {
		return nil
	}
	if err := s.tokens.DeleteToken(ctx); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}
