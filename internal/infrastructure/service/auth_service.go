// Package service contains infrastructure services that sit between the
// application layer and external mechanisms.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/grade-portal/grade-portal/internal/domain/shared"
	"github.com/grade-portal/grade-portal/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// AUTH SERVICE
// Credential verification against stored bcrypt hashes plus in-memory
// session tokens. A stored role outside the known set fails login rather
// than granting an undefined role.
// ══════════════════════════════════════════════════════════════════════════════

// DefaultSessionTTL is the session lifetime when none is configured.
const DefaultSessionTTL = 12 * time.Hour

// ErrSessionNotFound is returned for unknown or expired session tokens.
var ErrSessionNotFound = errors.New("auth: session not found")

// Session is an authenticated session.
type Session struct {
	// Token is the opaque session token handed to the client.
	Token string

	// Identity is who the session belongs to.
	Identity user.Identity

	// ExpiresAt is when the session stops being valid.
	ExpiresAt time.Time
}

// AuthService verifies credentials and tracks sessions.
type AuthService struct {
	users      user.Repository
	sessionTTL time.Duration

	mu       sync.RWMutex
	sessions map[string]Session
}

// NewAuthService creates a new AuthService. A non-positive ttl falls back
// to DefaultSessionTTL.
func NewAuthService(users user.Repository, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &AuthService{
		users:      users,
		sessionTTL: ttl,
		sessions:   make(map[string]Session),
	}
}

// Login verifies the credentials and opens a session. Unknown usernames and
// wrong passwords both come back as ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (*Session, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}

	session := Session{
		Token:     uuid.NewString(),
		Identity:  user.Identity{Username: u.Username, Role: u.Role},
		ExpiresAt: time.Now().Add(s.sessionTTL),
	}

	s.mu.Lock()
	s.sessions[session.Token] = session
	s.mu.Unlock()

	return &session, nil
}

// Authenticate resolves a session token to an identity. Expired sessions
// are evicted on lookup.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*user.Identity, error) {
	s.mu.RLock()
	session, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrSessionNotFound
	}

	if time.Now().After(session.ExpiresAt) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		return nil, ErrSessionNotFound
	}

	identity := session.Identity
	return &identity, nil
}

// Logout closes a session. Closing an unknown session is a no-op.
func (s *AuthService) Logout(ctx context.Context, token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// CreateUser hashes the password and stores a new user.
func (s *AuthService) CreateUser(ctx context.Context, username, password string, role user.Role) (*user.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u, err := user.NewUser(user.NewUserParams{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
	})
	if err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}
