package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grade-portal/grade-portal/internal/domain/shared"
	"github.com/grade-portal/grade-portal/internal/domain/user"
)

type fakeUserRepo struct {
	users  map[string]*user.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*user.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, u *user.User) error {
	if _, ok := f.users[u.Username]; ok {
		return shared.ErrUsernameTaken
	}
	f.nextID++
	u.ID = f.nextID
	cp := *u
	f.users[u.Username] = &cp
	return nil
}

func (f *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	u, ok := f.users[username]
	if !ok {
		return nil, shared.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func TestLoginSuccess(t *testing.T) {
	ctx := context.Background()
	auth := NewAuthService(newFakeUserRepo(), time.Hour)

	_, err := auth.CreateUser(ctx, "admin", "s3cret", user.RoleAdmin)
	require.NoError(t, err)

	session, err := auth.Login(ctx, "admin", "s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, "admin", session.Identity.Username)
	assert.Equal(t, user.RoleAdmin, session.Identity.Role)
	assert.True(t, session.ExpiresAt.After(time.Now()))
}

func TestLoginWrongPassword(t *testing.T) {
	ctx := context.Background()
	auth := NewAuthService(newFakeUserRepo(), time.Hour)

	_, err := auth.CreateUser(ctx, "admin", "s3cret", user.RoleAdmin)
	require.NoError(t, err)

	_, err = auth.Login(ctx, "admin", "wrong")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestLoginUnknownUser(t *testing.T) {
	ctx := context.Background()
	auth := NewAuthService(newFakeUserRepo(), time.Hour)

	// Unknown usernames are indistinguishable from wrong passwords.
	_, err := auth.Login(ctx, "ghost", "whatever")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAuthenticateAndLogout(t *testing.T) {
	ctx := context.Background()
	auth := NewAuthService(newFakeUserRepo(), time.Hour)

	_, err := auth.CreateUser(ctx, "alice", "pw", user.RoleStudent)
	require.NoError(t, err)
	session, err := auth.Login(ctx, "alice", "pw")
	require.NoError(t, err)

	identity, err := auth.Authenticate(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", identity.Username)
	assert.Equal(t, user.RoleStudent, identity.Role)

	auth.Logout(ctx, session.Token)
	_, err = auth.Authenticate(ctx, session.Token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestAuthenticateExpiredSession(t *testing.T) {
	ctx := context.Background()
	auth := NewAuthService(newFakeUserRepo(), time.Nanosecond)

	_, err := auth.CreateUser(ctx, "alice", "pw", user.RoleStudent)
	require.NoError(t, err)
	session, err := auth.Login(ctx, "alice", "pw")
	require.NoError(t, err)

	time.Sleep(time.Millisecond)

	_, err = auth.Authenticate(ctx, session.Token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestAuthenticateUnknownToken(t *testing.T) {
	auth := NewAuthService(newFakeUserRepo(), time.Hour)

	_, err := auth.Authenticate(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestCreateUserRejectsUnknownRole(t *testing.T) {
	auth := NewAuthService(newFakeUserRepo(), time.Hour)

	_, err := auth.CreateUser(context.Background(), "bob", "pw", user.Role("superuser"))
	assert.ErrorIs(t, err, shared.ErrUnknownRole)
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	ctx := context.Background()
	auth := NewAuthService(newFakeUserRepo(), time.Hour)

	_, err := auth.CreateUser(ctx, "bob", "pw", user.RoleStudent)
	require.NoError(t, err)

	_, err = auth.CreateUser(ctx, "bob", "pw2", user.RoleStudent)
	assert.ErrorIs(t, err, shared.ErrUsernameTaken)
}
