package postgres

import (
	"context"

	"github.com/grade-portal/grade-portal/internal/domain/shared"
	"github.com/grade-portal/grade-portal/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// USER REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// UserRepository implements user.Repository for PostgreSQL.
type UserRepository struct {
	conn *Connection
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(conn *Connection) *UserRepository {
	return &UserRepository{conn: conn}
}

// Create persists a new user and assigns its ID.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (username, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := r.conn.QueryRow(ctx, query,
		u.Username,
		u.PasswordHash,
		string(u.Role),
		u.CreatedAt,
	).Scan(&u.ID)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrUsernameTaken
		}
		return shared.WrapError("user", "Create", shared.ErrStore, "failed to create user", err)
	}

	return nil
}

// GetByUsername returns a user by username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	query := `
		SELECT id, username, password_hash, role, created_at
		FROM users
		WHERE username = $1
	`

	var u user.User
	var role string

	err := r.conn.QueryRow(ctx, query, username).Scan(
		&u.ID,
		&u.Username,
		&u.PasswordHash,
		&role,
		&u.CreatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrUserNotFound
		}
		return nil, shared.WrapError("user", "GetByUsername", shared.ErrStore, "failed to scan user", err)
	}

	parsed, err := user.ParseRole(role)
	if err != nil {
		return nil, err
	}
	u.Role = parsed

	return &u, nil
}
