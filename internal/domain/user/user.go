// Package user contains the credential/role model consumed by the login
// surface. The record core stays role-agnostic; only the interface layer
// looks at roles.
package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/grade-portal/grade-portal/internal/domain/shared"
)

// Role is the closed set of portal roles.
type Role string

const (
	// RoleAdmin manages students, subjects and marks.
	RoleAdmin Role = "admin"

	// RoleStudent views their own reports.
	RoleStudent Role = "student"
)

// IsValid reports whether the role is one of the recognized roles.
// Unrecognized persisted roles are a caller-visible error, not a crash.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleStudent:
		return true
	default:
		return false
	}
}

// String returns the role name.
func (r Role) String() string {
	return string(r)
}

// ParseRole maps a stored role string to a Role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", shared.WrapError("user", "ParseRole", shared.ErrInvalidInput,
			fmt.Sprintf("unknown role %q", s), nil)
	}
	return r, nil
}

// User is one portal account.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// NewUserParams contains the fields needed to create a user.
type NewUserParams struct {
	Username     string
	PasswordHash string
	Role         Role
}

// NewUser creates a user with validated fields.
func NewUser(params NewUserParams) (*User, error) {
	username := strings.TrimSpace(params.Username)
	if username == "" {
		return nil, shared.WrapError("user", "Validate", shared.ErrEmptyValue,
			"username is required", nil)
	}
	if params.PasswordHash == "" {
		return nil, shared.WrapError("user", "Validate", shared.ErrEmptyValue,
			"password hash is required", nil)
	}
	if !params.Role.IsValid() {
		return nil, shared.ErrUnknownRole
	}

	return &User{
		Username:     username,
		PasswordHash: params.PasswordHash,
		Role:         params.Role,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// Identity is the result of a successful credential lookup: who the caller
// is and which role they carry. Nothing else leaves the login surface.
type Identity struct {
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// Repository defines the persistence operations for users.
type Repository interface {
	// Create persists a new user and assigns its ID.
	Create(ctx context.Context, u *User) error

	// GetByUsername returns a user by username.
	// Returns shared.ErrUserNotFound if no such user exists.
	GetByUsername(ctx context.Context, username string) (*User, error)
}
