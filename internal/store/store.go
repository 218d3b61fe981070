// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"errors"

	"github.com/Yogeshknaik/MCP-server/internal/domain"
)

// Sentinel errors returned by Repository implementations.
var (
	// ErrNotFound is returned when no user matches the lookup key.
	ErrNotFound = errors.New("user not found")

	// ErrDuplicateEmail is returned when a create or update would violate the
	// unique email constraint.
	ErrDuplicateEmail = errors.New("email already registered")
)

// Repository defines the interface for persisting user records.
type Repository interface {
	// CreateUser inserts a new user record.
	CreateUser(ctx context.Context, user *domain.User) error

	// GetUser retrieves a user by ID.
	GetUser(ctx context.Context, id string) (*domain.User, error)

	// GetUserByEmail retrieves a user by email address.
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// ListUsers returns all users, or only those in the given city when city
	// is non-empty. The result is ordered by creation time.
	ListUsers(ctx context.Context, city string) ([]*domain.User, error)

	// UpdateUser persists changes to an existing user.
	UpdateUser(ctx context.Context, user *domain.User) error

	// DeleteUser removes a user by ID.
	DeleteUser(ctx context.Context, id string) error

	// DeleteUserByEmail removes a user by email address.
	DeleteUserByEmail(ctx context.Context, email string) error

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
