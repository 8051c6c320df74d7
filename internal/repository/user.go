package repository

import (
	"context"

	"campusride/internal/domain"
)

// UserRepository defines the persistence operations for users.
type UserRepository interface {
	// Ensure persists the user if no row with the same ID exists yet.
	// Safe to call on every authenticated write.
	Ensure(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id string) (*domain.User, error)
}
