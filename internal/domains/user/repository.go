package user

import (
	"context"
)

// Repository is the user data access contract.
type Repository interface {
	// Create persists a new user; ErrEmailAlreadyExists on conflict.
	Create(ctx context.Context, u *User) error

	// FindByEmail returns ErrUserNotFound when the email is unknown.
	FindByEmail(ctx context.Context, email string) (*User, error)
}
