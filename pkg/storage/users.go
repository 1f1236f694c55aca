package storage

import (
	"context"

	"github.com/chris/store-payments/pkg/models"
)

// UserStore defines the interface for managing user accounts.
type UserStore interface {
	// CreateUser creates the user together with an empty wallet.
	// It returns ErrAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)

	// GetUser retrieves a user by ID.
	GetUser(ctx context.Context, userID string) (*models.User, error)

	// GetUserByEmail retrieves a user by email address.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}
