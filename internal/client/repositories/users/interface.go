package users

import (
	"context"

	"github.com/dmitrijs2005/gophvault/internal/client/models"
)

// Repository describes account persistence.
type Repository interface {
	// Create inserts u. Returns common.ErrDuplicateUser if the username is taken.
	Create(ctx context.Context, u *models.User) error

	// GetByUsername returns the full row including the digest, or common.ErrNotFound.
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// Exists reports whether a row with username is present.
	Exists(ctx context.Context, username string) (bool, error)
}
