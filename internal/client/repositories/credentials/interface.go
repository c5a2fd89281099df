package credentials

import (
	"context"

	"github.com/dmitrijs2005/gophvault/internal/client/models"
)

// Repository describes CRUD operations on credential rows.
type Repository interface {
	// Create inserts c and returns the store-assigned id.
	Create(ctx context.Context, c *models.Credential) (int64, error)

	// ListByOwner returns all rows of owner in store order.
	ListByOwner(ctx context.Context, owner string) ([]models.Credential, error)

	// GetByID returns one row of owner, or common.ErrNotFound.
	GetByID(ctx context.Context, id int64, owner string) (*models.Credential, error)

	// Update replaces the site username and ciphertext of one row and returns
	// the updated row, or common.ErrNotFound if nothing matched.
	Update(ctx context.Context, id int64, owner, username, ciphertext string) (*models.Credential, error)

	// Delete removes one row, or returns common.ErrNotFound if nothing matched.
	Delete(ctx context.Context, id int64, owner string) error
}
