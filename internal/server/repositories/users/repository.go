package users

import (
	"context"

	"github.com/dmitrijs2005/accounts/internal/server/models"
)

// Repository is the identity store. Emails are unique; implementations
// report duplicates as common.ErrorAlreadyExists and misses as
// common.ErrorNotFound.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	// GetOrCreate inserts user unless a row with the same email exists, in
	// which case the stored row is returned and created is false. It must be
	// safe against concurrent callers racing on the same email.
	GetOrCreate(ctx context.Context, user *models.User) (u *models.User, created bool, err error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// List returns users ordered by creation time, then id.
	List(ctx context.Context, limit, offset int) ([]*models.User, error)
	Count(ctx context.Context) (int, error)
}
