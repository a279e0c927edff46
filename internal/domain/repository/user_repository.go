package repository

import (
	"context"

	"github.com/oksasatya/devconnector-api/internal/domain/entity"
)

// UserRepository defines the store operations for the User aggregate.
type UserRepository interface {
	// Create inserts u and fills its ID and CreatedAt. A taken email yields ErrDuplicate.
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// GetByIDs returns the users that exist among ids, in no particular order.
	GetByIDs(ctx context.Context, ids []string) ([]*entity.User, error)
	// Delete removes the user and reports how many rows were removed.
	Delete(ctx context.Context, id string) (int64, error)
}
