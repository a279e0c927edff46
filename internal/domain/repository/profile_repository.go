package repository

import (
	"context"

	"github.com/oksasatya/devconnector-api/internal/domain/entity"
)

// ProfileRepository defines the store operations for the Profile aggregate.
// Profiles are keyed by their owning user.
type ProfileRepository interface {
	// Create inserts p with version 1. If the owner already has a profile it
	// returns ErrDuplicate and leaves the stored profile untouched.
	Create(ctx context.Context, p *entity.Profile) error
	GetByUserID(ctx context.Context, userID string) (*entity.Profile, error)
	List(ctx context.Context) ([]*entity.Profile, error)
	// Update saves p only if the stored version still equals p.Version, then
	// bumps p.Version. Otherwise it returns ErrVersionConflict; a profile that
	// was deleted in between reports the same, and the next read sees ErrNotFound.
	Update(ctx context.Context, p *entity.Profile) error
	DeleteByUserID(ctx context.Context, userID string) (int64, error)
}
