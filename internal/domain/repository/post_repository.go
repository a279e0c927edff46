package repository

import (
	"context"

	"github.com/oksasatya/devconnector-api/internal/domain/entity"
)

// PostRepository defines the store operations for the Post aggregate.
type PostRepository interface {
	// Create inserts p with version 1 and fills its ID.
	Create(ctx context.Context, p *entity.Post) error
	GetByID(ctx context.Context, id string) (*entity.Post, error)
	// List returns every post, newest first.
	List(ctx context.Context) ([]*entity.Post, error)
	// ListByUserID returns the posts owned by userID, newest first.
	ListByUserID(ctx context.Context, userID string) ([]*entity.Post, error)
	// Update is a conditional save on p.Version, see ProfileRepository.Update.
	Update(ctx context.Context, p *entity.Post) error
	Delete(ctx context.Context, id string) (int64, error)
	DeleteByUserID(ctx context.Context, userID string) (int64, error)
}
