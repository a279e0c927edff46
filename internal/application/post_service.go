package application

import (
	"context"
	"errors"
	"strings"

	"github.com/oksasatya/devconnector-api/internal/domain/entity"
	"github.com/oksasatya/devconnector-api/internal/domain/policy"
	"github.com/oksasatya/devconnector-api/internal/domain/repository"
	"github.com/oksasatya/devconnector-api/pkg/apperr"
)

const (
	msgPostNotFound  = "Post not found"
	msgNotAuthorized = "User not authorized"
)

// PostService publishes posts and edits their likes and comments.
type PostService struct {
	Common
	Posts repository.PostRepository
	Users repository.UserRepository
}

func NewPostService(c Common, posts repository.PostRepository, users repository.UserRepository) *PostService {
	return &PostService{Common: c, Posts: posts, Users: users}
}

func requireActor(actorID string) error {
	if actorID == "" {
		return apperr.Unauthenticated("No token, authorization denied")
	}
	return nil
}

// author snapshots the acting user's name and avatar.
func (s *PostService) author(ctx context.Context, actorID string) (entity.Authorship, error) {
	var u *entity.User
	err := s.call(ctx, func(ctx context.Context) error {
		var err error
		u, err = s.Users.GetByID(ctx, actorID)
		return err
	})
	if err != nil {
		return entity.Authorship{}, storeFailure(err, "User not found")
	}
	return u.Snapshot(), nil
}

// Create publishes text as a new post by actorID.
func (s *PostService) Create(ctx context.Context, actorID, text string) (*entity.Post, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperr.Validation("invalid request", map[string]string{"text": "is required"})
	}
	author, err := s.author(ctx, actorID)
	if err != nil {
		return nil, err
	}
	p := entity.NewPost(author, text, s.now())
	if err := s.call(ctx, func(ctx context.Context) error { return s.Posts.Create(ctx, p) }); err != nil {
		return nil, storeFailure(err, "User not found")
	}
	return p, nil
}

// List returns all posts, newest first.
func (s *PostService) List(ctx context.Context) ([]*entity.Post, error) {
	var out []*entity.Post
	err := s.call(ctx, func(ctx context.Context) error {
		var err error
		out, err = s.Posts.List(ctx)
		return err
	})
	if err != nil {
		return nil, storeFailure(err, msgPostNotFound)
	}
	return out, nil
}

func (s *PostService) Get(ctx context.Context, postID string) (*entity.Post, error) {
	var p *entity.Post
	err := s.call(ctx, func(ctx context.Context) error {
		var err error
		p, err = s.Posts.GetByID(ctx, postID)
		return err
	})
	if err != nil {
		return nil, storeFailure(err, msgPostNotFound)
	}
	return p, nil
}

// Delete removes a post. Only its owner may do so.
func (s *PostService) Delete(ctx context.Context, actorID, postID string) error {
	if err := requireActor(actorID); err != nil {
		return err
	}
	p, err := s.Get(ctx, postID)
	if err != nil {
		return err
	}
	if err := policy.Authorize(actorID, p.OwnerID()); err != nil {
		return apperr.Wrap(apperr.KindUnauthorized, msgNotAuthorized, err)
	}
	var n int64
	err = s.call(ctx, func(ctx context.Context) error {
		var err error
		n, err = s.Posts.Delete(ctx, p.ID)
		return err
	})
	if err != nil {
		return storeFailure(err, msgPostNotFound)
	}
	if n == 0 {
		return apperr.NotFound(msgPostNotFound)
	}
	return nil
}

// update runs fn as one read-modify-write on a single post.
func (s *PostService) update(ctx context.Context, postID string, fn func(*entity.Post) error) (*entity.Post, error) {
	p, err := mutate(ctx, s.Common,
		func(ctx context.Context) (*entity.Post, error) { return s.Posts.GetByID(ctx, postID) },
		fn,
		func(ctx context.Context, p *entity.Post) error { return s.Posts.Update(ctx, p) },
	)
	if err != nil {
		return nil, storeFailure(err, msgPostNotFound)
	}
	return p, nil
}

// Like records actorID's like and returns the post's likes.
func (s *PostService) Like(ctx context.Context, actorID, postID string) ([]entity.Like, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	p, err := s.update(ctx, postID, func(p *entity.Post) error {
		if err := p.Like(actorID); err != nil {
			return apperr.Wrap(apperr.KindConflict, "Post already liked", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.Add(metricLikes, 1)
	return p.Likes, nil
}

// Unlike withdraws actorID's like and returns the post's likes.
func (s *PostService) Unlike(ctx context.Context, actorID, postID string) ([]entity.Like, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	p, err := s.update(ctx, postID, func(p *entity.Post) error {
		if err := p.Unlike(actorID); err != nil {
			return apperr.Wrap(apperr.KindNotFound, "Post has not yet been liked", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p.Likes, nil
}

// Comment adds a comment by actorID and returns the post's comments.
func (s *PostService) Comment(ctx context.Context, actorID, postID, text string) ([]entity.Comment, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperr.Validation("invalid request", map[string]string{"text": "is required"})
	}
	author, err := s.author(ctx, actorID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	p, err := s.update(ctx, postID, func(p *entity.Post) error {
		p.AddComment(author, text, now)
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.Add(metricComments, 1)
	return p.Comments, nil
}

// Uncomment removes exactly the comment with commentID. Only its author may do so.
func (s *PostService) Uncomment(ctx context.Context, actorID, postID, commentID string) ([]entity.Comment, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	p, err := s.update(ctx, postID, func(p *entity.Post) error {
		if _, err := p.RemoveComment(commentID, actorID); err != nil {
			return entryFailure(err, "Comment does not exist")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p.Comments, nil
}

// isNotFound reports whether err is a store or taxonomy not-found.
func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound) || apperr.KindOf(err) == apperr.KindNotFound
}
