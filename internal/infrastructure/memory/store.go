// Package memory is an in-process document store implementing the repository
// contracts with the same conditional-update semantics as the Postgres adapter.
// It backs STORE_DRIVER=memory and the service tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/devconnector-api/internal/domain/entity"
	"github.com/oksasatya/devconnector-api/internal/domain/repository"
)

// Store holds every aggregate kind. Documents are cloned on the way in and
// out so callers never share memory with stored state.
type Store struct {
	mu       sync.RWMutex
	users    map[string]*entity.User
	profiles map[string]*entity.Profile // keyed by owning user id
	posts    map[string]*entity.Post
	now      func() time.Time
	err      error
}

func NewStore() *Store {
	return &Store{
		users:    map[string]*entity.User{},
		profiles: map[string]*entity.Profile{},
		posts:    map[string]*entity.Post{},
		now:      time.Now,
	}
}

// WithError makes every subsequent call fail with err; nil restores normal behavior.
func (s *Store) WithError(err error) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
	return s
}

func (s *Store) Users() *UserRepository       { return &UserRepository{s: s} }
func (s *Store) Profiles() *ProfileRepository { return &ProfileRepository{s: s} }
func (s *Store) Posts() *PostRepository       { return &PostRepository{s: s} }

// check returns the injected error or the context error, whichever applies.
func (s *Store) check(ctx context.Context) error {
	if s.err != nil {
		return s.err
	}
	return ctx.Err()
}

type UserRepository struct{ s *Store }

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(ctx); err != nil {
		return err
	}
	for _, existing := range r.s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return repository.ErrDuplicate
		}
	}
	u.ID = uuid.NewString()
	u.CreatedAt = r.s.now().UTC()
	cp := *u
	r.s.users[u.ID] = &cp
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.check(ctx); err != nil {
		return nil, err
	}
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.check(ctx); err != nil {
		return nil, err
	}
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) GetByIDs(ctx context.Context, ids []string) ([]*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.check(ctx); err != nil {
		return nil, err
	}
	out := make([]*entity.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(ctx); err != nil {
		return 0, err
	}
	if _, ok := r.s.users[id]; !ok {
		return 0, nil
	}
	delete(r.s.users, id)
	return 1, nil
}

type ProfileRepository struct{ s *Store }

func (r *ProfileRepository) Create(ctx context.Context, p *entity.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(ctx); err != nil {
		return err
	}
	if _, ok := r.s.profiles[p.UserID]; ok {
		return repository.ErrDuplicate
	}
	p.ID = uuid.NewString()
	p.Version = 1
	stored := p.Clone()
	stored.Owner = nil
	r.s.profiles[p.UserID] = stored
	return nil
}

func (r *ProfileRepository) GetByUserID(ctx context.Context, userID string) (*entity.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.check(ctx); err != nil {
		return nil, err
	}
	p, ok := r.s.profiles[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return p.Clone(), nil
}

func (r *ProfileRepository) List(ctx context.Context) ([]*entity.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.check(ctx); err != nil {
		return nil, err
	}
	out := make([]*entity.Profile, 0, len(r.s.profiles))
	for _, p := range r.s.profiles {
		out = append(out, p.Clone())
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *ProfileRepository) Update(ctx context.Context, p *entity.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(ctx); err != nil {
		return err
	}
	cur, ok := r.s.profiles[p.UserID]
	if !ok || cur.ID != p.ID || cur.Version != p.Version {
		return repository.ErrVersionConflict
	}
	p.Version++
	stored := p.Clone()
	stored.Owner = nil
	r.s.profiles[p.UserID] = stored
	return nil
}

func (r *ProfileRepository) DeleteByUserID(ctx context.Context, userID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(ctx); err != nil {
		return 0, err
	}
	if _, ok := r.s.profiles[userID]; !ok {
		return 0, nil
	}
	delete(r.s.profiles, userID)
	return 1, nil
}

type PostRepository struct{ s *Store }

func (r *PostRepository) Create(ctx context.Context, p *entity.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(ctx); err != nil {
		return err
	}
	p.ID = uuid.NewString()
	p.Version = 1
	r.s.posts[p.ID] = p.Clone()
	return nil
}

func (r *PostRepository) GetByID(ctx context.Context, id string) (*entity.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.check(ctx); err != nil {
		return nil, err
	}
	p, ok := r.s.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return p.Clone(), nil
}

func (r *PostRepository) List(ctx context.Context) ([]*entity.Post, error) {
	return r.list(ctx, func(*entity.Post) bool { return true })
}

func (r *PostRepository) ListByUserID(ctx context.Context, userID string) ([]*entity.Post, error) {
	return r.list(ctx, func(p *entity.Post) bool { return p.UserID == userID })
}

func (r *PostRepository) list(ctx context.Context, keep func(*entity.Post) bool) ([]*entity.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.check(ctx); err != nil {
		return nil, err
	}
	out := make([]*entity.Post, 0, len(r.s.posts))
	for _, p := range r.s.posts {
		if keep(p) {
			out = append(out, p.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *PostRepository) Update(ctx context.Context, p *entity.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(ctx); err != nil {
		return err
	}
	cur, ok := r.s.posts[p.ID]
	if !ok || cur.Version != p.Version {
		return repository.ErrVersionConflict
	}
	p.Version++
	r.s.posts[p.ID] = p.Clone()
	return nil
}

func (r *PostRepository) Delete(ctx context.Context, id string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(ctx); err != nil {
		return 0, err
	}
	if _, ok := r.s.posts[id]; !ok {
		return 0, nil
	}
	delete(r.s.posts, id)
	return 1, nil
}

func (r *PostRepository) DeleteByUserID(ctx context.Context, userID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(ctx); err != nil {
		return 0, err
	}
	var n int64
	for id, p := range r.s.posts {
		if p.UserID == userID {
			delete(r.s.posts, id)
			n++
		}
	}
	return n, nil
}

var (
	_ repository.UserRepository    = (*UserRepository)(nil)
	_ repository.ProfileRepository = (*ProfileRepository)(nil)
	_ repository.PostRepository    = (*PostRepository)(nil)
)
