package application

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/devconnector-api/internal/domain/collection"
	"github.com/oksasatya/devconnector-api/internal/domain/entity"
	"github.com/oksasatya/devconnector-api/internal/domain/policy"
	"github.com/oksasatya/devconnector-api/internal/domain/repository"
	"github.com/oksasatya/devconnector-api/pkg/apperr"
	"github.com/oksasatya/devconnector-api/pkg/helpers"
)

const (
	msgNoProfile      = "There is no profile for this user"
	msgUserNotFound   = "User not found"
	msgProfileMissing = "Profile not found"
	msgNoGitHub       = "No Github profile found"
	defaultSearchSize = 10
	maxSearchSize     = 50
)

// ProfileService resolves profile upserts and edits the nested experience and
// education sequences of the caller's own profile.
type ProfileService struct {
	Common
	Profiles repository.ProfileRepository
	Users    repository.UserRepository
	Index    ProfileIndexer
	GitHub   RepoLister
	Redis    *redis.Client
	CacheTTL time.Duration
}

func NewProfileService(c Common, profiles repository.ProfileRepository, users repository.UserRepository) *ProfileService {
	return &ProfileService{Common: c, Profiles: profiles, Users: users}
}

// Upsert merges f into the caller's profile, creating it if the caller has none.
// Concurrent first upserts for one user converge on a single profile: the
// losing create falls back to a merge-update of the winner.
func (s *ProfileService) Upsert(ctx context.Context, userID string, f entity.ProfileFields) (*entity.Profile, error) {
	if userID == "" {
		return nil, apperr.Unauthenticated("No token, authorization denied")
	}
	now := s.now()
	merge := func(p *entity.Profile) error {
		p.Apply(f, now)
		return nil
	}

	p, err := s.update(ctx, userID, merge)
	if err != nil && apperr.KindOf(err) == apperr.KindNotFound {
		// A token outlives its account; only a live user may own a new profile.
		if err := s.requireUser(ctx, userID); err != nil {
			return nil, err
		}
		created := entity.NewProfile(userID, f, now)
		err = s.call(ctx, func(ctx context.Context) error { return s.Profiles.Create(ctx, created) })
		switch {
		case err == nil:
			p = created
		case errors.Is(err, repository.ErrDuplicate):
			p, err = s.update(ctx, userID, merge)
		default:
			err = storeFailure(err, msgNoProfile)
		}
	}
	if err != nil {
		return nil, err
	}
	metrics.Add(metricProfileUpserts, 1)

	if err := s.attachOwners(ctx, p); err != nil {
		return nil, err
	}
	s.index(ctx, p)
	return p, nil
}

// update runs a guarded read-modify-write on the profile owned by actorID.
func (s *ProfileService) update(ctx context.Context, actorID string, fn func(*entity.Profile) error) (*entity.Profile, error) {
	p, err := mutate(ctx, s.Common,
		func(ctx context.Context) (*entity.Profile, error) { return s.Profiles.GetByUserID(ctx, actorID) },
		func(p *entity.Profile) error {
			if err := policy.Authorize(actorID, p.OwnerID()); err != nil {
				return apperr.Wrap(apperr.KindUnauthorized, "User not authorized", err)
			}
			return fn(p)
		},
		func(ctx context.Context, p *entity.Profile) error { return s.Profiles.Update(ctx, p) },
	)
	if err != nil {
		return nil, storeFailure(err, msgNoProfile)
	}
	return p, nil
}

func (s *ProfileService) requireUser(ctx context.Context, userID string) error {
	err := s.call(ctx, func(ctx context.Context) error {
		_, err := s.Users.GetByID(ctx, userID)
		return err
	})
	if err != nil {
		return storeFailure(err, msgUserNotFound)
	}
	return nil
}

// Me returns the caller's own profile.
func (s *ProfileService) Me(ctx context.Context, userID string) (*entity.Profile, error) {
	p, err := s.get(ctx, userID, msgNoProfile)
	if err != nil {
		return nil, err
	}
	return p, s.attachOwners(ctx, p)
}

// GetByUser returns the profile of any user.
func (s *ProfileService) GetByUser(ctx context.Context, userID string) (*entity.Profile, error) {
	p, err := s.get(ctx, userID, msgProfileMissing)
	if err != nil {
		return nil, err
	}
	return p, s.attachOwners(ctx, p)
}

func (s *ProfileService) get(ctx context.Context, userID, notFound string) (*entity.Profile, error) {
	var p *entity.Profile
	err := s.call(ctx, func(ctx context.Context) error {
		var err error
		p, err = s.Profiles.GetByUserID(ctx, userID)
		return err
	})
	if err != nil {
		return nil, storeFailure(err, notFound)
	}
	return p, nil
}

// List returns every profile decorated with its owner's name and avatar.
func (s *ProfileService) List(ctx context.Context) ([]*entity.Profile, error) {
	var out []*entity.Profile
	err := s.call(ctx, func(ctx context.Context) error {
		var err error
		out, err = s.Profiles.List(ctx)
		return err
	})
	if err != nil {
		return nil, storeFailure(err, msgProfileMissing)
	}
	return out, s.attachOwners(ctx, out...)
}

// AddExperience prepends e to the caller's experience and returns the profile.
func (s *ProfileService) AddExperience(ctx context.Context, userID string, e entity.Experience) (*entity.Profile, error) {
	p, err := s.update(ctx, userID, func(p *entity.Profile) error {
		p.AddExperience(e)
		p.UpdatedAt = s.now()
		return nil
	})
	return s.finish(ctx, p, err)
}

// RemoveExperience deletes exactly the experience entry with expID.
func (s *ProfileService) RemoveExperience(ctx context.Context, userID, expID string) (*entity.Profile, error) {
	p, err := s.update(ctx, userID, func(p *entity.Profile) error {
		if err := p.RemoveExperience(expID); err != nil {
			return entryFailure(err, "Experience not found")
		}
		p.UpdatedAt = s.now()
		return nil
	})
	return s.finish(ctx, p, err)
}

// AddEducation prepends e to the caller's education and returns the profile.
func (s *ProfileService) AddEducation(ctx context.Context, userID string, e entity.Education) (*entity.Profile, error) {
	p, err := s.update(ctx, userID, func(p *entity.Profile) error {
		p.AddEducation(e)
		p.UpdatedAt = s.now()
		return nil
	})
	return s.finish(ctx, p, err)
}

// RemoveEducation deletes exactly the education entry with eduID.
func (s *ProfileService) RemoveEducation(ctx context.Context, userID, eduID string) (*entity.Profile, error) {
	p, err := s.update(ctx, userID, func(p *entity.Profile) error {
		if err := p.RemoveEducation(eduID); err != nil {
			return entryFailure(err, "Education not found")
		}
		p.UpdatedAt = s.now()
		return nil
	})
	return s.finish(ctx, p, err)
}

func (s *ProfileService) finish(ctx context.Context, p *entity.Profile, err error) (*entity.Profile, error) {
	if err != nil {
		return nil, err
	}
	if err := s.attachOwners(ctx, p); err != nil {
		return nil, err
	}
	s.index(ctx, p)
	return p, nil
}

// entryFailure classifies an error from the nested-collection editor.
func entryFailure(err error, notFound string) error {
	switch {
	case errors.Is(err, collection.ErrEntryNotFound):
		return apperr.Wrap(apperr.KindNotFound, notFound, err)
	case errors.Is(err, policy.ErrNotAuthor):
		return apperr.Wrap(apperr.KindForbidden, "User not authorized", err)
	case errors.Is(err, policy.ErrNotOwner):
		return apperr.Wrap(apperr.KindUnauthorized, "User not authorized", err)
	}
	return err
}

// attachOwners decorates profiles with the owner's current name and avatar.
func (s *ProfileService) attachOwners(ctx context.Context, profiles ...*entity.Profile) error {
	if len(profiles) == 0 {
		return nil
	}
	ids := make([]string, 0, len(profiles))
	for _, p := range profiles {
		ids = append(ids, p.UserID)
	}
	var users []*entity.User
	err := s.call(ctx, func(ctx context.Context) error {
		var err error
		users, err = s.Users.GetByIDs(ctx, ids)
		return err
	})
	if err != nil {
		return storeFailure(err, msgProfileMissing)
	}
	byID := make(map[string]*entity.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	for _, p := range profiles {
		if u, ok := byID[p.UserID]; ok {
			p.Owner = &entity.Owner{ID: u.ID, Name: u.Name, Avatar: u.AvatarURL}
		}
	}
	return nil
}

func (s *ProfileService) index(ctx context.Context, p *entity.Profile) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Index(ctx, p); err != nil {
		s.logger().WithError(err).WithField("user_id", p.UserID).Warn("profile index failed")
	}
}

// GitHubRepos lists the latest repositories of username, cached in Redis when available.
func (s *ProfileService) GitHubRepos(ctx context.Context, username string) (json.RawMessage, error) {
	username = strings.TrimSpace(username)
	if s.GitHub == nil || username == "" {
		return nil, apperr.NotFound(msgNoGitHub)
	}
	key := "github:repos:" + strings.ToLower(username)
	if s.Redis != nil {
		var cached json.RawMessage
		if ok, err := helpers.RedisGetJSON(ctx, s.Redis, key, &cached); err == nil && ok {
			return cached, nil
		} else if err != nil {
			s.logger().WithError(err).WithField("key", key).Warn("redis get failed")
		}
	}

	repos, err := s.GitHub.ListRepos(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound(msgNoGitHub)
	}
	if err != nil {
		s.logger().WithError(err).WithField("username", username).Error("github request failed")
		return nil, apperr.Wrap(apperr.KindInternal, "server error", err)
	}

	if s.Redis != nil && s.CacheTTL > 0 {
		if err := helpers.RedisSetJSON(ctx, s.Redis, key, repos, s.CacheTTL); err != nil {
			s.logger().WithError(err).WithField("key", key).Warn("redis set failed")
		}
	}
	return repos, nil
}

// Search runs a full-text query over indexed profiles. Profiles that vanished
// since they were indexed are skipped.
func (s *ProfileService) Search(ctx context.Context, query string, size int) ([]*entity.Profile, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperr.Validation("invalid request", map[string]string{"q": "is required"})
	}
	if s.Index == nil {
		return []*entity.Profile{}, nil
	}
	if size <= 0 || size > maxSearchSize {
		size = defaultSearchSize
	}
	ids, err := s.Index.Search(ctx, query, size)
	if err != nil {
		s.logger().WithError(err).WithFields(logrus.Fields{"query": query}).Error("profile search failed")
		return nil, apperr.Wrap(apperr.KindInternal, "server error", err)
	}

	out := make([]*entity.Profile, 0, len(ids))
	for _, id := range ids {
		p, err := s.get(ctx, id, msgProfileMissing)
		if apperr.KindOf(err) == apperr.KindNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, s.attachOwners(ctx, out...)
}
