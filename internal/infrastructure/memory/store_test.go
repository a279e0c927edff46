package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/devconnector-api/internal/domain/entity"
	"github.com/oksasatya/devconnector-api/internal/domain/repository"
)

func TestUserRepository_UniqueEmail(t *testing.T) {
	ctx := context.Background()
	users := NewStore().Users()

	u := &entity.User{Name: "Ann", Email: "a@x.com", Password: "hash"}
	require.NoError(t, users.Create(ctx, u))
	assert.NotEmpty(t, u.ID)
	assert.False(t, u.CreatedAt.IsZero())

	err := users.Create(ctx, &entity.User{Name: "Other", Email: "A@X.com"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	got, err := users.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	n, err := users.Delete(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = users.GetByID(ctx, u.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestProfileRepository_OnePerUser(t *testing.T) {
	ctx := context.Background()
	profiles := NewStore().Profiles()

	require.NoError(t, profiles.Create(ctx, entity.NewProfile("u1", entity.ProfileFields{Status: "dev"}, time.Now())))
	err := profiles.Create(ctx, entity.NewProfile("u1", entity.ProfileFields{Status: "other"}, time.Now()))
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	got, err := profiles.GetByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "dev", got.Status)
}

func TestProfileRepository_ConditionalUpdate(t *testing.T) {
	ctx := context.Background()
	profiles := NewStore().Profiles()
	require.NoError(t, profiles.Create(ctx, entity.NewProfile("u1", entity.ProfileFields{Status: "dev"}, time.Now())))

	a, err := profiles.GetByUserID(ctx, "u1")
	require.NoError(t, err)
	b, err := profiles.GetByUserID(ctx, "u1")
	require.NoError(t, err)

	a.Bio = "first"
	require.NoError(t, profiles.Update(ctx, a))
	assert.Equal(t, int64(2), a.Version)

	b.Bio = "second"
	assert.ErrorIs(t, profiles.Update(ctx, b), repository.ErrVersionConflict)

	got, err := profiles.GetByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "first", got.Bio)
}

func TestProfileRepository_StaleWriteAfterRecreate(t *testing.T) {
	ctx := context.Background()
	profiles := NewStore().Profiles()
	require.NoError(t, profiles.Create(ctx, entity.NewProfile("u1", entity.ProfileFields{Status: "old"}, time.Now())))

	stale, err := profiles.GetByUserID(ctx, "u1")
	require.NoError(t, err)

	_, err = profiles.DeleteByUserID(ctx, "u1")
	require.NoError(t, err)
	require.NoError(t, profiles.Create(ctx, entity.NewProfile("u1", entity.ProfileFields{Status: "new"}, time.Now())))

	// Both rows are at version 1; only the id tells them apart.
	stale.Bio = "from the old profile"
	assert.ErrorIs(t, profiles.Update(ctx, stale), repository.ErrVersionConflict)

	got, err := profiles.GetByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "new", got.Status)
	assert.Empty(t, got.Bio)
}

func TestPostRepository_ReadsAreIsolated(t *testing.T) {
	ctx := context.Background()
	posts := NewStore().Posts()

	p := entity.NewPost(entity.Authorship{UserID: "u1"}, "hello", time.Now())
	require.NoError(t, posts.Create(ctx, p))

	got, err := posts.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.NoError(t, got.Like("u2"))

	again, err := posts.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, again.Likes, "unsaved mutation must not leak into the store")
}

func TestPostRepository_ListNewestFirstAndDeleteByUser(t *testing.T) {
	ctx := context.Background()
	posts := NewStore().Posts()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, owner := range []string{"u1", "u2", "u1"} {
		p := entity.NewPost(entity.Authorship{UserID: owner}, "p", base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, posts.Create(ctx, p))
	}

	all, err := posts.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].CreatedAt.After(all[1].CreatedAt))
	assert.True(t, all[1].CreatedAt.After(all[2].CreatedAt))

	n, err := posts.DeleteByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	mine, err := posts.ListByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestStore_WithError(t *testing.T) {
	boom := errors.New("boom")
	s := NewStore().WithError(boom)

	_, err := s.Posts().List(context.Background())
	assert.ErrorIs(t, err, boom)

	s.WithError(nil)
	_, err = s.Posts().List(context.Background())
	assert.NoError(t, err)
}

func TestStore_RespectsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewStore().Users().GetByID(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}
