package application

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/devconnector-api/internal/domain/entity"
	"github.com/oksasatya/devconnector-api/pkg/apperr"
	"github.com/oksasatya/devconnector-api/pkg/helpers"
)

func TestLikeScenarioEndToEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tok, err := f.auth.Register(ctx, RegisterInput{Name: "Ann", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)
	claims, err := f.auth.Tokens.(*helpers.JWTManager).ParseAccessToken(tok.Token)
	require.NoError(t, err)
	a := claims.UserID

	post, err := f.posts.Create(ctx, a, "hello")
	require.NoError(t, err)
	assert.Equal(t, "Ann", post.Name)

	likes, err := f.posts.Like(ctx, a, post.ID)
	require.NoError(t, err)
	assert.Len(t, likes, 1)

	_, err = f.posts.Like(ctx, a, post.ID)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	got, err := f.posts.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Len(t, got.Likes, 1)

	likes, err = f.posts.Unlike(ctx, a, post.ID)
	require.NoError(t, err)
	assert.Empty(t, likes)

	_, err = f.posts.Unlike(ctx, a, post.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestConcurrentLikesNeverDuplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, "Ann", "a@x.com")
	post, err := f.posts.Create(ctx, owner, "hello")
	require.NoError(t, err)

	likers := []string{"u1", "u2", "u3", "u4"}
	var wg sync.WaitGroup
	for _, u := range likers {
		wg.Add(1)
		go func(u string) {
			defer wg.Done()
			_, _ = f.posts.Like(ctx, u, post.ID)
		}(u)
	}
	wg.Wait()

	got, err := f.posts.Get(ctx, post.ID)
	require.NoError(t, err)
	// each like either landed or exhausted its retries; none may be lost silently
	seen := map[string]int{}
	for _, l := range got.Likes {
		seen[l.UserID]++
	}
	for u, n := range seen {
		assert.Equal(t, 1, n, u)
	}
}

func TestPostDeleteOwnerOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ann := f.register(t, "Ann", "a@x.com")
	bob := f.register(t, "Bob", "b@x.com")
	post, err := f.posts.Create(ctx, ann, "hello")
	require.NoError(t, err)

	err = f.posts.Delete(ctx, bob, post.ID)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
	still, err := f.posts.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", still.Text)

	require.NoError(t, f.posts.Delete(ctx, ann, post.ID))
	_, err = f.posts.Get(ctx, post.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(f.posts.Delete(ctx, ann, post.ID)))
}

func TestCommentRemovalByIDAndAuthor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ann := f.register(t, "Ann", "a@x.com")
	bob := f.register(t, "Bob", "b@x.com")
	post, err := f.posts.Create(ctx, ann, "hello")
	require.NoError(t, err)

	for _, text := range []string{"one", "two", "three"} {
		_, err := f.posts.Comment(ctx, bob, post.ID, text)
		require.NoError(t, err)
	}
	comments, err := f.posts.Comment(ctx, ann, post.ID, "reply")
	require.NoError(t, err)
	require.Len(t, comments, 4)
	assert.Equal(t, "reply", comments[0].Text)
	assert.Equal(t, "Ann", comments[0].Name)

	target := comments[2] // "two" by Bob
	_, err = f.posts.Uncomment(ctx, ann, post.ID, target.ID)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	comments, err = f.posts.Uncomment(ctx, bob, post.ID, target.ID)
	require.NoError(t, err)
	texts := make([]string, 0, len(comments))
	for _, c := range comments {
		texts = append(texts, c.Text)
	}
	assert.Equal(t, []string{"reply", "three", "one"}, texts)

	_, err = f.posts.Uncomment(ctx, bob, post.ID, target.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestAuthorSnapshotSurvivesUserChanges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ann := f.register(t, "Ann", "a@x.com")
	post, err := f.posts.Create(ctx, ann, "hello")
	require.NoError(t, err)

	// the post keeps its snapshot even once the user is gone
	_, err = f.store.Users().Delete(ctx, ann)
	require.NoError(t, err)
	got, err := f.posts.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.Authorship{UserID: ann, Name: "Ann", Avatar: got.Avatar}, got.Authorship)
	assert.NotEmpty(t, got.Avatar)
}

func TestPostValidationAndAuth(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ann := f.register(t, "Ann", "a@x.com")

	_, err := f.posts.Create(ctx, ann, "   ")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	_, err = f.posts.Create(ctx, "", "hello")
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))
	_, err = f.posts.Like(ctx, ann, "missing")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestPostsListNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ann := f.register(t, "Ann", "a@x.com")
	for _, text := range []string{"a", "b", "c"} {
		_, err := f.posts.Create(ctx, ann, text)
		require.NoError(t, err)
	}
	posts, err := f.posts.List(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.False(t, posts[0].CreatedAt.Before(posts[2].CreatedAt))
}

func TestStoreFailureIsOpaque(t *testing.T) {
	f := newFixture(t)
	ann := f.register(t, "Ann", "a@x.com")
	f.store.WithError(context.DeadlineExceeded)

	_, err := f.posts.Create(context.Background(), ann, "hello")
	assert.Equal(t, apperr.KindStoreUnavailable, apperr.KindOf(err))
}
