package application

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/devconnector-api/internal/domain/entity"
	"github.com/oksasatya/devconnector-api/internal/domain/repository"
	"github.com/oksasatya/devconnector-api/pkg/apperr"
)

func TestUpsertCreatesThenMerges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.register(t, "Ann", "a@x.com")

	p, err := f.profiles.Upsert(ctx, id, entity.ProfileFields{
		Status:  "Developer",
		Skills:  entity.ParseSkills("go, sql ,, docker"),
		Company: "Acme",
		Social:  entity.SocialLinks{Twitter: "t"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "sql", "docker"}, p.Skills)
	assert.Empty(t, p.Experience)
	require.NotNil(t, p.Owner)
	assert.Equal(t, "Ann", p.Owner.Name)
	assert.True(t, f.index.has(id))

	p2, err := f.profiles.Upsert(ctx, id, entity.ProfileFields{Bio: "hi", Social: entity.SocialLinks{YouTube: "y"}})
	require.NoError(t, err)
	assert.Equal(t, p.ID, p2.ID)
	assert.Equal(t, "Acme", p2.Company)
	assert.Equal(t, "Developer", p2.Status)
	assert.Equal(t, "hi", p2.Bio)
	assert.Equal(t, entity.SocialLinks{Twitter: "t", YouTube: "y"}, p2.Social)

	all, err := f.profiles.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUpsertConcurrentFirstCallsYieldOneProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.register(t, "Ann", "a@x.com")

	const n = 20
	var wg sync.WaitGroup
	errs := make([]error, n)
	ids := make([]string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := f.profiles.Upsert(ctx, id, entity.ProfileFields{Status: "Dev", Skills: []string{"go"}})
			errs[i] = err
			if err == nil {
				ids[i] = p.ID
			}
		}(i)
	}
	wg.Wait()

	winner := ""
	for i := 0; i < n; i++ {
		if errs[i] != nil {
			// Exhausted retries under heavy contention are a reported conflict, never a second profile.
			assert.Equal(t, apperr.KindConflict, apperr.KindOf(errs[i]))
			continue
		}
		if winner == "" {
			winner = ids[i]
		}
		assert.Equal(t, winner, ids[i])
	}
	assert.NotEmpty(t, winner)
	all, err := f.store.Profiles().List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestProfileReads(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.register(t, "Ann", "a@x.com")

	_, err := f.profiles.Me(ctx, id)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	_, err = f.profiles.GetByUser(ctx, "not-an-id")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = f.profiles.Upsert(ctx, id, entity.ProfileFields{Status: "Dev", Skills: []string{"go"}})
	require.NoError(t, err)

	me, err := f.profiles.Me(ctx, id)
	require.NoError(t, err)
	other, err := f.profiles.GetByUser(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, me.ID, other.ID)
	assert.Equal(t, "Ann", other.Owner.Name)
}

func TestExperienceAddAndRemoveByID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.register(t, "Ann", "a@x.com")

	_, err := f.profiles.AddExperience(ctx, id, entity.Experience{Title: "Dev", Company: "A", From: time.Now()})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = f.profiles.Upsert(ctx, id, entity.ProfileFields{Status: "Dev", Skills: []string{"go"}})
	require.NoError(t, err)

	var p *entity.Profile
	for _, title := range []string{"first", "second", "third"} {
		p, err = f.profiles.AddExperience(ctx, id, entity.Experience{Title: title, Company: "A", From: time.Now()})
		require.NoError(t, err)
	}
	require.Len(t, p.Experience, 3)
	assert.Equal(t, "third", p.Experience[0].Title)

	middle := p.Experience[1]
	p, err = f.profiles.RemoveExperience(ctx, id, middle.ID)
	require.NoError(t, err)
	require.Len(t, p.Experience, 2)
	assert.Equal(t, "third", p.Experience[0].Title)
	assert.Equal(t, "first", p.Experience[1].Title)

	_, err = f.profiles.RemoveExperience(ctx, id, middle.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestEducationAddAndRemoveByID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.register(t, "Ann", "a@x.com")
	_, err := f.profiles.Upsert(ctx, id, entity.ProfileFields{Status: "Dev", Skills: []string{"go"}})
	require.NoError(t, err)

	p, err := f.profiles.AddEducation(ctx, id, entity.Education{School: "S1", Degree: "BSc", FieldOfStudy: "CS", From: time.Now()})
	require.NoError(t, err)
	p, err = f.profiles.AddEducation(ctx, id, entity.Education{School: "S2", Degree: "MSc", FieldOfStudy: "CS", From: time.Now()})
	require.NoError(t, err)
	first := p.Education[1]

	p, err = f.profiles.RemoveEducation(ctx, id, first.ID)
	require.NoError(t, err)
	require.Len(t, p.Education, 1)
	assert.Equal(t, "S2", p.Education[0].School)

	stored, err := f.store.Profiles().GetByUserID(ctx, id)
	require.NoError(t, err)
	assert.Len(t, stored.Education, 1)
}

func TestGitHubReposCachesNothingWithoutRedis(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.profiles.GitHubRepos(ctx, "octocat")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	repos := &fakeRepos{body: json.RawMessage(`[{"name":"hello"}]`)}
	f.profiles.GitHub = repos
	body, err := f.profiles.GitHubRepos(ctx, "octocat")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"hello"}]`, string(body))

	repos.err = repository.ErrNotFound
	_, err = f.profiles.GitHubRepos(ctx, "ghost")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Equal(t, 2, repos.calls)
}

func TestSearchSkipsVanishedProfiles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ann := f.register(t, "Ann", "a@x.com")
	_, err := f.profiles.Upsert(ctx, ann, entity.ProfileFields{Status: "Dev", Skills: []string{"go"}})
	require.NoError(t, err)

	f.index.hits = []string{"gone", ann}
	out, err := f.profiles.Search(ctx, "go", 0)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Ann", out[0].Owner.Name)

	_, err = f.profiles.Search(ctx, "  ", 0)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestIndexFailureDoesNotFailUpsert(t *testing.T) {
	f := newFixture(t)
	id := f.register(t, "Ann", "a@x.com")
	f.index.err = errBoom

	_, err := f.profiles.Upsert(context.Background(), id, entity.ProfileFields{Status: "Dev", Skills: []string{"go"}})
	assert.NoError(t, err)
}

func TestUpsertAfterAccountDeletionIsRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ann := f.register(t, "Ann", "a@x.com")

	_, err := f.accounts.Delete(ctx, ann)
	require.NoError(t, err)

	_, err = f.profiles.Upsert(ctx, ann, entity.ProfileFields{Status: "Dev", Skills: []string{"go"}})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "User not found", ae.Message)

	_, err = f.store.Profiles().GetByUserID(ctx, ann)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	all, err := f.profiles.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.False(t, f.index.has(ann))
}
