package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/devconnector-api/internal/domain/entity"
	"github.com/oksasatya/devconnector-api/internal/domain/repository"
)

const (
	profileID = "4f1c3c9e-5a5f-4a59-9d7c-8f2d2b0c1e11"
	ownerID   = "9a7b1c2d-3e4f-4a5b-8c6d-7e8f9a0b1c2d"
)

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock
}

// anyArgs matches n leading arguments without inspecting them.
func anyArgs(n int, rest ...any) []any {
	out := make([]any, 0, n+len(rest))
	for i := 0; i < n; i++ {
		out = append(out, pgxmock.AnyArg())
	}
	return append(out, rest...)
}

func TestProfileUpdateMatchesIDAndVersion(t *testing.T) {
	mock := newMockPool(t)
	repo := NewProfileRepository(mock)

	p := entity.NewProfile(ownerID, entity.ProfileFields{Status: "Dev"}, time.Now())
	p.ID, p.Version = profileID, 3

	mock.ExpectExec(regexp.QuoteMeta("WHERE id = $12 AND version = $13")).
		WithArgs(anyArgs(11, profileID, int64(3))...).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.Update(context.Background(), p))
	assert.Equal(t, int64(4), p.Version)
}

func TestProfileUpdateStaleVersionConflicts(t *testing.T) {
	mock := newMockPool(t)
	repo := NewProfileRepository(mock)

	p := entity.NewProfile(ownerID, entity.ProfileFields{Status: "Dev"}, time.Now())
	p.ID, p.Version = profileID, 1

	mock.ExpectExec(regexp.QuoteMeta("WHERE id = $12 AND version = $13")).
		WithArgs(anyArgs(11, profileID, int64(1))...).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	assert.ErrorIs(t, repo.Update(context.Background(), p), repository.ErrVersionConflict)
	assert.Equal(t, int64(1), p.Version)
}

func TestProfileUpdateWithoutIDNeverQueries(t *testing.T) {
	repo := NewProfileRepository(newMockPool(t))
	p := entity.NewProfile(ownerID, entity.ProfileFields{Status: "Dev"}, time.Now())

	assert.ErrorIs(t, repo.Update(context.Background(), p), repository.ErrVersionConflict)
}

func TestProfileCreate(t *testing.T) {
	mock := newMockPool(t)
	repo := NewProfileRepository(mock)
	p := entity.NewProfile(ownerID, entity.ProfileFields{Status: "Dev"}, time.Now())

	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (user_id) DO NOTHING")).
		WithArgs(append([]any{ownerID}, anyArgs(12)...)...).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(profileID))

	require.NoError(t, repo.Create(context.Background(), p))
	assert.Equal(t, profileID, p.ID)
	assert.Equal(t, int64(1), p.Version)
}

func TestProfileCreateLostRaceIsDuplicate(t *testing.T) {
	mock := newMockPool(t)
	repo := NewProfileRepository(mock)
	p := entity.NewProfile(ownerID, entity.ProfileFields{Status: "Dev"}, time.Now())

	// ON CONFLICT DO NOTHING inserts nothing, so RETURNING yields no row.
	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (user_id) DO NOTHING")).
		WithArgs(anyArgs(13)...).
		WillReturnError(pgx.ErrNoRows)

	assert.ErrorIs(t, repo.Create(context.Background(), p), repository.ErrDuplicate)
}

func TestProfileCreateForMalformedOwner(t *testing.T) {
	repo := NewProfileRepository(newMockPool(t))
	p := entity.NewProfile("not-a-uuid", entity.ProfileFields{Status: "Dev"}, time.Now())

	assert.ErrorIs(t, repo.Create(context.Background(), p), repository.ErrNotFound)
}

func TestPostUpdateMatchesIDAndVersion(t *testing.T) {
	mock := newMockPool(t)
	repo := NewPostRepository(mock)
	p := &entity.Post{ID: profileID, Version: 2}

	mock.ExpectExec(regexp.QuoteMeta("WHERE id = $3 AND version = $4")).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), profileID, int64(2)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	assert.ErrorIs(t, repo.Update(context.Background(), p), repository.ErrVersionConflict)
}
