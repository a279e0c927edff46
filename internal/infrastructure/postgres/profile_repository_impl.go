package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/devconnector-api/internal/domain/entity"
	"github.com/oksasatya/devconnector-api/internal/domain/repository"
)

const profileColumns = `id::text, user_id::text, company, website, location, bio, status, github_username,
	skills, social, experience, education, version, created_at, updated_at`

// ProfileRepository stores one row per profile with the nested sequences as JSONB documents.
type ProfileRepository struct {
	pool DBTX
}

func NewProfileRepository(pool DBTX) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

// profileDocs holds the JSON-encoded nested parts of a profile.
type profileDocs struct {
	social, experience, education string
}

func encodeProfile(p *entity.Profile) (profileDocs, error) {
	social, err := json.Marshal(p.Social)
	if err != nil {
		return profileDocs{}, err
	}
	exp, err := json.Marshal(nonNil(p.Experience))
	if err != nil {
		return profileDocs{}, err
	}
	edu, err := json.Marshal(nonNil(p.Education))
	if err != nil {
		return profileDocs{}, err
	}
	return profileDocs{social: string(social), experience: string(exp), education: string(edu)}, nil
}

func scanProfile(row rowScanner) (*entity.Profile, error) {
	p := &entity.Profile{}
	var social, exp, edu []byte
	if err := row.Scan(&p.ID, &p.UserID, &p.Company, &p.Website, &p.Location, &p.Bio, &p.Status,
		&p.GitHubUsername, &p.Skills, &social, &exp, &edu, &p.Version, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	if err := json.Unmarshal(social, &p.Social); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(exp, &p.Experience); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(edu, &p.Education); err != nil {
		return nil, err
	}
	if p.Skills == nil {
		p.Skills = []string{}
	}
	return p, nil
}

func (r *ProfileRepository) Create(ctx context.Context, p *entity.Profile) error {
	if !validID(p.UserID) {
		return repository.ErrNotFound
	}
	docs, err := encodeProfile(p)
	if err != nil {
		return err
	}
	// The unique owner constraint decides create races: the loser inserts nothing.
	row := r.pool.QueryRow(ctx, `
		INSERT INTO profiles (user_id, company, website, location, bio, status, github_username,
			skills, social, experience, education, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::jsonb, $10::jsonb, $11::jsonb, 1, $12, $13)
		ON CONFLICT (user_id) DO NOTHING
		RETURNING id::text
	`, p.UserID, p.Company, p.Website, p.Location, p.Bio, p.Status, p.GitHubUsername,
		nonNil(p.Skills), docs.social, docs.experience, docs.education, p.CreatedAt, p.UpdatedAt)

	if err := row.Scan(&p.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.ErrDuplicate
		}
		return mapErr(err)
	}
	p.Version = 1
	return nil
}

func (r *ProfileRepository) GetByUserID(ctx context.Context, userID string) (*entity.Profile, error) {
	if !validID(userID) {
		return nil, repository.ErrNotFound
	}
	return scanProfile(r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`, userID))
}

func (r *ProfileRepository) List(ctx context.Context) ([]*entity.Profile, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+profileColumns+` FROM profiles ORDER BY created_at`)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := []*entity.Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, mapErr(rows.Err())
}

// Update writes p if the row it was read from is unchanged. The row is matched
// by profile id, so a profile deleted and re-created meanwhile is not overwritten.
func (r *ProfileRepository) Update(ctx context.Context, p *entity.Profile) error {
	if !validID(p.ID) {
		return repository.ErrVersionConflict
	}
	docs, err := encodeProfile(p)
	if err != nil {
		return err
	}
	res, err := r.pool.Exec(ctx, `
		UPDATE profiles
		SET company = $1, website = $2, location = $3, bio = $4, status = $5, github_username = $6,
			skills = $7, social = $8::jsonb, experience = $9::jsonb, education = $10::jsonb,
			updated_at = $11, version = version + 1
		WHERE id = $12 AND version = $13
	`, p.Company, p.Website, p.Location, p.Bio, p.Status, p.GitHubUsername,
		nonNil(p.Skills), docs.social, docs.experience, docs.education, p.UpdatedAt, p.ID, p.Version)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrVersionConflict
	}
	p.Version++
	return nil
}

func (r *ProfileRepository) DeleteByUserID(ctx context.Context, userID string) (int64, error) {
	if !validID(userID) {
		return 0, nil
	}
	res, err := r.pool.Exec(ctx, `DELETE FROM profiles WHERE user_id = $1`, userID)
	if err != nil {
		return 0, mapErr(err)
	}
	return res.RowsAffected(), nil
}

// nonNil keeps empty sequences encoded as [] instead of null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

var _ repository.ProfileRepository = (*ProfileRepository)(nil)
