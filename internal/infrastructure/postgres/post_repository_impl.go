package postgres

import (
	"context"
	"encoding/json"

	"github.com/oksasatya/devconnector-api/internal/domain/entity"
	"github.com/oksasatya/devconnector-api/internal/domain/repository"
)

const postColumns = `id::text, user_id::text, text, author_name, author_avatar, likes, comments, version, created_at`

// PostRepository stores one row per post with likes and comments as JSONB documents.
type PostRepository struct {
	pool DBTX
}

func NewPostRepository(pool DBTX) *PostRepository {
	return &PostRepository{pool: pool}
}

func encodePost(p *entity.Post) (likes, comments string, err error) {
	l, err := json.Marshal(nonNil(p.Likes))
	if err != nil {
		return "", "", err
	}
	c, err := json.Marshal(nonNil(p.Comments))
	if err != nil {
		return "", "", err
	}
	return string(l), string(c), nil
}

func scanPost(row rowScanner) (*entity.Post, error) {
	p := &entity.Post{}
	var likes, comments []byte
	if err := row.Scan(&p.ID, &p.UserID, &p.Text, &p.Name, &p.Avatar, &likes, &comments, &p.Version, &p.CreatedAt); err != nil {
		return nil, mapErr(err)
	}
	if err := json.Unmarshal(likes, &p.Likes); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(comments, &p.Comments); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PostRepository) Create(ctx context.Context, p *entity.Post) error {
	if !validID(p.UserID) {
		return repository.ErrNotFound
	}
	likes, comments, err := encodePost(p)
	if err != nil {
		return err
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO posts (user_id, text, author_name, author_avatar, likes, comments, version, created_at)
		VALUES ($1, $2, $3, $4, $5::jsonb, $6::jsonb, 1, $7)
		RETURNING id::text
	`, p.UserID, p.Text, p.Name, p.Avatar, likes, comments, p.CreatedAt)
	if err := row.Scan(&p.ID); err != nil {
		return mapErr(err)
	}
	p.Version = 1
	return nil
}

func (r *PostRepository) GetByID(ctx context.Context, id string) (*entity.Post, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	return scanPost(r.pool.QueryRow(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id))
}

func (r *PostRepository) List(ctx context.Context) ([]*entity.Post, error) {
	return r.query(ctx, `SELECT `+postColumns+` FROM posts ORDER BY created_at DESC`)
}

func (r *PostRepository) ListByUserID(ctx context.Context, userID string) ([]*entity.Post, error) {
	if !validID(userID) {
		return []*entity.Post{}, nil
	}
	return r.query(ctx, `SELECT `+postColumns+` FROM posts WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (r *PostRepository) query(ctx context.Context, sql string, args ...any) ([]*entity.Post, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := []*entity.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, mapErr(rows.Err())
}

func (r *PostRepository) Update(ctx context.Context, p *entity.Post) error {
	likes, comments, err := encodePost(p)
	if err != nil {
		return err
	}
	res, err := r.pool.Exec(ctx, `
		UPDATE posts
		SET likes = $1::jsonb, comments = $2::jsonb, version = version + 1
		WHERE id = $3 AND version = $4
	`, likes, comments, p.ID, p.Version)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrVersionConflict
	}
	p.Version++
	return nil
}

func (r *PostRepository) Delete(ctx context.Context, id string) (int64, error) {
	if !validID(id) {
		return 0, nil
	}
	res, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return 0, mapErr(err)
	}
	return res.RowsAffected(), nil
}

func (r *PostRepository) DeleteByUserID(ctx context.Context, userID string) (int64, error) {
	if !validID(userID) {
		return 0, nil
	}
	res, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE user_id = $1`, userID)
	if err != nil {
		return 0, mapErr(err)
	}
	return res.RowsAffected(), nil
}

var _ repository.PostRepository = (*PostRepository)(nil)
