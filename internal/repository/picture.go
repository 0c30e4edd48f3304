package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/osouvenir/souvenirs/internal/model"
)

var (
	ErrPictureNotFound = errors.New("picture not found")
)

type PictureRepository interface {
	Create(ctx context.Context, picture *model.Picture) error
	ByID(ctx context.Context, id int64) (*model.Picture, error)
	Pictures(ctx context.Context) ([]*model.Picture, error)
	ByMemory(ctx context.Context, memoryID int64) ([]*model.Picture, error)
	Update(ctx context.Context, picture *model.Picture) error
	Delete(ctx context.Context, id int64) error
	// DeleteByMemory removes every picture of a memory and returns how many went.
	DeleteByMemory(ctx context.Context, memoryID int64) (int64, error)
}

type pictureRepository struct {
	q sqlx.ExtContext
}

func NewPictureRepository(q sqlx.ExtContext) PictureRepository {
	return &pictureRepository{q: q}
}

func (r *pictureRepository) Create(ctx context.Context, picture *model.Picture) error {
	query := `INSERT INTO pictures (memory_id, picture, created_at) VALUES ($1, $2, $3) RETURNING id`

	return r.q.QueryRowxContext(ctx, query,
		picture.MemoryID,
		picture.Picture,
		picture.CreatedAt,
	).Scan(&picture.ID)
}

func (r *pictureRepository) ByID(ctx context.Context, id int64) (*model.Picture, error) {
	picture := &model.Picture{}
	query := `SELECT * FROM pictures WHERE id = $1`

	err := sqlx.GetContext(ctx, r.q, picture, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPictureNotFound
	}
	if err != nil {
		return nil, err
	}

	return picture, nil
}

func (r *pictureRepository) Pictures(ctx context.Context) ([]*model.Picture, error) {
	var pictures []*model.Picture
	query := `SELECT * FROM pictures ORDER BY id`

	err := sqlx.SelectContext(ctx, r.q, &pictures, query)
	return pictures, err
}

func (r *pictureRepository) ByMemory(ctx context.Context, memoryID int64) ([]*model.Picture, error) {
	var pictures []*model.Picture
	query := `SELECT * FROM pictures WHERE memory_id = $1 ORDER BY id`

	err := sqlx.SelectContext(ctx, r.q, &pictures, query, memoryID)
	return pictures, err
}

func (r *pictureRepository) Update(ctx context.Context, picture *model.Picture) error {
	query := `UPDATE pictures SET memory_id = $1, picture = $2, updated_at = $3 WHERE id = $4`

	result, err := r.q.ExecContext(ctx, query,
		picture.MemoryID,
		picture.Picture,
		picture.UpdatedAt,
		picture.ID,
	)
	if err != nil {
		return err
	}

	return expectOne(result, ErrPictureNotFound)
}

func (r *pictureRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM pictures WHERE id = $1`, id)
	if err != nil {
		return err
	}

	return expectOne(result, ErrPictureNotFound)
}

func (r *pictureRepository) DeleteByMemory(ctx context.Context, memoryID int64) (int64, error) {
	result, err := r.q.ExecContext(ctx, `DELETE FROM pictures WHERE memory_id = $1`, memoryID)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}
