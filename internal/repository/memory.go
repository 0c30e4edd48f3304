package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/osouvenir/souvenirs/internal/model"
)

var (
	ErrMemoryNotFound = errors.New("memory not found")
)

type MemoryRepository interface {
	Create(ctx context.Context, memory *model.Memory) error
	ByID(ctx context.Context, id int64) (*model.Memory, error)
	// Lock loads the memory and, where supported, locks its row until the transaction ends.
	Lock(ctx context.Context, id int64) (*model.Memory, error)
	Memories(ctx context.Context) ([]*model.Memory, error)
	Update(ctx context.Context, memory *model.Memory) error
	Delete(ctx context.Context, id int64) error
	// CountByLocation counts memories referencing a location, ignoring excludeID.
	CountByLocation(ctx context.Context, locationID, excludeID int64) (int, error)
	// CountByPlace counts memories referencing a place, ignoring excludeID.
	CountByPlace(ctx context.Context, placeID, excludeID int64) (int, error)
	// CountByMainPicture counts memories whose main picture is name, ignoring excludeID.
	CountByMainPicture(ctx context.Context, name string, excludeID int64) (int, error)
}

type memoryRepository struct {
	q sqlx.ExtContext
}

func NewMemoryRepository(q sqlx.ExtContext) MemoryRepository {
	return &memoryRepository{q: q}
}

func (r *memoryRepository) Create(ctx context.Context, memory *model.Memory) error {
	query := `INSERT INTO memories (user_id, place_id, location_id, title, content, picture_date, main_picture, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`

	return r.q.QueryRowxContext(ctx, query,
		memory.UserID,
		memory.PlaceID,
		memory.LocationID,
		memory.Title,
		memory.Content,
		memory.PictureDate,
		memory.MainPicture,
		memory.CreatedAt,
	).Scan(&memory.ID)
}

func (r *memoryRepository) ByID(ctx context.Context, id int64) (*model.Memory, error) {
	return r.get(ctx, `SELECT * FROM memories WHERE id = $1`, id)
}

func (r *memoryRepository) Lock(ctx context.Context, id int64) (*model.Memory, error) {
	return r.get(ctx, `SELECT * FROM memories WHERE id = $1`+forUpdate(r.q), id)
}

func (r *memoryRepository) get(ctx context.Context, query string, id int64) (*model.Memory, error) {
	memory := &model.Memory{}

	err := sqlx.GetContext(ctx, r.q, memory, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMemoryNotFound
	}
	if err != nil {
		return nil, err
	}

	return memory, nil
}

func (r *memoryRepository) Memories(ctx context.Context) ([]*model.Memory, error) {
	var memories []*model.Memory
	query := `SELECT * FROM memories ORDER BY id`

	err := sqlx.SelectContext(ctx, r.q, &memories, query)
	return memories, err
}

func (r *memoryRepository) Update(ctx context.Context, memory *model.Memory) error {
	query := `UPDATE memories
	          SET user_id = $1, place_id = $2, location_id = $3, title = $4, content = $5,
	              picture_date = $6, main_picture = $7, updated_at = $8
	          WHERE id = $9`

	result, err := r.q.ExecContext(ctx, query,
		memory.UserID,
		memory.PlaceID,
		memory.LocationID,
		memory.Title,
		memory.Content,
		memory.PictureDate,
		memory.MainPicture,
		memory.UpdatedAt,
		memory.ID,
	)
	if err != nil {
		return err
	}

	return expectOne(result, ErrMemoryNotFound)
}

func (r *memoryRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM memories WHERE id = $1`, id)
	if err != nil {
		return err
	}

	return expectOne(result, ErrMemoryNotFound)
}

func (r *memoryRepository) CountByLocation(ctx context.Context, locationID, excludeID int64) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM memories WHERE location_id = $1 AND id <> $2`

	err := sqlx.GetContext(ctx, r.q, &count, query, locationID, excludeID)
	return count, err
}

func (r *memoryRepository) CountByPlace(ctx context.Context, placeID, excludeID int64) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM memories WHERE place_id = $1 AND id <> $2`

	err := sqlx.GetContext(ctx, r.q, &count, query, placeID, excludeID)
	return count, err
}

func (r *memoryRepository) CountByMainPicture(ctx context.Context, name string, excludeID int64) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM memories WHERE main_picture = $1 AND id <> $2`

	err := sqlx.GetContext(ctx, r.q, &count, query, name, excludeID)
	return count, err
}
