package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/osouvenir/souvenirs/internal/model"
)

var (
	ErrPlaceNotFound = errors.New("place not found")
)

type PlaceRepository interface {
	Create(ctx context.Context, place *model.Place) error
	ByID(ctx context.Context, id int64) (*model.Place, error)
	// Lock loads the place and, where supported, locks its row until the transaction ends.
	Lock(ctx context.Context, id int64) (*model.Place, error)
	Places(ctx context.Context) ([]*model.Place, error)
	Update(ctx context.Context, place *model.Place) error
	Delete(ctx context.Context, id int64) error
	// CountByLocation counts places bound to a location, ignoring excludeID.
	CountByLocation(ctx context.Context, locationID, excludeID int64) (int, error)
}

type placeRepository struct {
	q sqlx.ExtContext
}

func NewPlaceRepository(q sqlx.ExtContext) PlaceRepository {
	return &placeRepository{q: q}
}

func (r *placeRepository) Create(ctx context.Context, place *model.Place) error {
	query := `INSERT INTO places (location_id, name, type, created_at)
	          VALUES ($1, $2, $3, $4) RETURNING id`

	return r.q.QueryRowxContext(ctx, query,
		place.LocationID,
		place.Name,
		place.Type,
		place.CreatedAt,
	).Scan(&place.ID)
}

func (r *placeRepository) ByID(ctx context.Context, id int64) (*model.Place, error) {
	return r.get(ctx, `SELECT * FROM places WHERE id = $1`, id)
}

func (r *placeRepository) Lock(ctx context.Context, id int64) (*model.Place, error) {
	return r.get(ctx, `SELECT * FROM places WHERE id = $1`+forUpdate(r.q), id)
}

func (r *placeRepository) get(ctx context.Context, query string, id int64) (*model.Place, error) {
	place := &model.Place{}

	err := sqlx.GetContext(ctx, r.q, place, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlaceNotFound
	}
	if err != nil {
		return nil, err
	}

	return place, nil
}

func (r *placeRepository) Places(ctx context.Context) ([]*model.Place, error) {
	var places []*model.Place
	query := `SELECT * FROM places ORDER BY id`

	err := sqlx.SelectContext(ctx, r.q, &places, query)
	return places, err
}

func (r *placeRepository) Update(ctx context.Context, place *model.Place) error {
	query := `UPDATE places SET location_id = $1, name = $2, type = $3, updated_at = $4 WHERE id = $5`

	result, err := r.q.ExecContext(ctx, query,
		place.LocationID,
		place.Name,
		place.Type,
		place.UpdatedAt,
		place.ID,
	)
	if err != nil {
		return err
	}

	return expectOne(result, ErrPlaceNotFound)
}

func (r *placeRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM places WHERE id = $1`, id)
	if err != nil {
		return err
	}

	return expectOne(result, ErrPlaceNotFound)
}

func (r *placeRepository) CountByLocation(ctx context.Context, locationID, excludeID int64) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM places WHERE location_id = $1 AND id <> $2`

	err := sqlx.GetContext(ctx, r.q, &count, query, locationID, excludeID)
	return count, err
}
