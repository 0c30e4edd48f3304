package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/osouvenir/souvenirs/internal/model"
)

var (
	ErrLocationNotFound = errors.New("location not found")
)

type LocationRepository interface {
	Create(ctx context.Context, location *model.Location) error
	ByID(ctx context.Context, id int64) (*model.Location, error)
	// Lock loads the location and, where supported, locks its row until the transaction ends.
	Lock(ctx context.Context, id int64) (*model.Location, error)
	Locations(ctx context.Context) ([]*model.Location, error)
	Update(ctx context.Context, location *model.Location) error
	Delete(ctx context.Context, id int64) error
}

type locationRepository struct {
	q sqlx.ExtContext
}

func NewLocationRepository(q sqlx.ExtContext) LocationRepository {
	return &locationRepository{q: q}
}

func (r *locationRepository) Create(ctx context.Context, location *model.Location) error {
	query := `INSERT INTO locations (area, department, district, street, city, zipcode, latitude, longitude, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`

	return r.q.QueryRowxContext(ctx, query,
		location.Area,
		location.Department,
		location.District,
		location.Street,
		location.City,
		location.Zipcode,
		location.Latitude,
		location.Longitude,
		location.CreatedAt,
	).Scan(&location.ID)
}

func (r *locationRepository) ByID(ctx context.Context, id int64) (*model.Location, error) {
	return r.get(ctx, `SELECT * FROM locations WHERE id = $1`, id)
}

func (r *locationRepository) Lock(ctx context.Context, id int64) (*model.Location, error) {
	return r.get(ctx, `SELECT * FROM locations WHERE id = $1`+forUpdate(r.q), id)
}

func (r *locationRepository) get(ctx context.Context, query string, id int64) (*model.Location, error) {
	location := &model.Location{}

	err := sqlx.GetContext(ctx, r.q, location, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrLocationNotFound
	}
	if err != nil {
		return nil, err
	}

	return location, nil
}

func (r *locationRepository) Locations(ctx context.Context) ([]*model.Location, error) {
	var locations []*model.Location
	query := `SELECT * FROM locations ORDER BY id`

	err := sqlx.SelectContext(ctx, r.q, &locations, query)
	return locations, err
}

func (r *locationRepository) Update(ctx context.Context, location *model.Location) error {
	query := `UPDATE locations
	          SET area = $1, department = $2, district = $3, street = $4, city = $5,
	              zipcode = $6, latitude = $7, longitude = $8, updated_at = $9
	          WHERE id = $10`

	result, err := r.q.ExecContext(ctx, query,
		location.Area,
		location.Department,
		location.District,
		location.Street,
		location.City,
		location.Zipcode,
		location.Latitude,
		location.Longitude,
		location.UpdatedAt,
		location.ID,
	)
	if err != nil {
		return err
	}

	return expectOne(result, ErrLocationNotFound)
}

func (r *locationRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM locations WHERE id = $1`, id)
	if err != nil {
		return err
	}

	return expectOne(result, ErrLocationNotFound)
}
