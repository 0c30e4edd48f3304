package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
)

// Repositories groups the repositories bound to one query executor,
// either the database handle or an open transaction.
type Repositories struct {
	Users     UserRepository
	Locations LocationRepository
	Places    PlaceRepository
	Memories  MemoryRepository
	Pictures  PictureRepository
}

func New(q sqlx.ExtContext) *Repositories {
	return &Repositories{
		Users:     NewUserRepository(q),
		Locations: NewLocationRepository(q),
		Places:    NewPlaceRepository(q),
		Memories:  NewMemoryRepository(q),
		Pictures:  NewPictureRepository(q),
	}
}

// Store is the unit of work. Reads go through the embedded repositories,
// writes that span several rows go through InTx.
type Store struct {
	*Repositories
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{
		Repositories: New(db),
		db:           db,
	}
}

// InTx runs fn against repositories bound to a single transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
func (s *Store) InTx(ctx context.Context, fn func(repos *Repositories) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		rbErr := tx.Rollback()
		if rbErr != nil && rbErr != sql.ErrTxDone {
			slog.Error("failed to rollback transaction", "error", rbErr)
		}
	}()

	err = fn(New(tx))
	if err != nil {
		return err
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// forUpdate returns the row lock clause for drivers that support it.
// SQLite serialises writers on its own and rejects the clause.
func forUpdate(q sqlx.ExtContext) string {
	if q.DriverName() == "pgx" {
		return " FOR UPDATE"
	}
	return ""
}

// expectOne maps a write that touched no row to the given not-found error.
func expectOne(result sql.Result, notFound error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return notFound
	}
	return nil
}
