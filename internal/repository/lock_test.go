package repository

import (
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/osouvenir/souvenirs/internal/db/dbtest"
)

func TestForUpdateByDriver(t *testing.T) {
	database := dbtest.New(t)

	if got := forUpdate(database); got != "" {
		t.Errorf("sqlite: forUpdate = %q, want none", got)
	}
	// Only the driver name matters, the handle is never queried.
	if got := forUpdate(sqlx.NewDb(database.DB, "pgx")); got != " FOR UPDATE" {
		t.Errorf("pgx: forUpdate = %q, want %q", got, " FOR UPDATE")
	}

	tx, err := database.Beginx()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = tx.Rollback() }()
	if got := forUpdate(tx); got != "" {
		t.Errorf("sqlite tx: forUpdate = %q, want none", got)
	}
}
