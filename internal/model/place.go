package model

import "time"

type Place struct {
	ID         int64      `db:"id"`
	LocationID int64      `db:"location_id"`
	Name       string     `db:"name"`
	Type       string     `db:"type"`
	CreatedAt  time.Time  `db:"created_at"`
	UpdatedAt  *time.Time `db:"updated_at"`
}
