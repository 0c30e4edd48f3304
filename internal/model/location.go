package model

import "time"

// Latitude and Longitude are decimal strings kept exactly as entered.
type Location struct {
	ID         int64      `db:"id"`
	Area       string     `db:"area"`
	Department string     `db:"department"`
	District   *string    `db:"district"`
	Street     string     `db:"street"`
	City       string     `db:"city"`
	Zipcode    int        `db:"zipcode"`
	Latitude   string     `db:"latitude"`
	Longitude  string     `db:"longitude"`
	CreatedAt  time.Time  `db:"created_at"`
	UpdatedAt  *time.Time `db:"updated_at"`
}
