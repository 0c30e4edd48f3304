package model

import "time"

type Picture struct {
	ID        int64      `db:"id"`
	MemoryID  int64      `db:"memory_id"`
	Picture   string     `db:"picture"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt *time.Time `db:"updated_at"`
}
