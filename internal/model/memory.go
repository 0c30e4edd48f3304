package model

import "time"

type Memory struct {
	ID          int64      `db:"id"`
	UserID      int64      `db:"user_id"`
	PlaceID     int64      `db:"place_id"`
	LocationID  int64      `db:"location_id"`
	Title       string     `db:"title"`
	Content     string     `db:"content"`
	PictureDate time.Time  `db:"picture_date"`
	MainPicture *string    `db:"main_picture"` // filename or URL, NULL until uploaded
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   *time.Time `db:"updated_at"`
}

func (m *Memory) HasMainPicture() bool {
	return m.MainPicture != nil && *m.MainPicture != ""
}

func (m *Memory) OwnedBy(user *User) bool {
	return user != nil && m.UserID == user.ID
}

// MemoryDetail is a memory with the records it references, as exposed by the API.
type MemoryDetail struct {
	Memory   *Memory
	User     *User
	Place    *Place
	Location *Location
	Pictures []*Picture

	// Computed (not in database)
	MainPictureURL string
}
