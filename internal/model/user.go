package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"slices"
	"time"
)

const (
	RoleUser  = "ROLE_USER"
	RoleAdmin = "ROLE_ADMIN"
)

type User struct {
	ID           int64      `db:"id"`
	Email        string     `db:"email"`
	Firstname    string     `db:"firstname"`
	Lastname     string     `db:"lastname"`
	Roles        Roles      `db:"roles"`
	PasswordHash *string    `db:"password_hash"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    *time.Time `db:"updated_at"`
}

func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

func (u *User) IsAdmin() bool {
	return u.Roles.Has(RoleAdmin)
}

// Roles is stored as a JSON array. Every user implicitly holds ROLE_USER.
type Roles []string

func (r Roles) Has(role string) bool {
	return role == RoleUser || slices.Contains(r, role)
}

// All returns the stored roles plus the implicit ROLE_USER.
func (r Roles) All() []string {
	all := []string{}
	for _, role := range r {
		if role != RoleUser {
			all = append(all, role)
		}
	}
	return append(all, RoleUser)
}

func (r Roles) Value() (driver.Value, error) {
	if r == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(r))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (r *Roles) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*r = Roles{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("roles: unsupported type %T", src)
	}
	var roles []string
	err := json.Unmarshal(raw, &roles)
	if err != nil {
		return fmt.Errorf("roles: %w", err)
	}
	*r = roles
	return nil
}
