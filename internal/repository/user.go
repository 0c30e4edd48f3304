package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/osouvenir/souvenirs/internal/model"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	ByID(ctx context.Context, id int64) (*model.User, error)
	ByEmail(ctx context.Context, email string) (*model.User, error)
	Users(ctx context.Context) ([]*model.User, error)
}

type userRepository struct {
	q sqlx.ExtContext
}

func NewUserRepository(q sqlx.ExtContext) UserRepository {
	return &userRepository{q: q}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	query := `INSERT INTO users (email, firstname, lastname, roles, password_hash, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`

	err := r.q.QueryRowxContext(ctx, query,
		user.Email,
		user.Firstname,
		user.Lastname,
		user.Roles,
		user.PasswordHash,
		user.CreatedAt,
	).Scan(&user.ID)
	if err != nil {
		// Check for unique constraint violation (works for both SQLite and PostgreSQL)
		errStr := err.Error()
		if strings.Contains(errStr, "UNIQUE constraint failed") || strings.Contains(errStr, "duplicate key value") {
			return ErrDuplicateEmail
		}
		return err
	}

	return nil
}

func (r *userRepository) ByID(ctx context.Context, id int64) (*model.User, error) {
	user := &model.User{}
	query := `SELECT * FROM users WHERE id = $1`

	err := sqlx.GetContext(ctx, r.q, user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (r *userRepository) ByEmail(ctx context.Context, email string) (*model.User, error) {
	user := &model.User{}
	query := `SELECT * FROM users WHERE email = $1`

	err := sqlx.GetContext(ctx, r.q, user, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (r *userRepository) Users(ctx context.Context) ([]*model.User, error) {
	var users []*model.User
	query := `SELECT * FROM users ORDER BY id`

	err := sqlx.SelectContext(ctx, r.q, &users, query)
	return users, err
}
