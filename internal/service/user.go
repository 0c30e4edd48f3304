package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/osouvenir/souvenirs/internal/model"
	"github.com/osouvenir/souvenirs/internal/repository"
	"github.com/osouvenir/souvenirs/internal/validation"
)

var ErrEmailAlreadyExists = errors.New("email already exists")

type UserInput struct {
	Email     string
	Firstname string
	Lastname  string
	Password  string
	Admin     bool
}

type UserService struct {
	userRepository repository.UserRepository
	authService    *AuthService
}

func NewUserService(userRepository repository.UserRepository, authService *AuthService) *UserService {
	return &UserService{
		userRepository: userRepository,
		authService:    authService,
	}
}

func (s *UserService) ByID(ctx context.Context, id int64) (*model.User, error) {
	return s.userRepository.ByID(ctx, id)
}

func (s *UserService) Users(ctx context.Context) ([]*model.User, error) {
	return s.userRepository.Users(ctx)
}

// Create registers a user with a bcrypt-hashed password.
func (s *UserService) Create(ctx context.Context, in UserInput) (*model.User, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))

	err := validation.ValidateEmail(email)
	if err != nil {
		return nil, invalidf("%v", err)
	}
	err = validation.ValidateName("firstname", in.Firstname)
	if err != nil {
		return nil, invalidf("%v", err)
	}
	err = validation.ValidateName("lastname", in.Lastname)
	if err != nil {
		return nil, invalidf("%v", err)
	}
	err = validation.ValidatePassword(in.Password)
	if err != nil {
		return nil, invalidf("%v", err)
	}

	hash, err := s.authService.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	roles := model.Roles{model.RoleUser}
	if in.Admin {
		roles = append(roles, model.RoleAdmin)
	}

	user := &model.User{
		Email:        email,
		Firstname:    strings.TrimSpace(in.Firstname),
		Lastname:     strings.TrimSpace(in.Lastname),
		Roles:        roles,
		PasswordHash: &hash,
		CreatedAt:    time.Now(),
	}

	err = s.userRepository.Create(ctx, user)
	if errors.Is(err, repository.ErrDuplicateEmail) {
		return nil, ErrEmailAlreadyExists
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user created", "user_id", user.ID, "email", user.Email, "admin", in.Admin)
	return user, nil
}
