package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"connectly/auth"
	"connectly/database"
	"connectly/helper"
	"connectly/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=30"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UserService struct {
	users UserStore
}

func NewUserService(users UserStore) *UserService {
	return &UserService{users: users}
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Username = strings.TrimSpace(in.Username)
	if err := helper.Validate(in); err != nil {
		return models.User{}, err
	}

	hashed, err := auth.HashPassword(in.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	user := models.User{
		ID:         primitive.NewObjectID(),
		Username:   in.Username,
		Email:      in.Email,
		Password:   hashed,
		Visibility: models.VisibilityPublic,
		CreatedAt:  now(),
	}
	err = s.users.Create(ctx, &user)
	if errors.Is(err, database.ErrDuplicateKey) {
		return models.User{}, helper.InvalidRequest("This email is already in use")
	}
	if err != nil {
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Authenticate returns the user whose credentials match. Unknown email and
// wrong password fail the same way.
func (s *UserService) Authenticate(ctx context.Context, in LoginInput) (models.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := helper.Validate(in); err != nil {
		return models.User{}, err
	}
	user, err := s.users.FindByEmail(ctx, in.Email)
	if errors.Is(err, database.ErrNotFound) {
		return models.User{}, helper.Unauthorized("Invalid email or password")
	}
	if err != nil {
		return models.User{}, fmt.Errorf("find user: %w", err)
	}
	if !auth.CheckPassword(user.Password, in.Password) {
		return models.User{}, helper.Unauthorized("Invalid email or password")
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return models.User{}, helper.NotFound("User not found")
	}
	if err != nil {
		return models.User{}, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func (s *UserService) Profile(ctx context.Context, id primitive.ObjectID) (models.PublicProfile, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return models.PublicProfile{}, err
	}
	return user.Public(), nil
}
