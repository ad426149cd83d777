package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gantt-planner-api/internal/auth"
	"gantt-planner-api/internal/models"
	"gantt-planner-api/internal/store"
)

var (
	ErrUsernameTaken   = errors.New("username already taken")
	ErrInvalidUserData = errors.New("username and a password of at least 6 characters are required")
)

// UserService registers users and logs them in.
type UserService struct {
	store  *store.Store
	tokens *auth.TokenManager
}

func NewUserService(st *store.Store, tokens *auth.TokenManager) *UserService {
	return &UserService{store: st, tokens: tokens}
}

// Register creates a user with a bcrypt-hashed password.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || len(password) < 6 {
		return nil, ErrInvalidUserData
	}
	if _, err := s.store.GetUserByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &models.User{Username: username, Email: strings.TrimSpace(email), Password: hash}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login checks the credentials and issues a token.
func (s *UserService) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	u, err := s.store.GetUserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, store.ErrNotFound) {
		return "", nil, auth.ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}
	if err := auth.CheckPassword(u.Password, password); err != nil {
		return "", nil, err
	}
	token, err := s.tokens.GenerateToken(u.ID, u.Username)
	if err != nil {
		return "", nil, fmt.Errorf("generate token: %w", err)
	}
	return token, u, nil
}

// Me returns the authenticated user.
func (s *UserService) Me(ctx context.Context, userID uint) (*models.User, error) {
	return s.store.GetUser(ctx, userID)
}
