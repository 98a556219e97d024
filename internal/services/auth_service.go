package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fathima-sithara/cloud-media-platform/internal/apperr"
	"github.com/fathima-sithara/cloud-media-platform/internal/auth"
	"github.com/fathima-sithara/cloud-media-platform/internal/models"
	"github.com/fathima-sithara/cloud-media-platform/internal/repository"
)

// AuthResult is what a successful register/login hands back to the handler.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type AuthService struct {
	users  repository.UserRepository
	tokens *auth.TokenManager
}

func NewAuthService(users repository.UserRepository, tokens *auth.TokenManager) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// Register creates an account and signs the first token. Username and email
// uniqueness is checked by lookup before insert; the unique indexes catch the
// race and surface it as the same conflict.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if len(username) < 3 {
		return nil, fmt.Errorf("%w: username must be at least 3 characters", apperr.ErrValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: invalid email address", apperr.ErrValidation)
	}
	if len(password) < 6 {
		return nil, fmt.Errorf("%w: password must be at least 6 characters", apperr.ErrValidation)
	}

	if err := s.ensureFree(ctx, func(c context.Context) error {
		_, err := s.users.FindByEmail(c, email)
		return err
	}, "email"); err != nil {
		return nil, err
	}
	if err := s.ensureFree(ctx, func(c context.Context) error {
		_, err := s.users.FindByUsername(c, username)
		return err
	}, "username"); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return nil, fmt.Errorf("%w: username or email already registered", apperr.ErrConflict)
		}
		return nil, fmt.Errorf("%w: create user: %v", apperr.ErrExternal, err)
	}

	return s.issue(user)
}

// Login verifies credentials and signs a token. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, fmt.Errorf("%w: invalid email or password", apperr.ErrUnauthorized)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: find user: %v", apperr.ErrExternal, err)
	}
	if !auth.VerifyPassword(user.PasswordHash, password) {
		return nil, fmt.Errorf("%w: invalid email or password", apperr.ErrUnauthorized)
	}
	return s.issue(user)
}

func (s *AuthService) ensureFree(ctx context.Context, lookup func(context.Context) error, field string) error {
	err := lookup(ctx)
	if err == nil {
		return fmt.Errorf("%w: %s already registered", apperr.ErrConflict, field)
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return fmt.Errorf("%w: lookup %s: %v", apperr.ErrExternal, field, err)
	}
	return nil
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResult{Token: token, User: user}, nil
}
