package auth

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/juku001/SellazEngine/internal/shared"
)

// ErrInvalidCredentials indicates login failure.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// Service wraps authentication business rules.
type Service struct {
	repo   Repository
	tokens *TokenStore
}

// NewService constructs a new Service.
func NewService(repo Repository, tokens *TokenStore) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// Login validates email/password credentials and issues a bearer token.
func (s *Service) Login(ctx context.Context, email, password string) (shared.Principal, string, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return shared.Principal{}, "", ErrInvalidCredentials
	}
	if !user.IsActive {
		return shared.Principal{}, "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return shared.Principal{}, "", ErrInvalidCredentials
	}
	principal := user.Principal()
	token, err := s.tokens.Issue(ctx, principal)
	if err != nil {
		return shared.Principal{}, "", err
	}
	return principal, token, nil
}

// Logout revokes the bearer token.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.tokens.Revoke(ctx, token)
}
