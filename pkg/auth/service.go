// Package auth registers and authenticates users and issues their bearer tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/chris/store-payments/pkg/models"
	"github.com/chris/store-payments/pkg/storage"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned when the email or password does not match.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrInvalidInput is returned when registration data is incomplete.
var ErrInvalidInput = errors.New("invalid registration data")

const minPasswordLength = 6

// Service implements registration and login.
type Service struct {
	store  storage.UserStore
	tokens *Tokens
	cost   int
}

// NewService creates a new Service.
func NewService(store storage.UserStore, tokens *Tokens) *Service {
	return &Service{store: store, tokens: tokens, cost: bcrypt.DefaultCost}
}

// Registration is the input to Register.
type Registration struct {
	Name     string
	Email    string
	Password string
	Phone    string
}

// Register creates the account and its wallet and returns a fresh token.
func (s *Service) Register(ctx context.Context, reg Registration) (*models.User, string, error) {
	reg.Name = strings.TrimSpace(reg.Name)
	reg.Email = strings.ToLower(strings.TrimSpace(reg.Email))
	if reg.Name == "" || reg.Email == "" {
		return nil, "", fmt.Errorf("%w: name and email are required", ErrInvalidInput)
	}
	if len(reg.Password) < minPasswordLength {
		return nil, "", fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), s.cost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, &models.User{
		Name:         reg.Name,
		Email:        reg.Email,
		Phone:        reg.Phone,
		PasswordHash: string(hash),
	})
	if err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login checks the credentials and returns a fresh token.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.store.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Profile returns the user behind a verified token.
func (s *Service) Profile(ctx context.Context, userID string) (*models.User, error) {
	return s.store.GetUser(ctx, userID)
}
