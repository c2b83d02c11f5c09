// Package accounts is the credential store: registration and password
// verification on top of the users table.
package accounts

import (
	"context"
	"errors"
	"strings"

	"snapfeed/internal/db"
	"snapfeed/internal/models"
	"snapfeed/internal/security"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrWrongPassword      = errors.New("incorrect password")
	ErrDuplicateUsername  = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("username and password required")
)

type userDB interface {
	CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

type Service struct {
	db         userDB
	bcryptCost int
}

func NewService(database userDB, bcryptCost int) *Service {
	return &Service{db: database, bcryptCost: bcryptCost}
}

// Register hashes password and stores a new user.
func (s *Service) Register(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	hash, err := security.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user, err := s.db.CreateUser(ctx, username, hash)
	if err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return nil, ErrDuplicateUsername
		}
		return nil, err
	}
	return user, nil
}

// Login checks the credentials and returns the identity to bind a session to.
func (s *Service) Login(ctx context.Context, username, password string) (*models.Identity, error) {
	user, err := s.db.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if !security.ComparePasswords(user.PasswordHash, password) {
		return nil, ErrWrongPassword
	}

	return &models.Identity{UserID: user.ID, Username: user.Username}, nil
}

// Verify reports whether the credentials are valid.
func (s *Service) Verify(ctx context.Context, username, password string) (bool, error) {
	_, err := s.Login(ctx, username, password)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrWrongPassword):
		return false, nil
	default:
		return false, err
	}
}
