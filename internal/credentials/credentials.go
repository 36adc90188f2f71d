// Package credentials is the credential store: it registers accounts with
// bcrypt-hashed passwords and answers lookups for the auth service.
package credentials

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/patric-chuzhbe/bookcatalog/internal/models"
	"github.com/patric-chuzhbe/bookcatalog/internal/user"
	"github.com/patric-chuzhbe/bookcatalog/internal/validation"
)

type userKeeper interface {
	CreateUser(ctx context.Context, username, passwordHash string) (*user.User, error)
	GetUserByUsername(ctx context.Context, username string) (*user.User, error)
	GetUserByID(ctx context.Context, userID string) (*user.User, error)
}

// Store wraps a user keeper with password hashing.
type Store struct {
	db       userKeeper
	hashCost int
	validate *validation.Validator
}

// New returns a Store hashing with the given bcrypt cost.
func New(db userKeeper, hashCost int) *Store {
	return &Store{
		db:       db,
		hashCost: hashCost,
		validate: validation.New(nil),
	}
}

// Register validates presence and length, hashes the password and stores
// the account. A taken username yields models.ErrDuplicateUsername.
func (s *Store) Register(ctx context.Context, username, password string) (*user.User, error) {
	if err := s.validate.Struct(models.Credentials{Username: username, Password: password}); err != nil {
		return nil, err
	}

	existing, err := s.db.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.ErrDuplicateUsername
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("in internal/credentials/credentials.go/Register(): error while `bcrypt.GenerateFromPassword()` calling: %w", err)
	}

	// The storage repeats the uniqueness check under its lock, so a
	// concurrent registration of the same name still fails here.
	return s.db.CreateUser(ctx, username, string(hash))
}

// FindByUsername returns nil when the username is unknown.
func (s *Store) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	return s.db.GetUserByUsername(ctx, username)
}

// FindByID returns nil when the id is unknown.
func (s *Store) FindByID(ctx context.Context, userID string) (*user.User, error) {
	return s.db.GetUserByID(ctx, userID)
}

// VerifyPassword reports whether candidate matches the stored hash.
func (s *Store) VerifyPassword(usr *user.User, candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(usr.PasswordHash), []byte(candidate)) == nil
}
