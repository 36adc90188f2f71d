// Package models holds the book catalog data types shared between the
// storage, service, gateway and client layers, together with the error
// values that cross those layers.
package models

import "errors"

// Book is a single catalog record. UserID is the owner and never changes
// after creation.
type Book struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Author        string `json:"author"`
	PublishedYear int    `json:"publishedYear"`
	Genre         string `json:"genre"`
	UserID        string `json:"userId"`
}

// BookInput carries the mutable fields of a book.
type BookInput struct {
	Title         string `json:"title" validate:"required"`
	Author        string `json:"author" validate:"required"`
	PublishedYear int    `json:"publishedYear" validate:"min=0,notfuture"`
	Genre         string `json:"genre" validate:"required"`
}

// PublicUser is the user shape exposed over the API, without the hash.
type PublicUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token string     `json:"token"`
	User  PublicUser `json:"user"`
}

// Credentials is the register/login input.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

// HealthResponse is the fixed liveness payload.
type HealthResponse struct {
	Status string `json:"status"`
}

// InternalStatsResponse is served to the trusted subnet only.
type InternalStatsResponse struct {
	Books int64 `json:"books"`
	Users int64 `json:"users"`
}

// GraphQLRequest is the body accepted by the API endpoint.
type GraphQLRequest struct {
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables,omitempty"`
	OperationName string                 `json:"operationName,omitempty"`
}

// MinPasswordLength is shared by the server-side and client-side checks.
const MinPasswordLength = 6

var (
	ErrDuplicateUsername = errors.New("Username already exists")
	ErrUserNotFound      = errors.New("User not found")
	ErrInvalidPassword   = errors.New("Invalid password")
	ErrBookNotFound      = errors.New("Book not found")
	ErrNotAuthorized     = errors.New("Not authorized")
	ErrInvalidToken      = errors.New("invalid or expired token")
)
