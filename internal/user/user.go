// Package user defines the account record kept by the credential store.
package user

import "github.com/patric-chuzhbe/bookcatalog/internal/models"

// User represents a registered account.
type User struct {
	// ID is the sequential identifier assigned on registration.
	ID string

	// Username is unique and compared case-sensitively.
	Username string

	// PasswordHash is the bcrypt hash of the password, never exposed.
	PasswordHash string
}

// Public returns the API-facing view of the user.
func (u *User) Public() models.PublicUser {
	return models.PublicUser{
		ID:       u.ID,
		Username: u.Username,
	}
}
