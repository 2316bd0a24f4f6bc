package domain

import (
	"errors"
	"time"
)

// User is the core user entity. Created on register and immutable thereafter;
// no update or delete paths are exposed.
type User struct {
	ID           string
	Email        string
	PasswordHash string // never serialized in API responses
	Bio          string // optional
	CreatedAt    time.Time
}

// Validate validates the user for persistence. Returns an error describing the
// first validation failure.
func (u *User) Validate() error {
	if u.ID == "" {
		return errors.New("id is required")
	}
	if u.Email == "" {
		return errors.New("email is required")
	}
	if u.PasswordHash == "" {
		return errors.New("password hash is required")
	}
	return nil
}
