package domain

import "time"

// Session binds a refresh token to a user and an expiry. One row is created
// per login; a row past ExpiresAt is invalid and a fresh login is required.
// Rows are never rotated or deleted (no logout endpoint exists).
type Session struct {
	ID           string
	UserID       string
	RefreshToken string // unique; lookup key for the refresh flow
	ExpiresAt    time.Time
	CreatedAt    time.Time
}

// Expired reports whether the session is past its expiry at the given time.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
