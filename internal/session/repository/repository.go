package repository

import (
	"context"

	"task-forge/backend/internal/session/domain"
)

// Repository defines persistence for sessions.
type Repository interface {
	GetByRefreshToken(ctx context.Context, refreshToken string) (*domain.Session, error)
	// Create persists the session. A duplicate refresh token surfaces as
	// db.ErrUniqueViolation, enforced atomically by the store.
	Create(ctx context.Context, s *domain.Session) error
}
