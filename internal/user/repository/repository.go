package repository

import (
	"context"

	"task-forge/backend/internal/user/domain"
)

// Repository defines persistence for users.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// Create persists the user. A duplicate email surfaces as
	// db.ErrUniqueViolation, enforced atomically by the store.
	Create(ctx context.Context, u *domain.User) error
}
