package repository

import (
	"context"
	"database/sql"
	"errors"

	"task-forge/backend/internal/db"
	"task-forge/backend/internal/session/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a session repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByRefreshToken returns the session for the given refresh token value, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByRefreshToken(ctx context.Context, refreshToken string) (*domain.Session, error) {
	const q = `SELECT id, user_id, refresh_token, expires_at, created_at FROM sessions WHERE refresh_token = $1`
	var s domain.Session
	err := r.db.QueryRowContext(ctx, q, refreshToken).
		Scan(&s.ID, &s.UserID, &s.RefreshToken, &s.ExpiresAt, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// Create persists the session to the database. The session must have ID set.
// A duplicate refresh token returns db.ErrUniqueViolation.
func (r *PostgresRepository) Create(ctx context.Context, s *domain.Session) error {
	const q = `INSERT INTO sessions (id, user_id, refresh_token, expires_at, created_at) VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, q, s.ID, s.UserID, s.RefreshToken, s.ExpiresAt, s.CreatedAt)
	return db.MapError(err)
}
