package repository

import (
	"context"
	"database/sql"
	"errors"

	"task-forge/backend/internal/db"
	"task-forge/backend/internal/user/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a user repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the user for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const q = `SELECT id, email, password_hash, bio, created_at FROM users WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, q, id))
}

// GetByEmail returns the user with the given email, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const q = `SELECT id, email, password_hash, bio, created_at FROM users WHERE email = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, q, email))
}

// Create persists the user to the database. The user must have ID set; it is
// not assigned by this method. A duplicate email returns db.ErrUniqueViolation.
func (r *PostgresRepository) Create(ctx context.Context, u *domain.User) error {
	const q = `INSERT INTO users (id, email, password_hash, bio, created_at) VALUES ($1, $2, $3, $4, $5)`
	bio := sql.NullString{String: u.Bio, Valid: u.Bio != ""}
	_, err := r.db.ExecContext(ctx, q, u.ID, u.Email, u.PasswordHash, bio, u.CreatedAt)
	return db.MapError(err)
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*domain.User, error) {
	var u domain.User
	var bio sql.NullString
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &bio, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if bio.Valid {
		u.Bio = bio.String
	}
	return &u, nil
}
