package db

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// ErrUniqueViolation is returned by repositories when an insert breaks a unique
// constraint (duplicate email, duplicate refresh token). The constraint is
// enforced by Postgres at write time, so concurrent duplicates cannot race past
// a prior read.
var ErrUniqueViolation = errors.New("unique constraint violation")

// pgUniqueViolation is the Postgres error code for unique_violation.
const pgUniqueViolation = "23505"

// Open opens a Postgres connection using the given DSN. Caller must call Close when done.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// MapError translates driver-level errors to package sentinels. Unique
// constraint violations become ErrUniqueViolation; everything else passes
// through unchanged.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return ErrUniqueViolation
	}
	return err
}
