package users

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgUniqueViolation is the PostgreSQL error code for unique constraint violations.
const pgUniqueViolation = "23505"

// defaultQueryTimeout bounds every store query when the caller's context
// carries no earlier deadline, so no store operation blocks indefinitely.
const defaultQueryTimeout = 5 * time.Second

// PostgresStore is the pgx-backed Store implementation.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore on the shared connection pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// withTimeout derives a bounded context for a single query.
func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, defaultQueryTimeout)
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation. Driver error inspection stays inside this package.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// Create inserts a new user row. The id and timestamps are generated
// server-side; a single INSERT keeps the operation atomic.
func (s *PostgresStore) Create(ctx context.Context, email, passwordHash string) (*User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `INSERT INTO users (email, password_hash)
              VALUES ($1, $2)
              RETURNING id::text, email, created_at, updated_at`

	user := &User{}
	err := s.pool.QueryRow(ctx, query, NormalizeEmail(email), passwordHash).
		Scan(&user.ID, &user.Email, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return user, nil
}

// FindByEmail returns the full record, including the password hash, for the
// user with the given normalized email.
func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `SELECT id::text, email, password_hash, created_at, updated_at
              FROM users
              WHERE email = $1`

	user := &User{}
	err := s.pool.QueryRow(ctx, query, NormalizeEmail(email)).
		Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// FindByID returns the record, without the password hash, for the user with
// the given id. A malformed id (the uuid cast fails) reports ErrNotFound
// rather than a server error: such an id matches no user.
func (s *PostgresStore) FindByID(ctx context.Context, id string) (*User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `SELECT id::text, email, created_at, updated_at
              FROM users
              WHERE id = $1::uuid`

	user := &User{}
	err := s.pool.QueryRow(ctx, query, id).
		Scan(&user.ID, &user.Email, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// pgInvalidTextRepresentation is raised when a value cannot be cast, e.g. a
// non-UUID id string.
const pgInvalidTextRepresentation = "22P02"

func isInvalidUUID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgInvalidTextRepresentation
}
