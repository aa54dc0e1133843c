package users

import (
	"context"
	"errors"
	"strings"
)

// Sentinel errors returned by Store implementations. The auth service maps
// these to API errors; it never inspects storage-specific error values.
var (
	// ErrDuplicateEmail is returned by Create when a user with the same
	// normalized email already exists.
	ErrDuplicateEmail = errors.New("email already exists")
	// ErrNotFound is returned by lookups when no user matches.
	ErrNotFound = errors.New("user not found")
)

// Store is the credential store contract. Implementations must enforce email
// uniqueness under case-insensitive comparison: a race between two Create
// calls for the same normalized email yields exactly one success and one
// ErrDuplicateEmail.
type Store interface {
	// Create persists a new user and returns the created record without the
	// password hash. The insert is atomic: either the row exists afterwards
	// or it does not.
	Create(ctx context.Context, email, passwordHash string) (*User, error)
	// FindByEmail looks up a user by normalized email. The returned record
	// includes the password hash, which the caller needs for verification.
	FindByEmail(ctx context.Context, email string) (*User, error)
	// FindByID looks up a user by id. The returned record excludes the
	// password hash.
	FindByID(ctx context.Context, id string) (*User, error)
}

// NormalizeEmail lower-cases and trims an email so comparisons are
// case-insensitive. All Store implementations apply it before insert and
// lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
