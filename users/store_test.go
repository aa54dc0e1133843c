package users

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestNormalizeEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"User@Example.COM", "user@example.com"},
		{"  padded@x.com ", "padded@x.com"},
		{"already@x.com", "already@x.com"},
		{"MiXeD@CaSe.Org", "mixed@case.org"},
	}

	for _, tt := range tests {
		if got := NormalizeEmail(tt.in); got != tt.want {
			t.Errorf("NormalizeEmail(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	dup := &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "users_email_key"}
	if !isUniqueViolation(dup) {
		t.Fatal("23505 must be recognized as a unique violation")
	}

	// Recognition must survive wrapping.
	if !isUniqueViolation(fmt.Errorf("insert: %w", dup)) {
		t.Fatal("wrapped 23505 must still be recognized")
	}

	if isUniqueViolation(&pgconn.PgError{Code: "42P01"}) {
		t.Fatal("an unrelated pg error code is not a unique violation")
	}
	if isUniqueViolation(errors.New("plain error")) {
		t.Fatal("a non-pg error is not a unique violation")
	}
	if isUniqueViolation(nil) {
		t.Fatal("nil is not a unique violation")
	}
}

func TestIsInvalidUUID(t *testing.T) {
	t.Parallel()

	bad := &pgconn.PgError{Code: pgInvalidTextRepresentation}
	if !isInvalidUUID(bad) {
		t.Fatal("22P02 must be recognized as an invalid uuid cast")
	}
	if isInvalidUUID(&pgconn.PgError{Code: pgUniqueViolation}) {
		t.Fatal("a unique violation is not an invalid uuid cast")
	}
	if isInvalidUUID(errors.New("plain error")) {
		t.Fatal("a non-pg error is not an invalid uuid cast")
	}
}
