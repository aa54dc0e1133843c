// Package users implements the credential store: persistence of user records
// keyed by normalized email. It is the only package that talks to the users
// table; callers see typed sentinel errors, never driver error codes.
package users

import "time"

// User represents a stored user account.
//
// PasswordHash is only populated by FindByEmail, which the auth service needs
// for credential verification; Create and FindByID leave it empty. The json
// tag keeps it out of any serialized response regardless.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"-"`
}
