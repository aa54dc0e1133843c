// Data transfer objects for the auth API: request payloads decoded from JSON
// bodies and the response shapes the endpoints return.
package auth

import "time"

// RegisterRequest represents the registration request payload.
type RegisterRequest struct {
	Email    string `json:"email" example:"user@example.com"`
	Password string `json:"password" example:"strongpassword123"`
}

// LoginRequest represents the login request payload.
type LoginRequest struct {
	Email    string `json:"email" example:"user@example.com"`
	Password string `json:"password" example:"strongpassword123"`
}

// UserPayload is the public view of a user embedded in auth responses.
type UserPayload struct {
	ID    string `json:"id" example:"7f6c1b1e-0a62-4f6b-b4a5-0f6f4f1c9f3d"`
	Email string `json:"email" example:"user@example.com"`
}

// AuthResponse is returned by register and login: a bearer token plus the
// public view of the user it was issued for.
type AuthResponse struct {
	Token string      `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	User  UserPayload `json:"user"`
}

// MeUser is the public view of the current user, including the creation
// timestamp. The password hash is never part of any response.
type MeUser struct {
	ID        string    `json:"id" example:"7f6c1b1e-0a62-4f6b-b4a5-0f6f4f1c9f3d"`
	Email     string    `json:"email" example:"user@example.com"`
	CreatedAt time.Time `json:"created_at" example:"2023-01-15T10:30:00Z"`
}

// MeResponse is returned by the current-user endpoint.
type MeResponse struct {
	User MeUser `json:"user"`
}
