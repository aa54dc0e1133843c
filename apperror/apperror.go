// Package apperror defines a centralized system for application-specific errors.
// Every error that crosses the HTTP boundary is an *AppError carrying a
// machine-readable wire code and the HTTP status it maps to, so handlers never
// improvise status codes and internal error details never leak to clients.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType defines the category of an application error.
type ErrorType int

const (
	// UnknownError is for unspecified errors
	UnknownError ErrorType = iota
	// ValidationError represents an input validation error (missing fields etc.)
	ValidationError
	// EmailInUseError represents a registration attempt with an already-taken email
	EmailInUseError
	// AuthError represents an authentication failure (bad credentials, bad token)
	AuthError
	// NotFoundError represents a resource not found error
	NotFoundError
	// DatabaseError represents an error originating from the database
	DatabaseError
	// ConfigError represents an error related to application configuration
	ConfigError
	// MigrationError represents an error during database migrations
	MigrationError
	// InternalError represents a generic internal server error
	InternalError
)

// Wire codes returned in JSON error bodies. These are part of the public API
// contract and must stay stable.
const (
	CodeMissingFields      = "missing_fields"
	CodeEmailInUse         = "email_in_use"
	CodeInvalidCredentials = "invalid_credentials"
	CodeMissingToken       = "missing_token"
	CodeInvalidToken       = "invalid_token"
	CodeNotFound           = "not_found"
	CodeServerError        = "server_error"
)

// AppError is the application's error type. It wraps an optional underlying
// error for debugging while exposing only Code to API clients.
type AppError struct {
	Type    ErrorType
	Code    string // machine-readable code sent on the wire
	Message string // human-readable detail, logged but never sent
	Err     error  // underlying error
}

// Error returns the string representation of the error, satisfying the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error, supporting errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status code appropriate for the error type.
func (e *AppError) StatusCode() int {
	switch e.Type {
	case ValidationError:
		return http.StatusBadRequest
	case EmailInUseError:
		// The API contract uses 400 here, not 409.
		return http.StatusBadRequest
	case AuthError:
		return http.StatusUnauthorized
	case NotFoundError:
		return http.StatusNotFound
	case DatabaseError, ConfigError, MigrationError, InternalError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// NewAppError creates a new AppError. Prefer the specific constructors below;
// this generic factory exists for cases where the type is determined dynamically.
func NewAppError(errType ErrorType, code, message string, underlyingError error) *AppError {
	return &AppError{
		Type:    errType,
		Code:    code,
		Message: message,
		Err:     underlyingError,
	}
}

// NewMissingFieldsError reports absent or empty required request fields.
func NewMissingFieldsError(message string) *AppError {
	return NewAppError(ValidationError, CodeMissingFields, message, nil)
}

// NewEmailInUseError reports a registration conflict on the email key.
func NewEmailInUseError() *AppError {
	return NewAppError(EmailInUseError, CodeEmailInUse, "email already in use", nil)
}

// NewInvalidCredentialsError reports a failed login. It deliberately covers
// both "no such user" and "wrong password" so callers cannot probe which
// emails are registered.
func NewInvalidCredentialsError() *AppError {
	return NewAppError(AuthError, CodeInvalidCredentials, "invalid credentials", nil)
}

// NewMissingTokenError reports an absent or malformed Authorization header.
func NewMissingTokenError() *AppError {
	return NewAppError(AuthError, CodeMissingToken, "missing bearer token", nil)
}

// NewInvalidTokenError reports a token that failed verification for any
// reason (bad signature, malformed, expired) without differentiating.
func NewInvalidTokenError(underlyingError error) *AppError {
	return NewAppError(AuthError, CodeInvalidToken, "invalid token", underlyingError)
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(message string) *AppError {
	return NewAppError(NotFoundError, CodeNotFound, message, nil)
}

// NewDatabaseError creates a new DatabaseError.
func NewDatabaseError(message string, underlyingError error) *AppError {
	return NewAppError(DatabaseError, CodeServerError, message, underlyingError)
}

// NewConfigError creates a new ConfigError.
func NewConfigError(message string, underlyingError error) *AppError {
	return NewAppError(ConfigError, CodeServerError, message, underlyingError)
}

// NewMigrationError creates a new MigrationError.
func NewMigrationError(message string, underlyingError error) *AppError {
	return NewAppError(MigrationError, CodeServerError, message, underlyingError)
}

// NewInternalError creates a new InternalError.
func NewInternalError(message string, underlyingError error) *AppError {
	return NewAppError(InternalError, CodeServerError, message, underlyingError)
}

// ErrorResponse represents the error payload returned to API clients.
type ErrorResponse struct {
	Error string `json:"error" example:"invalid_credentials"`
}

// ToResponse converts an AppError to an ErrorResponse suitable for API
// responses. Only the wire code is exposed, never Message or Err.
func (e *AppError) ToResponse() ErrorResponse {
	return ErrorResponse{Error: e.Code}
}

// FromError attempts to convert a generic error to an *AppError.
// It returns the *AppError and true if successful, otherwise nil and false.
func FromError(err error) (*AppError, bool) {
	if err == nil {
		return nil, false
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// IsNotFound checks if an error is a NotFound error.
func IsNotFound(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == NotFoundError
}

// IsAuthError checks if an error is an authentication failure.
func IsAuthError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == AuthError
}

// IsValidationError checks if an error is a validation error.
func IsValidationError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == ValidationError
}

// IsEmailInUse checks if an error is an email conflict.
func IsEmailInUse(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == EmailInUseError
}
