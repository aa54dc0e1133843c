// Package auth implements authentication: user registration, login, token
// issuance and verification, and the current-user lookup. The service holds
// no state across requests beyond its injected collaborators.
package auth

import (
	"context"
	"errors"
	"log"

	"github.com/user/authd-go/apperror"
	"github.com/user/authd-go/users"
)

// Service orchestrates the credential store, password hasher and token
// issuer. All collaborators are injected at construction so the service is
// testable with substitutable implementations; nothing is read from ambient
// globals.
type Service struct {
	store  users.Store
	hasher PasswordHasher
	tokens *TokenIssuer
}

// NewService creates a new auth Service.
func NewService(store users.Store, hasher PasswordHasher, tokens *TokenIssuer) *Service {
	return &Service{
		store:  store,
		hasher: hasher,
		tokens: tokens,
	}
}

// Register creates a new user and issues a token for it.
//
// Validation errors are returned before any storage write. A uniqueness
// violation surfaces as email_in_use; the store guarantees that a race
// between two registrations of the same email produces at most one success.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, apperror.NewMissingFieldsError("email and password are required")
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperror.NewInternalError("failed to hash password", err)
	}

	user, err := s.store.Create(ctx, req.Email, passwordHash)
	if err != nil {
		if errors.Is(err, users.ErrDuplicateEmail) {
			return nil, apperror.NewEmailInUseError()
		}
		return nil, apperror.NewDatabaseError("failed to create user", err)
	}

	return s.respondWithToken(user)
}

// Login verifies credentials and issues a token.
//
// An unknown email and a wrong password return the same error so callers
// cannot learn which emails are registered.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, apperror.NewMissingFieldsError("email and password are required")
	}

	user, err := s.store.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, apperror.NewInvalidCredentialsError()
		}
		log.Printf("login: store lookup failed: %v", err)
		return nil, apperror.NewDatabaseError("failed to get user", err)
	}

	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		return nil, apperror.NewInvalidCredentialsError()
	}

	return s.respondWithToken(user)
}

// Me returns the current user identified by the verified token's subject.
// The token was already verified by the middleware; a missing user here means
// it vanished after issuance, reported as not_found.
func (s *Service) Me(ctx context.Context, userID string) (*MeResponse, error) {
	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, apperror.NewNotFoundError("user not found")
		}
		return nil, apperror.NewDatabaseError("failed to get user", err)
	}

	return &MeResponse{
		User: MeUser{
			ID:        user.ID,
			Email:     user.Email,
			CreatedAt: user.CreatedAt,
		},
	}, nil
}

func (s *Service) respondWithToken(user *users.User) (*AuthResponse, error) {
	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, apperror.NewInternalError("failed to issue token", err)
	}
	return &AuthResponse{
		Token: token,
		User:  UserPayload{ID: user.ID, Email: user.Email},
	}, nil
}
