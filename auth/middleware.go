package auth

import (
	"net/http"
	"strings"

	"github.com/user/authd-go/apperror"
)

// BearerMiddleware verifies the Authorization header and stores the verified
// claims in the request context for downstream handlers. A missing or
// malformed header yields missing_token; a header whose token fails
// verification for any reason yields invalid_token.
func BearerMiddleware(tokens *TokenIssuer) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				WriteError(w, r, apperror.NewMissingTokenError())
				return
			}

			// Expected format: "Bearer {token}".
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
				WriteError(w, r, apperror.NewMissingTokenError())
				return
			}

			claims, err := tokens.Verify(parts[1])
			if err != nil {
				WriteError(w, r, apperror.NewInvalidTokenError(err))
				return
			}

			ctx := NewContextWithClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
