package auth

import (
	"encoding/json"
	"net/http"

	"github.com/user/authd-go/apperror"
)

// Handlers exposes the auth Service over HTTP. It holds no state of its own
// beyond the service reference.
type Handlers struct {
	service *Service
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// HandleRegister godoc
// @Summary Register a new user
// @Description Creates a user account and returns a bearer token for it.
// @Tags Auth
// @Accept json
// @Produce json
// @Param registerBody body auth.RegisterRequest true "Registration details"
// @Success 201 {object} auth.AuthResponse "User created"
// @Failure 400 {object} apperror.ErrorResponse "missing_fields or email_in_use"
// @Failure 500 {object} apperror.ErrorResponse "server_error"
// @Router /api/auth/register [post]
func (h *Handlers) HandleRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, r, apperror.NewMissingFieldsError("invalid request body"))
			return
		}
		defer r.Body.Close()

		resp, err := h.service.Register(r.Context(), req)
		if err != nil {
			WriteError(w, r, err)
			return
		}

		writeJSON(w, http.StatusCreated, resp)
	}
}

// HandleLogin godoc
// @Summary Log in
// @Description Verifies credentials and returns a bearer token.
// @Tags Auth
// @Accept json
// @Produce json
// @Param loginBody body auth.LoginRequest true "Login credentials"
// @Success 200 {object} auth.AuthResponse "Login successful"
// @Failure 400 {object} apperror.ErrorResponse "missing_fields"
// @Failure 401 {object} apperror.ErrorResponse "invalid_credentials"
// @Failure 500 {object} apperror.ErrorResponse "server_error"
// @Router /api/auth/login [post]
func (h *Handlers) HandleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, r, apperror.NewMissingFieldsError("invalid request body"))
			return
		}
		defer r.Body.Close()

		resp, err := h.service.Login(r.Context(), req)
		if err != nil {
			WriteError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

// HandleMe godoc
// @Summary Get the current user
// @Description Returns the user identified by the presented bearer token.
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} auth.MeResponse "Current user"
// @Failure 401 {object} apperror.ErrorResponse "missing_token or invalid_token"
// @Failure 404 {object} apperror.ErrorResponse "not_found"
// @Failure 500 {object} apperror.ErrorResponse "server_error"
// @Router /api/auth/me [get]
func (h *Handlers) HandleMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			// Only reachable if the route is wired without BearerMiddleware.
			WriteError(w, r, apperror.NewMissingTokenError())
			return
		}

		resp, err := h.service.Me(r.Context(), claims.Subject)
		if err != nil {
			WriteError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

// writeJSON serializes data to JSON and writes it with the given status.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
		}
	}
}

// WriteError writes a standardized error response. Errors that are not
// *apperror.AppError are wrapped as internal server errors so driver or
// library details never reach the client.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperror.FromError(err)
	if !ok {
		appErr = apperror.NewInternalError("an unexpected error occurred", err)
	}
	writeJSON(w, appErr.StatusCode(), appErr.ToResponse())
}
