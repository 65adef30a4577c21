package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/juku001/SellazEngine/internal/platform/httpx"
	"github.com/juku001/SellazEngine/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: shared.NewValidator(),
	}
}

// MountPublicRoutes registers routes reachable without a token.
func (h *Handler) MountPublicRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
}

// MountRoutes registers routes behind the auth middleware.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/logout", h.handleLogout)
	r.Get("/is_auth", h.handleIsAuth)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

var loginMessages = map[string]string{
	"email.required":    "Please provide your email address.",
	"email.email":       "Please provide a valid email address.",
	"password.required": "Please provide your password.",
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusUnprocessableEntity, "Validation failed.", shared.FieldErrors{"request": {"Malformed request body."}})
		return
	}
	if verr := shared.ValidateStruct(h.validator, req, loginMessages); verr != nil {
		httpx.Fail(w, verr.Code, verr.Message, verr.Fields)
		return
	}

	principal, token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			httpx.Fail(w, http.StatusUnauthorized, "Invalid email or password.", nil)
			return
		}
		h.logger.Error("login", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "Something went wrong.", nil)
		return
	}

	httpx.Success(w, "Login successful.", map[string]any{
		"token": token,
		"user":  principal,
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context(), BearerToken(r)); err != nil {
		h.logger.Error("logout", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "Something went wrong.", nil)
		return
	}
	httpx.Success(w, "Logged out successfully.", nil)
}

func (h *Handler) handleIsAuth(w http.ResponseWriter, r *http.Request) {
	principal, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Fail(w, http.StatusUnauthorized, "Unauthenticated.", nil)
		return
	}
	httpx.Success(w, "Authenticated.", principal)
}
