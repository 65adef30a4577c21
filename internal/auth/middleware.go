package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/juku001/SellazEngine/internal/platform/httpx"
	"github.com/juku001/SellazEngine/internal/shared"
)

// Middleware wires bearer-token authentication and capability checks.
type Middleware struct {
	Tokens *TokenStore
	Logger *slog.Logger
}

// RequireAuth resolves the bearer token and stores the principal in context.
func (m Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := BearerToken(r)
		principal, err := m.Tokens.Resolve(r.Context(), token)
		if err != nil {
			if !errors.Is(err, ErrTokenInvalid) {
				if m.Logger != nil {
					m.Logger.Error("resolve token", slog.Any("error", err))
				}
				httpx.Fail(w, http.StatusInternalServerError, "Something went wrong.", nil)
				return
			}
			httpx.Fail(w, http.StatusUnauthorized, "Unauthenticated.", nil)
			return
		}
		ctx := shared.ContextWithPrincipal(r.Context(), principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Require gates a route group on a capability, evaluated once before
// dispatching into the workflow.
func (m Middleware) Require(cap shared.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := shared.PrincipalFromContext(r.Context())
			if !ok {
				httpx.Fail(w, http.StatusUnauthorized, "Unauthenticated.", nil)
				return
			}
			if !principal.Allowed(cap) {
				httpx.Fail(w, http.StatusForbidden, "Forbidden.", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
