package httpapi

import (
	"net/http"
	"strings"

	"github.com/offroadmga/club-manager-api/internal/domain"
)

// TokenValidator verifies a bearer token and returns the identity it was
// issued for.
type TokenValidator interface {
	ValidateToken(token string) (domain.Identity, error)
}

// NewAuthMiddleware enforces Authorization: Bearer <token> and stores the
// authenticated identity in request context.
func NewAuthMiddleware(v TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := r.Header.Get("Authorization")
			if authz == "" {
				writeAPIError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing Authorization header", nil)
				return
			}
			const prefix = "Bearer "
			if !strings.HasPrefix(authz, prefix) {
				writeAPIError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "malformed Authorization header", nil)
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, prefix))
			if raw == "" {
				writeAPIError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token", nil)
				return
			}

			ident, err := v.ValidateToken(raw)
			if err != nil {
				writeAPIError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token", nil)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), ident)))
		})
	}
}
