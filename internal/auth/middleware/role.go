package middleware

import (
	"net/http"
	"slices"

	"github.com/learnhub/backend/internal/auth/service"
)

// RoleMiddleware validates the JWT access token and checks that the caller has one of the allowed roles.
// With no roles given any authenticated caller is accepted.
func RoleMiddleware(tokenGenerator *service.TokenGenerator, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, `{"error":"authentication required"}`)
				return
			}

			principal, err := tokenGenerator.ValidateAccessToken(token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, `{"error":"invalid or expired token"}`)
				return
			}

			if len(roles) > 0 && !slices.Contains(roles, principal.Role) {
				writeError(w, http.StatusForbidden, `{"error":"insufficient permissions"}`)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}
