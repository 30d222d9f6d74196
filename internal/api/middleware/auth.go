package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/kindred-health/kindred/internal/api"
	"github.com/kindred-health/kindred/internal/domain"
)

// AdminAuth guards knowledge-management routes with a static bearer token.
// When no token is configured every request is rejected.
func AdminAuth(adminToken string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if adminToken == "" {
				api.Error(w, http.StatusUnauthorized, "admin access is not configured")
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				api.Error(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			if !strings.HasPrefix(authHeader, "Bearer ") {
				api.Error(w, http.StatusUnauthorized, "invalid authorization format")
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")
			if subtle.ConstantTimeCompare([]byte(token), []byte(adminToken)) != 1 {
				api.HandleError(w, domain.ErrInvalidAdminToken)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
