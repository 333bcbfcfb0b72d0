package middleware

import (
	"net/http"

	"go.uber.org/zap"
)

// RequireAdmin gates a route subtree behind the administrator role. The
// orchestrators still check the principal themselves; this keeps
// unauthorized requests out of the controllers entirely.
func RequireAdmin(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := GetPrincipal(r.Context())
			if !ok {
				logger.Warn("Principal not found in context")
				respondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			if !principal.IsAdmin() {
				logger.Warn("Non-admin user attempted to access admin endpoint",
					zap.Int64("user_id", principal.UserID),
					zap.String("role", principal.Role),
				)
				respondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole gates a route subtree behind any of the given roles.
func RequireRole(allowedRoles []string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := GetPrincipal(r.Context())
			if !ok {
				logger.Warn("Principal not found in context")
				respondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			allowed := false
			for _, role := range allowedRoles {
				if principal.Role == role {
					allowed = true
					break
				}
			}

			if !allowed {
				logger.Warn("User role not authorized",
					zap.String("role", principal.Role),
					zap.Strings("allowed_roles", allowedRoles),
				)
				respondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
