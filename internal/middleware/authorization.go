package middleware

import (
	"net/http"

	"quikmart/internal/domain"

	"go.uber.org/zap"
)

// RequireAdmin middleware ensures the user has admin role
func RequireAdmin(logger *zap.Logger) func(http.Handler) http.Handler {
	return RequireRole([]domain.Role{domain.RoleAdmin}, logger)
}

// RequireRole middleware ensures the user has one of the specified roles.
// It must run behind RequireAuthenticated.
func RequireRole(allowedRoles []domain.Role, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rc, ok := GetRequestContext(r.Context())
			if !ok {
				logger.Warn("Request context not found")
				RespondWithError(w, http.StatusUnauthorized, "please login to access this resource")
				return
			}

			for _, role := range allowedRoles {
				if rc.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			logger.Warn("User role not authorized",
				zap.String("user_id", rc.UserID.Hex()),
				zap.String("role", string(rc.Role)),
			)
			RespondWithError(w, http.StatusForbidden, "insufficient permissions")
		})
	}
}
