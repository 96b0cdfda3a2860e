package middleware

import (
	"net/http"

	"tradelink/internal/domain"

	"go.uber.org/zap"
)

// RequireAdmin ensures the caller holds the ADMIN role
func RequireAdmin(logger *zap.Logger) func(http.Handler) http.Handler {
	return RequireArea(domain.AreaAdmin, logger)
}

// RequireArea ensures the caller's role may enter the given area. ADMIN
// passes every area check.
func RequireArea(area domain.Area, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := GetUserRole(r.Context())
			if !ok {
				logger.Warn("Role not found in context")
				respondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			if !role.CanAccess(area) {
				logger.Warn("Role not authorized for area",
					zap.String("role", role.String()),
					zap.String("area", string(area)),
				)
				respondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole ensures the caller holds exactly the given role. Used for
// ownership-bound writes where rows bind to the caller's id, so the
// admin super-role does not apply.
func RequireRole(role domain.Role, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			callerRole, ok := GetUserRole(r.Context())
			if !ok {
				logger.Warn("Role not found in context")
				respondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			if callerRole != role {
				logger.Warn("Role mismatch",
					zap.String("role", callerRole.String()),
					zap.String("required", role.String()),
				)
				respondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
