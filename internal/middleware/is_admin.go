package middleware

import (
	"net/http"

	"buddhist-lent/pledgeboard/internal/auth"
	"buddhist-lent/pledgeboard/internal/common"
	"buddhist-lent/pledgeboard/internal/constants"
)

func IsAdminMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := auth.GetUserClaims(r.Context())
			if claims == nil {
				common.RespondUnauthorized(w)
				return
			}
			if !claims.IsAdmin() {
				common.RespondPermissionDenied(w, constants.RoleAdmin.String())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
