package middleware

import (
	"net/http"

	"buddhist-lent/pledgeboard/internal/auth"
	"buddhist-lent/pledgeboard/internal/common"
	"buddhist-lent/pledgeboard/internal/constants"
)

// IsMemberMiddleware lets through any signed-in account; admins are members too.
func IsMemberMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := auth.GetUserClaims(r.Context())
			if claims == nil {
				common.RespondUnauthorized(w)
				return
			}
			if !constants.Role(claims.Role()).Valid() {
				common.RespondPermissionDenied(w, constants.RoleMember.String())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
