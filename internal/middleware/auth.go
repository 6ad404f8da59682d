package middleware

import (
	"context"
	"net/http"
	"strings"

	"buddhist-lent/pledgeboard/internal/auth"
	"buddhist-lent/pledgeboard/internal/common"
	"buddhist-lent/pledgeboard/internal/logging"
)

// ClaimsResolver turns a session id or bearer token into claims.
type ClaimsResolver interface {
	ResolveSession(ctx context.Context, sessionID string) (*auth.SessionClaims, error)
	ResolveToken(ctx context.Context, token string) (*auth.JWTClaims, error)
}

// AuthMiddleware accepts the session cookie first and falls back to an
// "Authorization: Bearer" token. Requests with neither get a 401. A session
// whose expiry slid forward gets its cookie reissued.
func AuthMiddleware(resolver ClaimsResolver, cookieName string, secureCookie bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var claims auth.UserClaims

			if cookie, err := r.Cookie(cookieName); err == nil && cookie.Value != "" {
				sc, err := resolver.ResolveSession(r.Context(), cookie.Value)
				if err == nil {
					claims = sc
					if sc.Refreshed {
						http.SetCookie(w, common.SessionCookie(cookieName, sc.SessionID, sc.ExpiresAt, secureCookie))
					}
				} else {
					logging.Debug("Session rejected", "error", err)
				}
			}

			if claims == nil {
				if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
					jc, err := resolver.ResolveToken(r.Context(), strings.TrimPrefix(header, "Bearer "))
					if err == nil {
						claims = jc
					} else {
						logging.Debug("Bearer token rejected", "error", err)
					}
				}
			}

			if claims == nil {
				common.RespondUnauthorized(w)
				return
			}

			ctx := auth.SetUserClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
