package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/authhybrid/backend/internal/apperr"
	"github.com/authhybrid/backend/internal/http/response"
	"github.com/authhybrid/backend/internal/security"
)

type contextKey string

const claimsContextKey contextKey = "claims"

// Auth requires a valid Bearer access token and stows its claims in
// the request context.
func Auth(jwtMgr *security.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := ""
			auth := r.Header.Get("Authorization")
			if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
				raw = strings.TrimSpace(auth[7:])
			}
			if raw == "" {
				response.Error(r.Context(), w, apperr.Auth("Missing access token"))
				return
			}
			claims, err := jwtMgr.ParseAccessToken(raw)
			if err != nil {
				response.Error(r.Context(), w, apperr.Auth("Invalid or expired access token"))
				return
			}
			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func ClaimsFromContext(ctx context.Context) (*security.AccessClaims, bool) {
	c, ok := ctx.Value(claimsContextKey).(*security.AccessClaims)
	return c, ok
}
