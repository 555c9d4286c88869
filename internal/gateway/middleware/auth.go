package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/saransh1220/snaplabel/internal/modules/auth/infrastructure/jwt"
	"github.com/saransh1220/snaplabel/internal/shared/utils"
)

type contextKey string

const (
	ContextKeySubject contextKey = "subject"
	ContextKeyScope   contextKey = "scope"
)

type AuthMiddleWare struct {
	jwtSecret string
}

// NewAuthMiddleware returns a middleware validating HS256 bearer tokens signed
// with jwtSecret. An empty secret disables authentication.
func NewAuthMiddleware(jwtSecret string) *AuthMiddleWare {
	return &AuthMiddleWare{jwtSecret: jwtSecret}
}

// Enabled reports whether requests are authenticated.
func (m *AuthMiddleWare) Enabled() bool {
	return m.jwtSecret != ""
}

// RequireAuth validates the bearer token in the Authorization header (or the
// token query parameter, used by websocket clients) and injects the subject
// and scope into the request context. Failures answer 401.
func (m *AuthMiddleWare) RequireAuth(next http.Handler) http.Handler {
	if !m.Enabled() {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || tokenStr == "" {
			tokenStr = r.URL.Query().Get("token")
		}

		if tokenStr == "" {
			utils.WriteError(w, http.StatusUnauthorized, "missing or invalid authorization", nil)
			return
		}

		claims, err := jwt.ValidateToken(tokenStr, m.jwtSecret)
		if err != nil {
			utils.WriteError(w, http.StatusUnauthorized, "invalid or expired token", nil)
			return
		}
		if !claims.HasScope(jwt.ScopeAnalyze) {
			utils.WriteError(w, http.StatusForbidden, "insufficient scope", nil)
			return
		}

		ctx := context.WithValue(r.Context(), ContextKeySubject, claims.Subject)
		ctx = context.WithValue(ctx, ContextKeyScope, claims.Scope)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
