package middleware

import (
	"context"
	"net/http"
	"strings"

	apierrors "github.com/findosh/slideomni/internal/pkg/errors"
	"github.com/findosh/slideomni/internal/pkg/response"
	"github.com/findosh/slideomni/internal/services/auth"
)

// SessionCookie is the cookie that carries the session token
const SessionCookie = "authToken"

type contextKey string

const (
	claimsContextKey contextKey = "claims"
	tokenContextKey  contextKey = "token"
)

// TokenValidator verifies session tokens
type TokenValidator interface {
	ValidateToken(token string) (*auth.Claims, error)
}

// Auth middleware for protected routes
type Auth struct {
	tokens TokenValidator
}

// NewAuth creates a new auth middleware
func NewAuth(tokens TokenValidator) *Auth {
	return &Auth{tokens: tokens}
}

// TokenFromRequest returns the session token. The cookie wins over the
// Authorization header.
func TokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// RequireAuth rejects requests without a valid session token
func (m *Auth) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := TokenFromRequest(r)
		claims, err := m.tokens.ValidateToken(token)
		if err != nil {
			// Expired and forged tokens look the same to the caller
			response.Error(w, apierrors.ErrUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), claimsContextKey, claims)
		ctx = context.WithValue(ctx, tokenContextKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireSudo rejects authenticated requests whose token lacks elevated access.
// It must run after RequireAuth.
func (m *Auth) RequireSudo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFromContext(r.Context())
		if claims == nil {
			response.Error(w, apierrors.ErrUnauthorized)
			return
		}
		if !claims.IsSudo() {
			response.Error(w, apierrors.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ClaimsFromContext returns the authenticated claims, or nil
func ClaimsFromContext(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsContextKey).(*auth.Claims)
	return claims
}

// TokenFromContext returns the raw token accepted by RequireAuth
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenContextKey).(string)
	return token
}
