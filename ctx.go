package auth

import (
	"context"

	"github.com/goliatone/go-router"
)

type contextKey string

const (
	sessionContextKey contextKey = "auth:session"
	claimsContextKey  contextKey = "auth:claims"
)

// WithSessionContext stores a validated session in the context.
func WithSessionContext(ctx context.Context, session Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, session)
}

// SessionFromContext retrieves the session placed by WithSessionContext.
func SessionFromContext(ctx context.Context) (Session, bool) {
	session, ok := ctx.Value(sessionContextKey).(Session)
	return session, ok
}

// WithClaimsContext stores validated claims in the context.
func WithClaimsContext(ctx context.Context, claims AuthClaims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// ClaimsFromContext retrieves claims placed by WithClaimsContext.
func ClaimsFromContext(ctx context.Context) (AuthClaims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(AuthClaims)
	return claims, ok
}

// GetRouterClaims pulls validated claims from router locals, where the
// authentication middleware leaves them.
func GetRouterClaims(c router.Context, key string) (*JWTClaims, bool) {
	raw := c.Locals(key)
	if raw == nil {
		return nil, false
	}
	claims, ok := raw.(*JWTClaims)
	return claims, ok
}
