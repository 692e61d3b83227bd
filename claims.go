package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AuthClaims is the read surface of a validated session credential.
type AuthClaims interface {
	UserID() string
	UserEmail() string
	Subject() string
	IssuedAt() time.Time
	Expires() time.Time
}

// JWTClaims is the session credential payload: the authenticated user
// reference plus the registered time bounds. Kept deliberately small. The
// server holds no session table, so everything a request needs to identify
// the caller must be carried here.
type JWTClaims struct {
	jwt.RegisteredClaims
	UID   string `json:"uid,omitempty"`
	Email string `json:"email,omitempty"`
}

// UserID returns the authenticated user identifier, falling back to the
// registered subject for tokens minted before the uid claim existed.
func (c *JWTClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.RegisteredClaims.Subject
}

// UserEmail returns the email the session was issued for.
func (c *JWTClaims) UserEmail() string {
	return c.Email
}

// Subject returns the registered subject claim.
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// IssuedAt returns the issuance time, zero when absent.
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

// Expires returns the expiration time, zero when absent.
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// ensureTokenID assigns a random jti when the caller did not provide one.
func ensureTokenID(claims *jwt.RegisteredClaims) {
	if claims.ID == "" {
		claims.ID = uuid.NewString()
	}
}

var _ AuthClaims = (*JWTClaims)(nil)
