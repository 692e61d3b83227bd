package auth

import (
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// SessionObject is the concrete Session handed to request handlers after a
// credential validates.
type SessionObject struct {
	UserID         string         `json:"user_id"`
	Email          string         `json:"email,omitempty"`
	Audience       []string       `json:"aud,omitempty"`
	Issuer         string         `json:"iss,omitempty"`
	IssuedAt       *time.Time     `json:"iat,omitempty"`
	ExpirationDate *time.Time     `json:"exp,omitempty"`
	Data           map[string]any `json:"data,omitempty"`
}

func (s SessionObject) GetUserID() string {
	return s.UserID
}

// GetUserUUID parses the session's user identifier as a UUID.
func (s SessionObject) GetUserUUID() (uuid.UUID, error) {
	id, err := uuid.Parse(s.UserID)
	if err != nil {
		return uuid.Nil, goerrors.Wrap(err, goerrors.CategoryAuth, "session user id is not a UUID")
	}
	return id, nil
}

func (s SessionObject) GetEmail() string {
	return s.Email
}

func (s SessionObject) GetAudience() []string {
	return s.Audience
}

func (s SessionObject) GetIssuer() string {
	return s.Issuer
}

func (s SessionObject) GetIssuedAt() *time.Time {
	return s.IssuedAt
}

func (s SessionObject) GetExpiration() *time.Time {
	return s.ExpirationDate
}

func (s SessionObject) GetData() map[string]any {
	return s.Data
}

var _ Session = SessionObject{}

// sessionFromAuthClaims maps validated claims into a SessionObject.
func sessionFromAuthClaims(claims AuthClaims) (*SessionObject, error) {
	if claims == nil {
		return nil, ErrUnableToMapClaims
	}

	session := &SessionObject{
		UserID: claims.UserID(),
		Email:  claims.UserEmail(),
	}

	if iat := claims.IssuedAt(); !iat.IsZero() {
		session.IssuedAt = &iat
	}

	if exp := claims.Expires(); !exp.IsZero() {
		session.ExpirationDate = &exp
	}

	if jwtClaims, ok := claims.(*JWTClaims); ok {
		session.Issuer = jwtClaims.RegisteredClaims.Issuer
		session.Audience = jwtClaims.RegisteredClaims.Audience
	}

	return session, nil
}
