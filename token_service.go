package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

// TokenServiceImpl signs and validates session credentials with a shared
// HMAC key. Tokens are self contained: validity is derived from the
// signature and the registered time claims alone.
type TokenServiceImpl struct {
	signingKey      []byte
	sessionDuration time.Duration
	issuer          string
	audience        jwt.ClaimStrings
	logger          Logger
}

// NewTokenService creates a TokenService for session credentials. A zero
// sessionDuration falls back to SessionDuration.
func NewTokenService(signingKey []byte, sessionDuration time.Duration, issuer string, audience []string, logger Logger) *TokenServiceImpl {
	if sessionDuration <= 0 {
		sessionDuration = SessionDuration
	}
	return &TokenServiceImpl{
		signingKey:      signingKey,
		sessionDuration: sessionDuration,
		issuer:          issuer,
		audience:        jwt.ClaimStrings(audience),
		logger:          ResolveLogger(logger),
	}
}

// Generate creates the signed session credential for a verified identity.
func (ts *TokenServiceImpl) Generate(identity Identity) (string, error) {
	if identity == nil {
		return "", goerrors.New("identity is required", goerrors.CategoryBadInput)
	}

	now := time.Now()
	claims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   identity.ID(),
			Audience:  ts.audience,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.sessionDuration)),
		},
		UID:   identity.ID(),
		Email: identity.Email(),
	}
	ensureTokenID(&claims.RegisteredClaims)

	return ts.SignClaims(claims)
}

// SignClaims signs the given claims with the configured key.
func (ts *TokenServiceImpl) SignClaims(claims *JWTClaims) (string, error) {
	if len(ts.signingKey) == 0 {
		return "", ErrSigningKeyMissing
	}
	if claims == nil {
		return "", goerrors.New("claims are required", goerrors.CategoryBadInput)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign session credential")
	}
	return signed, nil
}

// Validate parses and verifies a session credential, returning its claims.
// Expired credentials map to ErrTokenExpired; every other failure maps to a
// malformed token error so callers never branch on parser internals.
func (ts *TokenServiceImpl) Validate(tokenString string) (AuthClaims, error) {
	if tokenString == "" {
		return nil, ErrNoEmptyString
	}
	if len(ts.signingKey) == 0 {
		return nil, ErrSigningKeyMissing
	}

	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenMalformed
		}
		return ts.signingKey, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			ts.logger.Debug("session credential expired")
			return nil, ErrTokenExpired
		}
		return nil, goerrors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(ErrTokenMalformed.TextCode)
	}

	if !token.Valid {
		return nil, ErrTokenMalformed
	}

	return claims, nil
}

var _ TokenService = (*TokenServiceImpl)(nil)
