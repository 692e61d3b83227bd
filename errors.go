package auth

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes surfaced to API clients for programmatic handling.
const (
	TextCodeInvalidCredentials     = "INVALID_CREDENTIALS"
	TextCodeTokenExpired           = "TOKEN_EXPIRED"
	TextCodeTokenMalformed         = "TOKEN_MALFORMED"
	TextCodeWeakPassword           = "WEAK_PASSWORD"
	TextCodePasswordMismatch       = "PASSWORD_MISMATCH"
	TextCodeUnconfiguredDependency = "UNCONFIGURED_DEPENDENCY"
	TextCodeTooManyLoginAttempts   = "TOO_MANY_LOGIN_ATTEMPTS"
	TextCodeAuthenticationRequired = "AUTHENTICATION_REQUIRED"
)

var (
	// ErrIdentityNotFound is returned when no account matches the identifier.
	// Callers facing untrusted clients should translate this into the same
	// response a bad password produces.
	ErrIdentityNotFound = goerrors.New("identity not found", goerrors.CategoryAuth).
				WithTextCode("IDENTITY_NOT_FOUND").
				WithCode(goerrors.CodeUnauthorized)

	// ErrMismatchedHashAndPassword is the generic credential failure. The
	// provider returns it for unknown accounts too, so the error alone does
	// not reveal whether an email is registered.
	ErrMismatchedHashAndPassword = goerrors.New("invalid credentials", goerrors.CategoryAuth).
					WithTextCode(TextCodeInvalidCredentials).
					WithCode(goerrors.CodeUnauthorized)

	// ErrTooManyLoginAttempts is returned when an account is inside its
	// login cool down window.
	ErrTooManyLoginAttempts = goerrors.New("too many login attempts", goerrors.CategoryAuth).
				WithTextCode(TextCodeTooManyLoginAttempts).
				WithCode(goerrors.CodeUnauthorized)

	// ErrTokenExpired is returned when a session credential is past its
	// expiration.
	ErrTokenExpired = goerrors.New("session token is expired", goerrors.CategoryAuth).
			WithTextCode(TextCodeTokenExpired).
			WithCode(goerrors.CodeUnauthorized)

	// ErrTokenMalformed is returned when a session credential fails
	// signature or structural validation.
	ErrTokenMalformed = goerrors.New("session token is malformed", goerrors.CategoryAuth).
				WithTextCode(TextCodeTokenMalformed).
				WithCode(goerrors.CodeUnauthorized)

	// ErrWeakPassword is returned when a password fails the strength policy.
	ErrWeakPassword = goerrors.New(WeakPasswordMessage, goerrors.CategoryValidation).
			WithTextCode(TextCodeWeakPassword)

	// ErrPasswordMismatch is returned when password and confirmation differ.
	ErrPasswordMismatch = goerrors.New("passwords do not match", goerrors.CategoryValidation).
				WithTextCode(TextCodePasswordMismatch)

	// ErrAuthenticationRequired is returned when an operation needs an
	// authenticated session and none is present.
	ErrAuthenticationRequired = goerrors.New("not authenticated", goerrors.CategoryAuth).
					WithTextCode(TextCodeAuthenticationRequired).
					WithCode(goerrors.CodeUnauthorized)

	// ErrSigningKeyMissing is returned when the token service is asked to
	// sign without a configured key.
	ErrSigningKeyMissing = goerrors.New("signing key is not configured", goerrors.CategoryInternal).
				WithTextCode(TextCodeUnconfiguredDependency).
				WithCode(goerrors.CodeInternal)

	// ErrNoEmptyString is a generic guard against empty required values.
	ErrNoEmptyString = goerrors.New("value should not be an empty string", goerrors.CategoryBadInput)
)

var (
	ErrUnableToFindSession   = errors.New("unable to find session")
	ErrUnableToDecodeSession = errors.New("unable to decode session")
	ErrUnableToMapClaims     = errors.New("unable to map claims")
	ErrUnableToParseData     = errors.New("unable to parse data")
)

// IsTokenExpiredError checks if the given error represents an expired token.
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenExpired) {
		return true
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.TextCode == TextCodeTokenExpired
	}
	return false
}

// IsMalformedError checks if the given error represents a malformed token.
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenMalformed) {
		return true
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.TextCode == TextCodeTokenMalformed
	}
	return false
}
