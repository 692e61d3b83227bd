package auth

import (
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation"
)

// MinPasswordLength is the minimum accepted password length. The web client
// mirrors the policy for inline feedback; the server remains authoritative.
const MinPasswordLength = 8

// WeakPasswordMessage is the user facing policy description returned when a
// password fails validation.
const WeakPasswordMessage = "Password must be at least 8 characters long and contain at least one uppercase letter, one lowercase letter, one number, and one special character"

// ValidatePasswordStrength enforces the password policy: minimum length plus
// at least one uppercase letter, one lowercase letter, one digit, and one
// character outside those classes.
func ValidatePasswordStrength(password string) error {
	if len(password) < MinPasswordLength {
		return ErrWeakPassword
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			special = true
		}
	}

	if !upper || !lower || !digit || !special {
		return ErrWeakPassword
	}
	return nil
}

// PasswordStrengthRule adapts the policy to ozzo validation chains.
func PasswordStrengthRule() validation.RuleFunc {
	return func(value any) error {
		password, _ := value.(string)
		return ValidatePasswordStrength(password)
	}
}
