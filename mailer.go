package auth

import (
	"context"
	"strings"
)

// Mailer delivers login link and password reset email. Implementations wrap
// the transactional email provider; workflows treat every send as best
// effort and absorb failures so auth availability never depends on email
// availability.
type Mailer interface {
	SendLoginLink(ctx context.Context, email, name, token string) error
	SendPasswordReset(ctx context.Context, email, name, token string) error
}

// MailerFunc adapts a single delivery function to both Mailer methods,
// handy for tests and for providers with one templated send entry point.
type MailerFunc func(ctx context.Context, kind TokenKind, email, name, token string) error

func (f MailerFunc) SendLoginLink(ctx context.Context, email, name, token string) error {
	return f(ctx, TokenKindMagicLink, email, name, token)
}

func (f MailerFunc) SendPasswordReset(ctx context.Context, email, name, token string) error {
	return f(ctx, TokenKindPasswordReset, email, name, token)
}

type noopMailer struct{}

func (noopMailer) SendLoginLink(context.Context, string, string, string) error {
	return nil
}

func (noopMailer) SendPasswordReset(context.Context, string, string, string) error {
	return nil
}

func normalizeMailer(mailer Mailer) Mailer {
	if mailer == nil {
		return noopMailer{}
	}
	return mailer
}

// EmailGreetingName picks the name used in outgoing email copy, falling
// back to the address local part when the profile has no first name.
func EmailGreetingName(firstName, email string) string {
	if firstName != "" {
		return firstName
	}
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}
