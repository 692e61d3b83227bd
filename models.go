package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// TokenTTL is how long a magic link or password reset token stays valid.
// User facing copy promises a 15 minute window, so treat this as a contract
// rather than a tunable default.
const TokenTTL = 15 * time.Minute

// SessionDuration is the fixed lifetime of an issued session credential.
// Sessions are not renewed; after seven days the user signs in again.
const SessionDuration = 7 * 24 * time.Hour

// TokenKind discriminates the single-use token flows sharing the
// auth_tokens table.
type TokenKind = string

const (
	TokenKindMagicLink     TokenKind = "magic_link"
	TokenKindPasswordReset TokenKind = "password_reset"
)

// ValidTokenKind reports whether kind names a known token flow.
func ValidTokenKind(kind string) bool {
	switch kind {
	case TokenKindMagicLink, TokenKindPasswordReset:
		return true
	}
	return false
}

// User is an account record.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr" json:"-"`

	ID             uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email          string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash   string     `bun:"password_hash" json:"-"`
	Profile        *Profile   `bun:"rel:has-one,join:id=user_id" json:"profile,omitempty"`
	LoginAttempts  int        `bun:"login_attempts" json:"login_attempts,omitempty"`
	LoginAttemptAt *time.Time `bun:"login_attempt_at,nullzero" json:"login_attempt_at,omitempty"`
	LoggedInAt     *time.Time `bun:"loggedin_at,nullzero" json:"loggedin_at,omitempty"`
	CreatedAt      *time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt      *time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt      *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// HasPassword reports whether the account can authenticate with a password.
// Accounts created through magic links alone have no hash on record.
func (u *User) HasPassword() bool {
	return u != nil && u.PasswordHash != ""
}

// Profile carries the onboarding and subscription state the web layer
// renders right after login.
type Profile struct {
	bun.BaseModel `bun:"table:profiles,alias:prf" json:"-"`

	ID         uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID     uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	FirstName  string     `bun:"first_name" json:"first_name,omitempty"`
	LastName   string     `bun:"last_name" json:"last_name,omitempty"`
	Plan       string     `bun:"plan" json:"plan,omitempty"`
	IsComplete bool       `bun:"is_complete" json:"is_complete"`
	CreatedAt  *time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt  *time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at,omitempty"`
}

// AuthToken is a single-use opaque credential backing magic link and
// password reset flows. Rows are never deleted: a consumed or expired token
// keeps its record so replays can be told apart from tokens that never
// existed. The used flag only ever moves from false to true.
type AuthToken struct {
	bun.BaseModel `bun:"table:auth_tokens,alias:tok" json:"-"`

	ID        uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID    uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	User      *User      `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	Token     string     `bun:"token,notnull,unique" json:"-"`
	Kind      TokenKind  `bun:"kind,notnull" json:"kind,omitempty"`
	ExpiresAt time.Time  `bun:"expires_at,notnull" json:"expires_at,omitempty"`
	Used      bool       `bun:"used,notnull,default:false" json:"used"`
	CreatedAt *time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at,omitempty"`
}

// IsExpired reports whether the token's window has closed at the given time.
// The boundary instant itself counts as expired.
func (t *AuthToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// IsOutstanding reports whether the token can still be consumed.
func (t *AuthToken) IsOutstanding(now time.Time) bool {
	return t != nil && !t.Used && !t.IsExpired(now)
}
