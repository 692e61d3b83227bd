package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// VerificationErrorKind names why a token failed verification.
type VerificationErrorKind string

const (
	VerificationNotFound    VerificationErrorKind = "NOT_FOUND"
	VerificationAlreadyUsed VerificationErrorKind = "ALREADY_USED"
	VerificationExpired     VerificationErrorKind = "EXPIRED"
)

// VerificationResult is the structured outcome of a token verification.
// Token state problems are data, not errors: they stay inside the result so
// callers control the user facing wording. The error return is reserved for
// storage failures.
type VerificationResult struct {
	Valid     bool
	UserID    uuid.UUID
	ErrorKind VerificationErrorKind
}

// TokenConsumer is the narrow store surface the verifier needs.
type TokenConsumer interface {
	Consume(ctx context.Context, raw string, now time.Time) (*AuthToken, error)
	GetByValue(ctx context.Context, raw string) (*AuthToken, error)
}

// TokenVerifier consumes single-use tokens. Each verification attempts one
// conditional update, so a token moves to its consumed state exactly once
// no matter how many callers race on the same value.
type TokenVerifier struct {
	tokens  TokenConsumer
	logger  Logger
	timeNow func() time.Time
}

func NewTokenVerifier(tokens TokenConsumer) *TokenVerifier {
	return &TokenVerifier{
		tokens:  tokens,
		logger:  defLogger{},
		timeNow: time.Now,
	}
}

func (tv *TokenVerifier) WithLogger(logger Logger) *TokenVerifier {
	if logger != nil {
		tv.logger = logger
	}
	return tv
}

// WithClock overrides the time source, mainly for expiry tests.
func (tv *TokenVerifier) WithClock(now func() time.Time) *TokenVerifier {
	if now != nil {
		tv.timeNow = now
	}
	return tv
}

// Verify consumes the presented value. On success the result carries the
// owning user; otherwise ErrorKind distinguishes unknown, replayed, and
// expired tokens.
func (tv *TokenVerifier) Verify(ctx context.Context, rawToken string) (VerificationResult, error) {
	if rawToken == "" {
		return VerificationResult{ErrorKind: VerificationNotFound}, nil
	}

	now := tv.timeNow()

	record, err := tv.tokens.Consume(ctx, rawToken, now)
	if err == nil {
		return VerificationResult{Valid: true, UserID: record.UserID}, nil
	}

	if !goerrors.IsNotFound(err) {
		return VerificationResult{}, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to consume auth token")
	}

	return tv.classify(ctx, rawToken, now)
}

// classify re-reads the row after a missed conditional update to name the
// failure. The row state may have changed between the two statements; every
// branch still reports a terminal state truthfully.
func (tv *TokenVerifier) classify(ctx context.Context, rawToken string, now time.Time) (VerificationResult, error) {
	record, err := tv.tokens.GetByValue(ctx, rawToken)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return VerificationResult{ErrorKind: VerificationNotFound}, nil
		}
		return VerificationResult{}, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up auth token")
	}

	if record.Used {
		return VerificationResult{ErrorKind: VerificationAlreadyUsed}, nil
	}

	if record.IsExpired(now) {
		return VerificationResult{ErrorKind: VerificationExpired}, nil
	}

	// The update missed yet the row reads outstanding. Only clock or
	// isolation anomalies get here; fail closed as a replay.
	return VerificationResult{ErrorKind: VerificationAlreadyUsed}, nil
}
