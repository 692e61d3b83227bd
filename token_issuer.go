package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// TokenIssuer creates single-use magic link and password reset tokens.
// Issuance supersedes: every outstanding token of the same kind for the
// user is invalidated in the same transaction that persists the new one, so
// at no point does a user hold two live links for one flow.
type TokenIssuer struct {
	repo    RepositoryManager
	logger  Logger
	timeNow func() time.Time
}

func NewTokenIssuer(repo RepositoryManager) *TokenIssuer {
	return &TokenIssuer{
		repo:    repo,
		logger:  defLogger{},
		timeNow: time.Now,
	}
}

func (ti *TokenIssuer) WithLogger(logger Logger) *TokenIssuer {
	if logger != nil {
		ti.logger = logger
	}
	return ti
}

// WithClock overrides the time source, mainly for expiry tests.
func (ti *TokenIssuer) WithClock(now func() time.Time) *TokenIssuer {
	if now != nil {
		ti.timeNow = now
	}
	return ti
}

// Issue persists a fresh token for the user and returns the raw opaque
// value for email delivery. The raw value exists only in the returned
// string and the token row; it is never logged.
func (ti *TokenIssuer) Issue(ctx context.Context, userID uuid.UUID, kind TokenKind) (string, error) {
	if userID == uuid.Nil {
		return "", goerrors.New("user id is required", goerrors.CategoryBadInput)
	}

	if !ValidTokenKind(kind) {
		return "", goerrors.New("unknown token kind", goerrors.CategoryBadInput).
			WithMetadata(map[string]any{"kind": kind})
	}

	value, err := NewOpaqueToken()
	if err != nil {
		return "", err
	}

	now := ti.timeNow()
	record := &AuthToken{
		UserID:    userID,
		Token:     value,
		Kind:      kind,
		ExpiresAt: now.Add(TokenTTL),
	}

	err = ti.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := ti.repo.AuthTokens().InvalidateOutstandingTx(ctx, tx, userID, kind, now); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to invalidate outstanding tokens")
		}

		if _, err := ti.repo.AuthTokens().CreateTx(ctx, tx, record); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist auth token")
		}

		return nil
	})

	if err != nil {
		ti.logger.Error("token issuance failed", "kind", kind, "error", err)
		return "", err
	}

	return value, nil
}
