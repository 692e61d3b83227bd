package auth

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ConsumeAuthTokenSQL flips the used flag only while the token is still
// outstanding. The WHERE clause is the single winner guarantee: of N
// concurrent verifications of the same value, at most one update matches.
var ConsumeAuthTokenSQL = `UPDATE "auth_tokens" AS "tok"
SET
	"used" = TRUE
WHERE
	"tok"."token" = ?
AND "tok"."used" = FALSE
AND "tok"."expires_at" > ?
RETURNING *;`

// InvalidateOutstandingTokensSQL marks every live token of a kind as used
// without touching consumed or expired rows, keeping the used flag
// monotonic across the whole table.
var InvalidateOutstandingTokensSQL = `UPDATE "auth_tokens" AS "tok"
SET
	"used" = TRUE
WHERE
	"tok"."user_id" = ?
AND "tok"."kind" = ?
AND "tok"."used" = FALSE
AND "tok"."expires_at" > ?;`

type AuthTokens interface {
	repository.Repository[*AuthToken]

	GetByValue(ctx context.Context, raw string) (*AuthToken, error)
	GetByValueTx(ctx context.Context, tx bun.IDB, raw string) (*AuthToken, error)

	Consume(ctx context.Context, raw string, now time.Time) (*AuthToken, error)
	ConsumeTx(ctx context.Context, tx bun.IDB, raw string, now time.Time) (*AuthToken, error)

	InvalidateOutstanding(ctx context.Context, userID uuid.UUID, kind TokenKind, now time.Time) error
	InvalidateOutstandingTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, kind TokenKind, now time.Time) error

	Create(ctx context.Context, record *AuthToken, criteria ...repository.InsertCriteria) (*AuthToken, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *AuthToken, criteria ...repository.InsertCriteria) (*AuthToken, error)
}

type authTokens struct {
	repository.Repository[*AuthToken]
	db *bun.DB
}

var (
	_ AuthTokens                        = (*authTokens)(nil)
	_ repository.Repository[*AuthToken] = (*authTokens)(nil)
)

func NewAuthTokensRepository(db *bun.DB) AuthTokens {
	repo := repository.NewRepository[*AuthToken](db, repository.ModelHandlers[*AuthToken]{
		NewRecord: func() *AuthToken { return &AuthToken{} },
		GetID: func(t *AuthToken) uuid.UUID {
			if t == nil {
				return uuid.Nil
			}
			return t.ID
		},
		SetID: func(t *AuthToken, id uuid.UUID) {
			if t != nil {
				t.ID = id
			}
		},
		GetIdentifier: func() string {
			return "token"
		},
	})

	return &authTokens{
		Repository: repo,
		db:         db,
	}
}

func (a *authTokens) GetByValue(ctx context.Context, raw string) (*AuthToken, error) {
	return a.GetByValueTx(ctx, a.db, raw)
}

// GetByValueTx resolves a token record by exact value match regardless of
// its state. Metadata on the not found error never echoes the raw value.
func (a *authTokens) GetByValueTx(ctx context.Context, tx bun.IDB, raw string) (*AuthToken, error) {
	record := &AuthToken{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.token = ?", raw).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"identifier": "token",
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *authTokens) Consume(ctx context.Context, raw string, now time.Time) (*AuthToken, error) {
	return a.ConsumeTx(ctx, a.db, raw, now)
}

// ConsumeTx atomically marks an outstanding token as used and returns the
// consumed record. When the conditional update matches no row the token is
// missing, spent, or expired; a not found error is returned and the caller
// classifies which.
func (a *authTokens) ConsumeTx(ctx context.Context, tx bun.IDB, raw string, now time.Time) (*AuthToken, error) {
	res, err := a.Repository.RawTx(ctx, tx, ConsumeAuthTokenSQL, raw, now)
	if err != nil {
		return nil, err
	}

	if len(res) == 0 {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"identifier": "token",
			})
	}

	return res[0], nil
}

func (a *authTokens) InvalidateOutstanding(ctx context.Context, userID uuid.UUID, kind TokenKind, now time.Time) error {
	return a.InvalidateOutstandingTx(ctx, a.db, userID, kind, now)
}

func (a *authTokens) InvalidateOutstandingTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, kind TokenKind, now time.Time) error {
	_, err := tx.NewRaw(InvalidateOutstandingTokensSQL, userID, kind, now).Exec(ctx)
	return err
}

func (a *authTokens) Create(ctx context.Context, record *AuthToken, criteria ...repository.InsertCriteria) (*AuthToken, error) {
	return a.CreateTx(ctx, a.db, record, criteria...)
}

func (a *authTokens) CreateTx(ctx context.Context, tx bun.IDB, record *AuthToken, criteria ...repository.InsertCriteria) (*AuthToken, error) {
	prepareAuthTokenDefaults(record)
	return a.Repository.CreateTx(ctx, tx, record, criteria...)
}

func prepareAuthTokenDefaults(record *AuthToken) {
	if record == nil {
		return
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}
