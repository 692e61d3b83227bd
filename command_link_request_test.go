package auth_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	auth "github.com/michaelglp1/glp-1-auth"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func expectIssuance(t *testing.T, repo *MockRepositoryManager, tokens *MockAuthTokens, userID uuid.UUID, kind auth.TokenKind) {
	t.Helper()

	repo.On("AuthTokens").Return(tokens)
	tokens.On("InvalidateOutstandingTx", mock.Anything, mock.Anything, userID, kind, mock.Anything).
		Return(nil).Once()
	tokens.On("CreateTx", mock.Anything, mock.Anything, mock.Anything).
		Return(&auth.AuthToken{}, nil).Once()
	repo.On("RunInTx", mock.Anything, (*sql.TxOptions)(nil), mock.Anything).
		Return(nil).
		Run(func(args mock.Arguments) {
			fn := args.Get(2).(func(context.Context, bun.Tx) error)
			var tx bun.Tx
			require.NoError(t, fn(args.Get(0).(context.Context), tx))
		}).Once()
}

func TestRequestAccessLinkResponsesAreByteIdentical(t *testing.T) {
	ctx := context.Background()

	userID := uuid.New()
	existing := &auth.User{ID: userID, Email: "known@example.com"}

	// known account
	repoKnown := &MockRepositoryManager{}
	usersKnown := &MockUsers{}
	tokensKnown := &MockAuthTokens{}
	mailer := &MockMailer{}

	repoKnown.On("Users").Return(usersKnown)
	usersKnown.On("GetByEmail", mock.Anything, "known@example.com").
		Return(existing, nil).Once()
	expectIssuance(t, repoKnown, tokensKnown, userID, auth.TokenKindMagicLink)
	mailer.On("SendLoginLink", mock.Anything, "known@example.com", "known", mock.Anything).
		Return(nil).Once()

	var knownResp *auth.RequestAccessLinkResponse
	err := auth.NewRequestAccessLinkHandler(repoKnown).
		WithMailer(mailer).
		WithLogger(silentLogger{}).
		Execute(ctx, auth.RequestAccessLinkMessage{
			Email: "known@example.com",
			Kind:  auth.TokenKindMagicLink,
			OnResponse: func(resp *auth.RequestAccessLinkResponse) {
				knownResp = resp
			},
		})
	require.NoError(t, err)

	// unknown account
	repoUnknown := &MockRepositoryManager{}
	usersUnknown := &MockUsers{}

	repoUnknown.On("Users").Return(usersUnknown)
	usersUnknown.On("GetByEmail", mock.Anything, "unknown@example.com").
		Return(nil, repository.NewRecordNotFound()).Once()

	var unknownResp *auth.RequestAccessLinkResponse
	err = auth.NewRequestAccessLinkHandler(repoUnknown).
		WithLogger(silentLogger{}).
		Execute(ctx, auth.RequestAccessLinkMessage{
			Email: "unknown@example.com",
			Kind:  auth.TokenKindMagicLink,
			OnResponse: func(resp *auth.RequestAccessLinkResponse) {
				unknownResp = resp
			},
		})
	require.NoError(t, err)

	require.NotNil(t, knownResp)
	require.NotNil(t, unknownResp)
	assert.Equal(t, *knownResp, *unknownResp)
	assert.Equal(t, auth.AccessLinkRequestedMessage, knownResp.Message)

	repoKnown.AssertExpectations(t)
	usersKnown.AssertExpectations(t)
	tokensKnown.AssertExpectations(t)
	mailer.AssertExpectations(t)
	repoUnknown.AssertExpectations(t)
	usersUnknown.AssertExpectations(t)
}

func TestRequestAccessLinkSwallowsMailerFailure(t *testing.T) {
	ctx := context.Background()

	userID := uuid.New()
	user := &auth.User{
		ID:    userID,
		Email: "pepe.rone@example.com",
		Profile: &auth.Profile{
			UserID:    userID,
			FirstName: "Pepe",
		},
	}

	repo := &MockRepositoryManager{}
	users := &MockUsers{}
	tokens := &MockAuthTokens{}
	mailer := &MockMailer{}
	sink := &capturingSink{}

	repo.On("Users").Return(users)
	users.On("GetByEmail", mock.Anything, "pepe.rone@example.com").
		Return(user, nil).Once()
	expectIssuance(t, repo, tokens, userID, auth.TokenKindPasswordReset)
	mailer.On("SendPasswordReset", mock.Anything, "pepe.rone@example.com", "Pepe", mock.Anything).
		Return(errors.New("provider outage")).Once()

	var res *auth.RequestAccessLinkResponse
	err := auth.NewRequestAccessLinkHandler(repo).
		WithMailer(mailer).
		WithActivitySink(sink).
		WithLogger(silentLogger{}).
		Execute(ctx, auth.RequestAccessLinkMessage{
			Email: "pepe.rone@example.com",
			Kind:  auth.TokenKindPasswordReset,
			OnResponse: func(resp *auth.RequestAccessLinkResponse) {
				res = resp
			},
		})

	// email delivery failing must not fail the request
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, auth.AccessLinkRequestedMessage, res.Message)

	require.Len(t, sink.events, 1)
	assert.Equal(t, auth.ActivityEventLinkRequested, sink.events[0].EventType)
	assert.Equal(t, userID.String(), sink.events[0].UserID)
	assert.Equal(t, auth.TokenKindPasswordReset, sink.events[0].Metadata["kind"])

	mailer.AssertExpectations(t)
}

func TestRequestAccessLinkDefaultsToMagicLink(t *testing.T) {
	ctx := context.Background()

	userID := uuid.New()
	user := &auth.User{ID: userID, Email: "pepe.rone@example.com"}

	repo := &MockRepositoryManager{}
	users := &MockUsers{}
	tokens := &MockAuthTokens{}
	mailer := &MockMailer{}

	repo.On("Users").Return(users)
	users.On("GetByEmail", mock.Anything, "pepe.rone@example.com").
		Return(user, nil).Once()
	expectIssuance(t, repo, tokens, userID, auth.TokenKindMagicLink)
	// greeting falls back to the email local part
	mailer.On("SendLoginLink", mock.Anything, "pepe.rone@example.com", "pepe.rone", mock.Anything).
		Return(nil).Once()

	err := auth.NewRequestAccessLinkHandler(repo).
		WithMailer(mailer).
		WithLogger(silentLogger{}).
		Execute(ctx, auth.RequestAccessLinkMessage{
			Email:      "pepe.rone@example.com",
			OnResponse: func(*auth.RequestAccessLinkResponse) {},
		})
	require.NoError(t, err)

	mailer.AssertExpectations(t)
}

func TestRequestAccessLinkRejectsUnknownKind(t *testing.T) {
	ctx := context.Background()
	repo := &MockRepositoryManager{}

	err := auth.NewRequestAccessLinkHandler(repo).
		WithLogger(silentLogger{}).
		Execute(ctx, auth.RequestAccessLinkMessage{
			Email:      "pepe.rone@example.com",
			Kind:       "session",
			OnResponse: func(*auth.RequestAccessLinkResponse) {},
		})
	require.Error(t, err)
}
