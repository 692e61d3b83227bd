package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// HomeRedirect is where every verified link lands.
const HomeRedirect = "/home"

type VerifyAccessLinkMessage struct {
	Token      string `json:"token" doc:"Raw token value from the emailed link."`
	OnResponse func(resp *VerifyAccessLinkResponse)
}

func (p VerifyAccessLinkMessage) Type() string { return "auth.link_verify" }

// UserSnapshot is the slice of account state the web layer renders right
// after a successful verification.
type UserSnapshot struct {
	ID                string `json:"id"`
	Email             string `json:"email"`
	FirstName         string `json:"first_name,omitempty"`
	Plan              string `json:"plan,omitempty"`
	IsProfileComplete bool   `json:"is_profile_complete"`
}

func NewUserSnapshot(user *User) *UserSnapshot {
	snapshot := &UserSnapshot{
		ID:    user.ID.String(),
		Email: user.Email,
	}

	if user.Profile != nil {
		snapshot.FirstName = user.Profile.FirstName
		snapshot.Plan = user.Profile.Plan
		snapshot.IsProfileComplete = user.Profile.IsComplete
	}

	return snapshot
}

type VerifyAccessLinkResponse struct {
	Valid        bool
	ErrorKind    VerificationErrorKind
	SessionToken string
	RedirectTo   string
	User         *UserSnapshot
}

// VerifyAccessLinkHandler consumes an emailed token and, when it holds,
// exchanges it for a session credential plus a user snapshot.
type VerifyAccessLinkHandler struct {
	repo     RepositoryManager
	verifier *TokenVerifier
	tokens   TokenService
	activity ActivitySink
	logger   Logger
}

func NewVerifyAccessLinkHandler(repo RepositoryManager, tokens TokenService) *VerifyAccessLinkHandler {
	return &VerifyAccessLinkHandler{
		repo:     repo,
		verifier: NewTokenVerifier(repo.AuthTokens()),
		tokens:   tokens,
		activity: noopActivitySink{},
		logger:   defLogger{},
	}
}

func (h *VerifyAccessLinkHandler) WithVerifier(verifier *TokenVerifier) *VerifyAccessLinkHandler {
	if verifier != nil {
		h.verifier = verifier
	}
	return h
}

func (h *VerifyAccessLinkHandler) WithActivitySink(sink ActivitySink) *VerifyAccessLinkHandler {
	h.activity = normalizeActivitySink(sink)
	return h
}

func (h *VerifyAccessLinkHandler) WithLogger(logger Logger) *VerifyAccessLinkHandler {
	if logger != nil {
		h.logger = logger
		h.verifier.WithLogger(logger)
	}
	return h
}

func (h *VerifyAccessLinkHandler) Execute(ctx context.Context, event VerifyAccessLinkMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during access link verification",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *VerifyAccessLinkHandler) execute(ctx context.Context, event VerifyAccessLinkMessage) error {
	resp := &VerifyAccessLinkResponse{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	result, err := h.verifier.Verify(ctx, event.Token)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to verify access link token")
	}

	if !result.Valid {
		resp.ErrorKind = result.ErrorKind
		event.OnResponse(resp)
		return nil
	}

	user, err := h.repo.Users().GetWithProfile(ctx, result.UserID)
	if err != nil {
		if goerrors.IsNotFound(err) {
			// Token consumed but its account is gone. The token stays
			// spent; report it as unusable.
			resp.ErrorKind = VerificationNotFound
			event.OnResponse(resp)
			return nil
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for verified token")
	}

	session, err := h.tokens.Generate(identityFromUser(user))
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to issue session credential")
	}

	resp.Valid = true
	resp.SessionToken = session
	resp.RedirectTo = HomeRedirect
	resp.User = NewUserSnapshot(user)

	h.recordActivity(ctx, user)

	event.OnResponse(resp)

	return nil
}

func (h *VerifyAccessLinkHandler) recordActivity(ctx context.Context, user *User) {
	event := ActivityEvent{
		EventType:  ActivityEventMagicLinkVerified,
		Actor:      ActorRef{ID: user.ID.String(), Type: "user"},
		UserID:     user.ID.String(),
		Metadata:   map[string]any{"method": "magic_link"},
		OccurredAt: time.Now(),
	}

	if err := normalizeActivitySink(h.activity).Record(ctx, event); err != nil {
		h.logger.Warn("activity sink record error: %v", err)
	}
}
