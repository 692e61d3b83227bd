package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// AccessLinkRequestedMessage is the fixed response copy for every link
// request, byte identical whether or not the account exists. Changing it,
// or branching on account existence before it is written, breaks the
// enumeration resistance contract.
const AccessLinkRequestedMessage = "If an account with that email exists, we have sent a login link."

type RequestAccessLinkMessage struct {
	Email      string    `json:"email" example:"pepe.rone@example.com" doc:"Account email."`
	Kind       TokenKind `json:"kind" example:"magic_link" doc:"Token flow to issue for."`
	OnResponse func(resp *RequestAccessLinkResponse)
}

func (p RequestAccessLinkMessage) Type() string { return "auth.link_request" }

type RequestAccessLinkResponse struct {
	Message string
}

// RequestAccessLinkHandler serves both magic link and password reset
// requests: issue a fresh token, email it, answer with the fixed copy.
type RequestAccessLinkHandler struct {
	repo     RepositoryManager
	issuer   *TokenIssuer
	mailer   Mailer
	activity ActivitySink
	logger   Logger
}

func NewRequestAccessLinkHandler(repo RepositoryManager) *RequestAccessLinkHandler {
	return &RequestAccessLinkHandler{
		repo:     repo,
		issuer:   NewTokenIssuer(repo),
		mailer:   noopMailer{},
		activity: noopActivitySink{},
		logger:   defLogger{},
	}
}

func (h *RequestAccessLinkHandler) WithMailer(mailer Mailer) *RequestAccessLinkHandler {
	h.mailer = normalizeMailer(mailer)
	return h
}

func (h *RequestAccessLinkHandler) WithActivitySink(sink ActivitySink) *RequestAccessLinkHandler {
	h.activity = normalizeActivitySink(sink)
	return h
}

func (h *RequestAccessLinkHandler) WithLogger(logger Logger) *RequestAccessLinkHandler {
	if logger != nil {
		h.logger = logger
		h.issuer.WithLogger(logger)
	}
	return h
}

func (h *RequestAccessLinkHandler) WithIssuer(issuer *TokenIssuer) *RequestAccessLinkHandler {
	if issuer != nil {
		h.issuer = issuer
	}
	return h
}

func (h *RequestAccessLinkHandler) Execute(ctx context.Context, event RequestAccessLinkMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during access link request",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RequestAccessLinkHandler) execute(ctx context.Context, event RequestAccessLinkMessage) error {
	resp := &RequestAccessLinkResponse{
		Message: AccessLinkRequestedMessage,
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	kind := event.Kind
	if kind == "" {
		kind = TokenKindMagicLink
	}

	if !ValidTokenKind(kind) {
		return goerrors.New("unknown or invalid token kind for link request", goerrors.CategoryBadInput).
			WithMetadata(map[string]any{"kind": kind})
	}

	user, err := h.repo.Users().GetByEmail(ctx, event.Email)
	if err != nil {
		if goerrors.IsNotFound(err) {
			// No account. Answer exactly as if we had sent the email.
			event.OnResponse(resp)
			return nil
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for link request")
	}

	token, err := h.issuer.Issue(ctx, user.ID, kind)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to issue access link token")
	}

	h.deliver(ctx, user, kind, token)

	h.recordActivity(ctx, user, kind)

	event.OnResponse(resp)

	return nil
}

// deliver sends the link email. Delivery is best effort: the token is
// already persisted and the caller already has its success response, so a
// provider outage only gets logged.
func (h *RequestAccessLinkHandler) deliver(ctx context.Context, user *User, kind TokenKind, token string) {
	firstName := ""
	if user.Profile != nil {
		firstName = user.Profile.FirstName
	}
	name := EmailGreetingName(firstName, user.Email)

	mailer := normalizeMailer(h.mailer)

	var err error
	switch kind {
	case TokenKindPasswordReset:
		err = mailer.SendPasswordReset(ctx, user.Email, name, token)
	default:
		err = mailer.SendLoginLink(ctx, user.Email, name, token)
	}

	if err != nil {
		h.logger.Warn("failed to deliver access link email", "kind", kind, "error", err)
	}
}

func (h *RequestAccessLinkHandler) recordActivity(ctx context.Context, user *User, kind TokenKind) {
	event := ActivityEvent{
		EventType:  ActivityEventLinkRequested,
		Actor:      ActorRef{ID: user.ID.String(), Type: "user"},
		UserID:     user.ID.String(),
		Metadata:   map[string]any{"kind": kind},
		OccurredAt: time.Now(),
	}

	if err := normalizeActivitySink(h.activity).Record(ctx, event); err != nil {
		h.logger.Warn("activity sink record error: %v", err)
	}
}
